package service

import "github.com/codedrop-dev/codedrop/internal/domain"

// Assemble partitions committed items into ordered send-groups using a
// greedy left-to-right scan: groupable kinds extend the current run
// while the kind matches and the run is under the album cap; any kind
// change, cap overflow, or non-groupable item closes the run.
// Non-groupable items are always emitted as singleton groups.
func Assemble(items []domain.Item) []domain.SendGroup {
	var groups []domain.SendGroup
	var run []domain.Item

	flush := func() {
		if len(run) > 0 {
			groups = append(groups, domain.SendGroup{Items: run})
			run = nil
		}
	}

	for _, item := range items {
		if !item.Kind.Groupable() {
			flush()
			groups = append(groups, domain.SendGroup{Items: []domain.Item{item}})
			continue
		}
		if len(run) > 0 && run[0].Kind == item.Kind && len(run) < domain.MaxAlbumSize {
			run = append(run, item)
			continue
		}
		flush()
		run = []domain.Item{item}
	}
	flush()

	return groups
}
