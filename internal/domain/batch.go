package domain

import "time"

// CodeLength is the length of the public batch code.
const CodeLength = 8

// Bounds for the auto-delete TTL, in hours.
const (
	MinDeleteAfterHours = 1
	MaxDeleteAfterHours = 720
)

// Policy is the auto-delete policy stamped on a batch at commit time.
// The singleton global policy uses the same shape.
type Policy struct {
	AutoDelete       bool
	DeleteAfterHours int
}

// DeleteAt resolves the absolute expiry timestamp for a batch committed
// at the given moment. Nil when auto-delete is off; the sweeper then
// falls back to committedAt + DeleteAfterHours lazily.
func (p Policy) DeleteAt(committedAt time.Time) *time.Time {
	if !p.AutoDelete {
		return nil
	}
	t := committedAt.Add(time.Duration(p.DeleteAfterHours) * time.Hour)
	return &t
}

// BatchSummary is the per-code aggregate shown in the owner's vault listing.
type BatchSummary struct {
	Code        string
	Caption     string // caption of the first item, may be empty
	Kind        Kind   // kind of the first item
	ItemCount   int
	Policy      Policy
	CommittedAt time.Time
}

// Stats are service-wide counters for the stats surfaces.
type Stats struct {
	TotalItems      int64 `json:"total_items"`
	TotalBatches    int64 `json:"total_batches"`
	TotalRecipients int64 `json:"total_recipients"`
}
