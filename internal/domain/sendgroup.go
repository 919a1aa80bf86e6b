package domain

// MaxAlbumSize is the provider's cap on items per album.
const MaxAlbumSize = 10

// SendGroup is a maximal run of items delivered together as one album,
// or a single item delivered alone. Items keep their commit order.
type SendGroup struct {
	Items []Item
}

// Album reports whether the group must be sent as a multi-item album.
func (g SendGroup) Album() bool {
	return len(g.Items) > 1
}

// Caption returns the caption attached to the group as a whole:
// only the first item's caption is rendered.
func (g SendGroup) Caption() string {
	if len(g.Items) == 0 {
		return ""
	}
	return g.Items[0].Caption
}
