package domain

import "time"

// Kind is the closed set of asset kinds the provider can carry.
// It is resolved once at ingestion; everything downstream (staging,
// assembly, delivery) switches on it instead of re-inspecting messages.
type Kind string

const (
	KindDocument  Kind = "document"
	KindPhoto     Kind = "photo"
	KindAudio     Kind = "audio"
	KindVideo     Kind = "video"
	KindVoice     Kind = "voice"
	KindVideoNote Kind = "video_note"
	KindAnimation Kind = "animation"
	KindSticker   Kind = "sticker"

	// KindText only appears in broadcast messages, never in stored items.
	KindText Kind = "text"
)

// Groupable reports whether items of this kind may share an album.
func (k Kind) Groupable() bool {
	switch k {
	case KindPhoto, KindVideo, KindDocument, KindAudio:
		return true
	}
	return false
}

// Broadcastable reports whether a message of this kind can be fanned out.
// Anything else counts as an immediate per-recipient failure.
func (k Kind) Broadcastable() bool {
	switch k {
	case KindText, KindPhoto, KindVideo, KindDocument, KindAudio, KindVoice, KindAnimation:
		return true
	}
	return false
}

// Storable reports whether the kind is a valid uploaded asset kind.
func (k Kind) Storable() bool {
	switch k {
	case KindDocument, KindPhoto, KindAudio, KindVideo, KindVoice, KindVideoNote, KindAnimation, KindSticker:
		return true
	}
	return false
}

// Item is one uploaded asset. AssetRef is an opaque provider handle;
// the transport layer resolves it back to raw bytes on send.
type Item struct {
	AssetRef  string
	Kind      Kind
	Caption   string
	OwnerID   int64
	CreatedAt time.Time
}
