package domain

import "time"

// Recipient is anyone who ever talked to the service. Persisted on first
// contact for broadcast targeting only; not part of the batch lifecycle.
type Recipient struct {
	UserID    int64
	Username  string
	FirstSeen time.Time
}

// BroadcastMessage is the exact content selected for fan-out. Kind is
// KindText or one of the broadcastable media kinds.
type BroadcastMessage struct {
	Kind     Kind
	Text     string // set when Kind == KindText
	AssetRef string // set for media kinds
	Caption  string
}

// BroadcastProgress is a running snapshot emitted during fan-out.
type BroadcastProgress struct {
	Delivered int // recipients attempted so far
	Total     int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// Percent returns completion as an integer percentage.
func (p BroadcastProgress) Percent() int {
	if p.Total == 0 {
		return 100
	}
	return p.Delivered * 100 / p.Total
}

// BroadcastReport is the final tally of one fan-out run.
type BroadcastReport struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}
