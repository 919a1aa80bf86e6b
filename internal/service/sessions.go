package service

import "sync"

// SessionState is the per-owner configuration conversation state.
// The next free-text message from an owner is interpreted according to
// this state instead of ad-hoc flags scattered across handlers.
type SessionState int

const (
	StateIdle SessionState = iota
	StateAwaitingGlobalTTL
	StateAwaitingCodeTTL
)

// Session is the explicit finite-state record for one owner.
type Session struct {
	State SessionState
	// Code is set only in StateAwaitingCodeTTL.
	Code string
	// PromptMessageID is the provider message carrying the config UI,
	// kept so the TTL reply can refresh it in place.
	PromptMessageID int
}

// Sessions holds per-owner conversation state in memory. State is
// advisory UI state; losing it on restart only drops an open prompt.
type Sessions struct {
	mu      sync.Mutex
	byOwner map[int64]Session
}

func NewSessions() *Sessions {
	return &Sessions{byOwner: make(map[int64]Session)}
}

func (s *Sessions) Get(ownerID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byOwner[ownerID]
}

// AwaitGlobalTTL transitions the owner to expect a global TTL value.
func (s *Sessions) AwaitGlobalTTL(ownerID int64, promptMessageID int) {
	s.mu.Lock()
	s.byOwner[ownerID] = Session{State: StateAwaitingGlobalTTL, PromptMessageID: promptMessageID}
	s.mu.Unlock()
}

// AwaitCodeTTL transitions the owner to expect a TTL value for one code.
func (s *Sessions) AwaitCodeTTL(ownerID int64, code string, promptMessageID int) {
	s.mu.Lock()
	s.byOwner[ownerID] = Session{State: StateAwaitingCodeTTL, Code: code, PromptMessageID: promptMessageID}
	s.mu.Unlock()
}

// Reset returns the owner to idle. Idempotent.
func (s *Sessions) Reset(ownerID int64) {
	s.mu.Lock()
	delete(s.byOwner, ownerID)
	s.mu.Unlock()
}
