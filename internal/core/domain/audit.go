package domain

import (
	"errors"
	"time"
)

// JournalAction represents a type-safe action identifier for the session journal.
type JournalAction string

const (
	ActionTransition JournalAction = "MODE_TRANSITION"
	ActionScan       JournalAction = "SCAN_COMPLETED"
	ActionSelect     JournalAction = "NETWORK_SELECTED"
	ActionCredential JournalAction = "CREDENTIAL_CAPTURED"
	ActionActivity   JournalAction = "HONEYPOT_ACTIVITY"
	ActionFailure    JournalAction = "OPERATION_FAILED"
)

// Domain Errors
var (
	ErrInvalidAction = errors.New("invalid journal action")
)

// JournalEntry is one record of what happened during this power cycle.
// The journal lives in memory only; nothing survives a restart.
type JournalEntry struct {
	ID        uint          `json:"id"`
	SessionID string        `json:"session_id"` // radio activation the entry belongs to, if any
	Action    JournalAction `json:"action"`
	Target    string        `json:"target"`
	Details   string        `json:"details"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewJournalEntry is the designated factory for creating valid entries.
func NewJournalEntry(sessionID string, action JournalAction, target, details string) (*JournalEntry, error) {
	if !isValidAction(action) {
		return nil, ErrInvalidAction
	}
	return &JournalEntry{
		SessionID: sessionID,
		Action:    action,
		Target:    target,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}, nil
}

func isValidAction(action JournalAction) bool {
	switch action {
	case ActionTransition, ActionScan, ActionSelect, ActionCredential,
		ActionActivity, ActionFailure:
		return true
	}
	return false
}
