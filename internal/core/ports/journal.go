package ports

import (
	"context"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
)

// Journal records what happened during this power cycle.
type Journal interface {
	// Record queues an entry. It must not block the caller.
	Record(ctx context.Context, sessionID string, action domain.JournalAction, target, details string)

	// Recent returns the newest entries first.
	Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error)
}

// JournalRepository handles the low-level storage of journal entries.
type JournalRepository interface {
	SaveEntries(ctx context.Context, entries []domain.JournalEntry) error
	ListEntries(ctx context.Context, limit int) ([]domain.JournalEntry, error)
}
