package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/ports"
	"github.com/lcalzada-xor/wdeck/internal/telemetry"
)

// Service implements ports.Journal. Record never blocks: entries are queued
// and written in batches by a background goroutine.
type Service struct {
	repo      ports.JournalRepository
	queue     chan domain.JournalEntry
	batchSize int
	interval  time.Duration
	done      chan struct{}
}

var _ ports.Journal = (*Service)(nil)

// NewService creates a journal writing to repo.
func NewService(repo ports.JournalRepository, bufferSize int) *Service {
	if bufferSize < 1 {
		bufferSize = 256
	}
	return &Service{
		repo:      repo,
		queue:     make(chan domain.JournalEntry, bufferSize),
		batchSize: 50,
		interval:  time.Second,
		done:      make(chan struct{}),
	}
}

// Record queues an entry. Invalid actions are rejected and a full queue
// drops the entry.
func (s *Service) Record(ctx context.Context, sessionID string, action domain.JournalAction, target, details string) {
	entry, err := domain.NewJournalEntry(sessionID, action, target, details)
	if err != nil {
		slog.Warn("Journal entry rejected", "action", string(action), "error", err)
		return
	}
	select {
	case s.queue <- *entry:
	default:
		telemetry.LogLinesDropped.WithLabelValues("journal").Inc()
	}
}

// Recent returns the newest persisted entries first. Entries still queued
// are not included.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	return s.repo.ListEntries(ctx, limit)
}

// Start runs the batch writer until ctx is cancelled. Queued entries are
// flushed before Done is closed.
func (s *Service) Start(ctx context.Context) {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		batch := make([]domain.JournalEntry, 0, s.batchSize)
		flush := func() {
			if len(batch) == 0 {
				return
			}
			// The writer outlives the caller's context on shutdown.
			if err := s.repo.SaveEntries(context.WithoutCancel(ctx), batch); err != nil {
				slog.Error("Failed to save journal batch", "entries", len(batch), "error", err)
			}
			batch = batch[:0]
		}

		for {
			select {
			case <-ctx.Done():
				for {
					select {
					case e := <-s.queue:
						batch = append(batch, e)
					default:
						flush()
						return
					}
				}
			case e := <-s.queue:
				batch = append(batch, e)
				if len(batch) >= s.batchSize {
					flush()
				}
			case <-ticker.C:
				flush()
			}
		}
	}()
}

// Done is closed once the writer has stopped.
func (s *Service) Done() <-chan struct{} {
	return s.done
}
