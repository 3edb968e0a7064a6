package storage

import (
	"context"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
)

const batchSize = 100

// SaveEntries inserts entries in batches.
func (a *SQLiteAdapter) SaveEntries(ctx context.Context, entries []domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	models := make([]JournalModel, len(entries))
	for i, e := range entries {
		models[i] = toModel(e)
	}
	return a.db.WithContext(ctx).CreateInBatches(models, batchSize).Error
}

// ListEntries returns up to limit entries, newest first.
func (a *SQLiteAdapter) ListEntries(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	var models []JournalModel
	q := a.db.WithContext(ctx).Order("timestamp desc").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]domain.JournalEntry, len(models))
	for i, m := range models {
		entries[i] = fromModel(m)
	}
	return entries, nil
}

func toModel(e domain.JournalEntry) JournalModel {
	return JournalModel{
		ID:        e.ID,
		SessionID: e.SessionID,
		Action:    string(e.Action),
		Target:    e.Target,
		Details:   e.Details,
		Timestamp: e.Timestamp,
	}
}

func fromModel(m JournalModel) domain.JournalEntry {
	return domain.JournalEntry{
		ID:        m.ID,
		SessionID: m.SessionID,
		Action:    domain.JournalAction(m.Action),
		Target:    m.Target,
		Details:   m.Details,
		Timestamp: m.Timestamp,
	}
}
