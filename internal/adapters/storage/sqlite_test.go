package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupInMemoryDB creates an adapter on a private in-memory database.
func setupInMemoryDB(t *testing.T) *SQLiteAdapter {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	adapter, err := NewSQLiteAdapter(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func TestSaveAndListEntries(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	entries := []domain.JournalEntry{
		{SessionID: "s1", Action: domain.ActionTransition, Target: "PacketCapture", Details: "AttackMenu -> PacketCapture", Timestamp: base},
		{SessionID: "s1", Action: domain.ActionFailure, Target: "AttackMenu", Details: "radio setup failed", Timestamp: base.Add(time.Second)},
		{SessionID: "s2", Action: domain.ActionCredential, Target: "Free_Public_WiFi", Details: "Cred: a:b", Timestamp: base.Add(2 * time.Second)},
	}
	require.NoError(t, adapter.SaveEntries(ctx, entries))

	got, err := adapter.ListEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, domain.ActionCredential, got[0].Action)
	assert.Equal(t, "Cred: a:b", got[0].Details)
	assert.Equal(t, "s2", got[0].SessionID)
	assert.NotZero(t, got[0].ID)
	assert.Equal(t, domain.ActionTransition, got[2].Action)
}

func TestListEntries_Limit(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	var entries []domain.JournalEntry
	for i := 0; i < 150; i++ {
		entries = append(entries, domain.JournalEntry{
			Action:    domain.ActionActivity,
			Details:   fmt.Sprintf("line %d", i),
			Timestamp: time.Unix(int64(i), 0).UTC(),
		})
	}
	require.NoError(t, adapter.SaveEntries(ctx, entries))

	got, err := adapter.ListEntries(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "line 149", got[0].Details)

	all, err := adapter.ListEntries(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 150)
}

func TestSaveEntries_Empty(t *testing.T) {
	adapter := setupInMemoryDB(t)
	assert.NoError(t, adapter.SaveEntries(context.Background(), nil))
}
