package journal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockJournalRepository struct {
	mock.Mock

	mu    sync.Mutex
	saved []domain.JournalEntry
}

func (m *MockJournalRepository) SaveEntries(ctx context.Context, entries []domain.JournalEntry) error {
	m.mu.Lock()
	m.saved = append(m.saved, entries...)
	m.mu.Unlock()
	return m.Called(ctx, len(entries)).Error(0)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) Saved() []domain.JournalEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.JournalEntry(nil), m.saved...)
}

func TestService_FlushesOnShutdown(t *testing.T) {
	repo := &MockJournalRepository{}
	repo.On("SaveEntries", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(repo, 16)
	svc.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)

	svc.Record(ctx, "s1", domain.ActionTransition, "Menu", "AttackMenu -> Menu")
	svc.Record(ctx, "s1", domain.ActionCredential, "Free_Public_WiFi", "Cred: a:b")
	cancel()

	select {
	case <-svc.Done():
	case <-time.After(time.Second):
		t.Fatal("writer did not stop")
	}

	saved := repo.Saved()
	require.Len(t, saved, 2)
	assert.Equal(t, domain.ActionTransition, saved[0].Action)
	assert.Equal(t, "Cred: a:b", saved[1].Details)
	assert.False(t, saved[0].Timestamp.IsZero())
}

func TestService_BatchesBySize(t *testing.T) {
	repo := &MockJournalRepository{}
	repo.On("SaveEntries", mock.Anything, 3).Return(nil)
	svc := NewService(repo, 16)
	svc.batchSize = 3
	svc.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	for i := 0; i < 3; i++ {
		svc.Record(ctx, "", domain.ActionActivity, "Weak_Open_WiFi", "HTTP from 192.168.4.2")
	}

	assert.Eventually(t, func() bool { return len(repo.Saved()) == 3 }, time.Second, 5*time.Millisecond)
}

func TestService_RejectsInvalidAction(t *testing.T) {
	repo := &MockJournalRepository{}
	svc := NewService(repo, 4)

	svc.Record(context.Background(), "", domain.JournalAction("BOGUS"), "", "")
	assert.Len(t, svc.queue, 0)
}

func TestService_RecordNeverBlocks(t *testing.T) {
	repo := &MockJournalRepository{}
	svc := NewService(repo, 2)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			svc.Record(context.Background(), "", domain.ActionActivity, "", "x")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}
	assert.Len(t, svc.queue, 2)
}

func TestService_SaveErrorIsNotFatal(t *testing.T) {
	repo := &MockJournalRepository{}
	repo.On("SaveEntries", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	svc := NewService(repo, 4)
	svc.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	svc.Record(ctx, "", domain.ActionScan, "", "3 networks")

	assert.Eventually(t, func() bool { return len(repo.Saved()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-svc.Done()
}

func TestService_Recent(t *testing.T) {
	repo := &MockJournalRepository{}
	want := []domain.JournalEntry{{ID: 2, Action: domain.ActionScan}}
	repo.On("ListEntries", mock.Anything, 10).Return(want, nil)

	got, err := NewService(repo, 1).Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
