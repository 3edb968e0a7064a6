package mode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockRadio records the order of reconfiguration calls next to the usual
// testify expectations.
type MockRadio struct {
	mock.Mock

	mu      sync.Mutex
	handler ports.FrameHandler
	calls   []string
}

func (m *MockRadio) track(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *MockRadio) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockRadio) ResetCalls() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

func (m *MockRadio) Deliver(f domain.Frame) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h(f)
	}
}

func (m *MockRadio) ScanNetworks(ctx context.Context) ([]domain.NetworkRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]domain.NetworkRecord)
	return records, args.Error(1)
}

func (m *MockRadio) SetPromiscuousCallback(fn ports.FrameHandler) {
	m.mu.Lock()
	m.handler = fn
	m.mu.Unlock()
	m.track(fmt.Sprintf("SetPromiscuousCallback(%t)", fn != nil))
}

func (m *MockRadio) SetPromiscuous(enabled bool) error {
	m.track(fmt.Sprintf("SetPromiscuous(%t)", enabled))
	return m.Called(enabled).Error(0)
}

func (m *MockRadio) SetChannel(channel int) error {
	m.track(fmt.Sprintf("SetChannel(%d)", channel))
	return m.Called(channel).Error(0)
}

func (m *MockRadio) StartAccessPoint(name string) error {
	m.track("StartAccessPoint(" + name + ")")
	return m.Called(name).Error(0)
}

func (m *MockRadio) StopAccessPoint() error {
	m.track("StopAccessPoint")
	return m.Called().Error(0)
}

func (m *MockRadio) StationCount() int {
	return m.Called().Int(0)
}

func (m *MockRadio) SetIdle() error {
	m.track("SetIdle")
	return m.Called().Error(0)
}

// newHappyRadio accepts every reconfiguration.
func newHappyRadio() *MockRadio {
	r := &MockRadio{}
	r.On("SetIdle").Return(nil).Maybe()
	r.On("SetPromiscuous", mock.Anything).Return(nil).Maybe()
	r.On("SetChannel", mock.Anything).Return(nil).Maybe()
	r.On("StartAccessPoint", mock.Anything).Return(nil).Maybe()
	r.On("StopAccessPoint").Return(nil).Maybe()
	return r
}

type MockPortal struct {
	mock.Mock
}

func (m *MockPortal) Start(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPortal) Stop(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fakeJournal struct {
	mu      sync.Mutex
	actions []domain.JournalAction
	details []string
}

func (j *fakeJournal) Record(_ context.Context, _ string, action domain.JournalAction, _, details string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.actions = append(j.actions, action)
	j.details = append(j.details, details)
}

func (j *fakeJournal) Recent(context.Context, int) ([]domain.JournalEntry, error) {
	return nil, nil
}

func (j *fakeJournal) Has(action domain.JournalAction, details string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i, a := range j.actions {
		if a == action && j.details[i] == details {
			return true
		}
	}
	return false
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
