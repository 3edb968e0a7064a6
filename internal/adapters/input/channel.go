package input

import (
	"sync"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/ports"
)

// Channel is an input source fed programmatically. It stands in for the
// joystick when no terminal is attached.
type Channel struct {
	mu     sync.Mutex
	ch     chan domain.RawSample
	closed bool
}

var _ ports.InputSource = (*Channel)(nil)

// NewChannel creates a source buffering up to size samples.
func NewChannel(size int) *Channel {
	return &Channel{ch: make(chan domain.RawSample, size)}
}

// Push queues a sample, dropping it if the buffer is full or the source
// is closed.
func (c *Channel) Push(s domain.RawSample) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.ch <- s:
		return true
	default:
		return false
	}
}

func (c *Channel) Samples() <-chan domain.RawSample { return c.ch }

// Close ends the stream. Later pushes are dropped.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
	return nil
}
