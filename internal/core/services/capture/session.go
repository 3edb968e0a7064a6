package capture

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/logbuf"
	"github.com/lcalzada-xor/wdeck/internal/telemetry"
)

// Defaults for a capture session.
const (
	DefaultLogInterval = 2000 * time.Millisecond
	DefaultLogCapacity = 20
)

// Options configures a Session.
type Options struct {
	LogInterval time.Duration
	LogCapacity int
	Classifier  Classifier
	Clock       func() time.Time
}

// Session owns the protocol counters and the packet log while packet capture
// is active.
//
// HandleFrame runs on the radio goroutine and touches only atomics and the
// line queue. Everything else (Begin, Drain, Lines) belongs to the control
// loop. Stop blocks until no HandleFrame call is in flight.
type Session struct {
	classifier Classifier
	interval   time.Duration
	now        func() time.Time

	mu     sync.RWMutex // write-held by Begin/Stop, read-held by HandleFrame
	active bool
	id     string
	target domain.NetworkRecord

	counters [domain.BucketUDP + 1]atomic.Uint64 // indexed by domain.Bucket
	total    atomic.Uint64
	skipped  atomic.Uint64
	lastLog  atomic.Int64 // UnixNano of the last emitted line, 0 = none yet

	lines *logbuf.Feed[string]
	log   *logbuf.Buffer[string]
}

// NewSession creates an inactive session.
func NewSession(opts Options) *Session {
	if opts.LogInterval <= 0 {
		opts.LogInterval = DefaultLogInterval
	}
	if opts.LogCapacity <= 0 {
		opts.LogCapacity = DefaultLogCapacity
	}
	if opts.Classifier.Buckets == nil {
		opts.Classifier = NewClassifier(nil)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Session{
		classifier: opts.Classifier,
		interval:   opts.LogInterval,
		now:        opts.Clock,
		lines:      logbuf.NewFeed[string](opts.LogCapacity),
		log:        logbuf.New[string](opts.LogCapacity),
	}
}

// Begin zeroes the counters, clears the packet log and starts accepting
// frames for target. It returns the new session ID.
func (s *Session) Begin(target domain.NetworkRecord) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.counters {
		s.counters[i].Store(0)
	}
	s.total.Store(0)
	s.skipped.Store(0)
	s.lastLog.Store(0)
	s.lines.Discard()
	s.log.Clear()

	s.id = uuid.New().String()
	s.target = target
	s.active = true

	slog.Debug("Capture session started", "session", s.id, "bssid", target.BSSIDString(), "channel", target.Channel)
	return s.id
}

// Stop rejects further frames and waits for in-flight HandleFrame calls.
// Counters and the packet log are kept for display.
func (s *Session) Stop() {
	s.mu.Lock()
	wasActive := s.active
	s.active = false
	s.mu.Unlock()

	s.Drain()
	if wasActive {
		slog.Debug("Capture session stopped", "session", s.id, "frames", s.total.Load())
	}
}

// HandleFrame is the promiscuous callback.
func (s *Session) HandleFrame(f domain.Frame) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return
	}

	c, ok := s.classifier.Classify(f)
	if !ok {
		s.skipped.Add(1)
		telemetry.FramesSkipped.Inc()
		return
	}

	s.total.Add(1)
	telemetry.FramesCaptured.WithLabelValues(c.Family.String()).Inc()
	if c.Bucket != domain.BucketNone {
		s.counters[c.Bucket].Add(1)
	}

	if s.admitLine() && !s.lines.Publish(c.Line) {
		telemetry.LogLinesDropped.WithLabelValues("packet").Inc()
	}
}

// admitLine enforces the minimum interval between emitted log lines. The CAS
// keeps the gate correct if the driver ever delivers frames concurrently.
func (s *Session) admitLine() bool {
	now := s.now().UnixNano()
	for {
		last := s.lastLog.Load()
		if last != 0 && now-last < int64(s.interval) {
			return false
		}
		if s.lastLog.CompareAndSwap(last, now) {
			return true
		}
	}
}

// Drain moves published lines into the packet log. Control loop only.
func (s *Session) Drain() int {
	return s.lines.DrainInto(s.log)
}

// Counters returns a consistent-enough copy of the counters. Each counter is
// read atomically; the set is not read under a single lock.
func (s *Session) Counters() domain.ProtocolCounters {
	return domain.ProtocolCounters{
		HTTP:  s.counters[domain.BucketHTTP].Load(),
		DNS:   s.counters[domain.BucketDNS].Load(),
		ARP:   s.counters[domain.BucketARP].Load(),
		TCP:   s.counters[domain.BucketTCP].Load(),
		UDP:   s.counters[domain.BucketUDP].Load(),
		Total: s.total.Load(),
	}
}

// Skipped returns the number of malformed frames seen this session.
func (s *Session) Skipped() uint64 { return s.skipped.Load() }

// Lines returns a copy of the packet log, oldest first. Control loop only.
func (s *Session) Lines() []string { return s.log.Items() }

// LogLen returns the packet log length. Control loop only.
func (s *Session) LogLen() int { return s.log.Len() }

// Active reports whether frames are currently accepted.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// ID returns the current or last session ID.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Target returns the network the current or last session was locked to.
func (s *Session) Target() domain.NetworkRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target
}
