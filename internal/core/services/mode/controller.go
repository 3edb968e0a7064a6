package mode

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/logbuf"
	"github.com/lcalzada-xor/wdeck/internal/core/ports"
	"github.com/lcalzada-xor/wdeck/internal/core/services/capture"
	"github.com/lcalzada-xor/wdeck/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultMessageDelay       = 2 * time.Second
	DefaultStationInterval    = 2 * time.Second
	DefaultCredentialCapacity = 10
	DefaultActivityCapacity   = 20

	DefaultRogueSSID    = "Free_Public_WiFi"
	DefaultHoneypotSSID = "Weak_Open_WiFi"
)

// APNames are the advertised names of the two access point modes.
type APNames struct {
	Rogue    string
	Honeypot string
}

// Options wires the controller to its collaborators.
type Options struct {
	Radio   ports.Radio
	Session *capture.Session

	// Portals run alongside the access points. Either may be nil.
	RoguePortal    ports.Portal
	HoneypotPortal ports.Portal

	// Credentials and Activity are written by the portal handlers and drained
	// by the controller. Either may be nil.
	Credentials *logbuf.Feed[domain.CredentialRecord]
	Activity    *logbuf.Feed[string]

	Journal ports.Journal // optional

	// Names is consulted on every access point activation.
	Names func() APNames

	MessageDelay       time.Duration
	StationInterval    time.Duration
	CredentialCapacity int
	ActivityCapacity   int
	Clock              func() time.Time
}

type notice struct {
	lines []string
	until time.Time
}

type scanResult struct {
	gen     uint64
	records []domain.NetworkRecord
	err     error
}

// Controller is the mode state machine. It is the only component allowed to
// reconfigure the radio, and it keeps the radio configuration in step with
// the current mode.
//
// HandleNavigation and Tick are called from the control loop. Snapshot may be
// called from any goroutine.
type Controller struct {
	radio    ports.Radio
	session  *capture.Session
	rogue    ports.Portal
	honeypot ports.Portal
	credFeed *logbuf.Feed[domain.CredentialRecord]
	actFeed  *logbuf.Feed[string]
	journal  ports.Journal
	names    func() APNames
	now      func() time.Time

	messageDelay    time.Duration
	stationInterval time.Duration

	mu sync.Mutex

	mode   domain.Mode
	notice *notice

	menuIndex   int
	attackIndex int
	scroll      int
	infoPage    int
	logIndex    int
	logBrowsing bool

	networks domain.NetworkList
	selected int

	credentials  *logbuf.Buffer[domain.CredentialRecord]
	activity     *logbuf.Buffer[string]
	apName       string
	stations     int
	lastStations time.Time
	activation   string

	scanGen    uint64
	scanCancel context.CancelFunc
	scanDone   chan scanResult
	scanWG     sync.WaitGroup
}

// NewController creates a controller in the main menu with the radio assumed
// idle.
func NewController(opts Options) *Controller {
	if opts.Session == nil {
		opts.Session = capture.NewSession(capture.Options{Clock: opts.Clock})
	}
	if opts.Names == nil {
		opts.Names = func() APNames {
			return APNames{Rogue: DefaultRogueSSID, Honeypot: DefaultHoneypotSSID}
		}
	}
	if opts.MessageDelay <= 0 {
		opts.MessageDelay = DefaultMessageDelay
	}
	if opts.StationInterval <= 0 {
		opts.StationInterval = DefaultStationInterval
	}
	if opts.CredentialCapacity <= 0 {
		opts.CredentialCapacity = DefaultCredentialCapacity
	}
	if opts.ActivityCapacity <= 0 {
		opts.ActivityCapacity = DefaultActivityCapacity
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Controller{
		radio:           opts.Radio,
		session:         opts.Session,
		rogue:           opts.RoguePortal,
		honeypot:        opts.HoneypotPortal,
		credFeed:        opts.Credentials,
		actFeed:         opts.Activity,
		journal:         opts.Journal,
		names:           opts.Names,
		now:             opts.Clock,
		messageDelay:    opts.MessageDelay,
		stationInterval: opts.StationInterval,
		mode:            domain.Mode{Kind: domain.ModeMenu},
		selected:        domain.NoSelection,
		credentials:     logbuf.New[domain.CredentialRecord](opts.CredentialCapacity),
		activity:        logbuf.New[string](opts.ActivityCapacity),
		scanDone:        make(chan scanResult, 1),
	}
}

// HandleNavigation applies one navigation event. Recovered errors (no
// selection, no networks, radio setup failure) are returned after the
// controller has already shown the notice and settled in a valid mode.
// Events arriving while a notice is shown are ignored.
func (c *Controller) HandleNavigation(ctx context.Context, ev domain.NavEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expireNotice(c.now())
	if c.notice != nil {
		return nil
	}

	act, ok := transitions[transitionKey{c.mode.Kind, ev}]
	if !ok {
		return nil
	}

	ctx, span := otel.Tracer(telemetry.ControllerTracer).Start(ctx, "HandleNavigation")
	defer span.End()
	span.SetAttributes(
		attribute.String("nav.event", ev.String()),
		attribute.String("mode.from", c.mode.String()),
	)

	err := act(c, ctx)
	span.SetAttributes(attribute.String("mode.to", c.mode.String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Tick advances time-driven behaviour: notice expiry, scan completion, log
// hand-off from the capture callback and portals, and station polling.
func (c *Controller) Tick(ctx context.Context, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expireNotice(now)
	c.collectScan(ctx)
	c.session.Drain()
	c.drainPortals(ctx)

	if c.mode.Kind.RadioRole() == domain.RoleAccessPoint && now.Sub(c.lastStations) >= c.stationInterval {
		c.lastStations = now
		c.pollStations(ctx)
	}
}

// Close tears down whatever the radio is doing and returns to the menu.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelScan()
	if c.mode.Kind.IsAttack() {
		c.teardown(ctx)
	}
	c.mode = domain.Mode{Kind: domain.ModeMenu}
}

// Mode returns the current mode.
func (c *Controller) Mode() domain.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Selected returns the selected network index or domain.NoSelection.
func (c *Controller) Selected() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// NoticeActive reports whether a notice currently hides the mode screen.
func (c *Controller) NoticeActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice != nil
}

// Snapshot returns a copy of everything a display needs.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := domain.Snapshot{
		Mode:         c.mode,
		MenuIndex:    c.menuIndex,
		AttackIndex:  c.attackIndex,
		Scroll:       c.scroll,
		InfoPage:     c.infoPage,
		LogIndex:     c.viewLogIndex(),
		LogBrowsing:  c.logBrowsing,
		Networks:     c.networks.Records(),
		Selected:     c.selected,
		Counters:     c.session.Counters(),
		PacketLog:    c.session.Lines(),
		Credentials:  c.credentials.Items(),
		Activity:     c.activity.Items(),
		StationCount: c.stations,
		TakenAt:      c.now(),
	}
	if c.mode.Kind.RadioRole() == domain.RoleAccessPoint {
		s.APName = c.apName
	}
	if c.notice != nil {
		s.Notice = append([]string(nil), c.notice.lines...)
	}
	return s
}

func (c *Controller) setMode(ctx context.Context, m domain.Mode) {
	from := c.mode
	c.mode = m
	if from.Kind == m.Kind {
		return
	}
	slog.Debug("Mode transition", "from", from.Kind.String(), "to", m.Kind.String())
	telemetry.ModeTransitions.WithLabelValues(m.Kind.String()).Inc()
	c.record(ctx, domain.ActionTransition, m.Kind.String(), from.Kind.String()+" -> "+m.Kind.String())
}

// showNotice hides the mode screen behind lines for the message delay.
func (c *Controller) showNotice(lines ...string) {
	c.notice = &notice{lines: lines, until: c.now().Add(c.messageDelay)}
}

// fail shows a notice for err and returns it. The mode is not changed.
func (c *Controller) fail(ctx context.Context, err error, lines ...string) error {
	slog.Warn("Operation failed", "mode", c.mode.String(), "error", err)
	telemetry.ControllerErrors.WithLabelValues(domain.ErrorKind(err)).Inc()
	c.record(ctx, domain.ActionFailure, c.mode.Kind.String(), err.Error())
	c.showNotice(lines...)
	return err
}

func (c *Controller) expireNotice(now time.Time) {
	if c.notice != nil && !now.Before(c.notice.until) {
		c.notice = nil
	}
}

func (c *Controller) record(ctx context.Context, action domain.JournalAction, target, details string) {
	if c.journal == nil {
		return
	}
	c.journal.Record(ctx, c.activation, action, target, details)
}

func (c *Controller) drainPortals(ctx context.Context) {
	if c.credFeed != nil {
		c.credFeed.Drain(func(r domain.CredentialRecord) {
			c.credentials.Append(r)
			c.record(ctx, domain.ActionCredential, c.apName, r.String())
		})
	}
	if c.actFeed != nil {
		c.actFeed.Drain(func(line string) {
			c.activity.Append(line)
			c.record(ctx, domain.ActionActivity, c.apName, line)
		})
	}
}

// pollStations refreshes the station count. The honeypot logs every change.
func (c *Controller) pollStations(ctx context.Context) {
	n := c.radio.StationCount()
	if n == c.stations {
		return
	}
	c.stations = n
	if c.mode.Kind == domain.ModeHoneypotAP {
		line := "Clients: " + strconv.Itoa(n)
		c.activity.Append(line)
		c.record(ctx, domain.ActionActivity, c.apName, line)
	}
}
