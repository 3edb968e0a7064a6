package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FramesCaptured counts well-formed frames delivered by the radio, by family
	FramesCaptured = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wdeck",
			Name:      "frames_captured_total",
			Help:      "Total number of frames classified during packet capture",
		},
		[]string{"family"},
	)

	// FramesSkipped counts malformed or truncated frames
	FramesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wdeck",
			Name:      "frames_skipped_total",
			Help:      "Total number of frames too short to classify",
		},
	)

	// LogLinesDropped counts log records lost because a hand-off queue was full
	LogLinesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wdeck",
			Name:      "log_lines_dropped_total",
			Help:      "Total number of log records dropped before reaching their buffer",
		},
		[]string{"log"},
	)

	// ModeTransitions counts entries into each mode
	ModeTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wdeck",
			Name:      "mode_transitions_total",
			Help:      "Total number of mode transitions by target mode",
		},
		[]string{"mode"},
	)

	// ControllerErrors counts recovered controller errors by kind
	ControllerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wdeck",
			Name:      "controller_errors_total",
			Help:      "Total number of recovered navigation errors",
		},
		[]string{"kind"},
	)

	// PortalRequests counts requests handled by the access point portals
	PortalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wdeck",
			Name:      "portal_requests_total",
			Help:      "Total number of portal HTTP requests by portal and route",
		},
		[]string{"portal", "route"},
	)

	// DNSQueries counts queries answered by the captive DNS responder
	DNSQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wdeck",
			Name:      "dns_queries_total",
			Help:      "Total number of DNS queries answered by the captive portal",
		},
	)

	// InputEvents counts debounced navigation events
	InputEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wdeck",
			Name:      "input_events_total",
			Help:      "Total number of navigation events accepted after debounce",
		},
		[]string{"event"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(FramesCaptured)
		prometheus.DefaultRegisterer.Register(FramesSkipped)
		prometheus.DefaultRegisterer.Register(LogLinesDropped)
		prometheus.DefaultRegisterer.Register(ModeTransitions)
		prometheus.DefaultRegisterer.Register(ControllerErrors)
		prometheus.DefaultRegisterer.Register(PortalRequests)
		prometheus.DefaultRegisterer.Register(DNSQueries)
		prometheus.DefaultRegisterer.Register(InputEvents)
	})
}
