package web

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// SnapshotSource is the read side of the mode controller.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
}

// SamplePusher accepts joystick samples from outside the device.
type SamplePusher interface {
	Push(s domain.RawSample) bool
}

// Server is the device's status server: metrics, a JSON view of the
// controller and journal, and a WebSocket mirror of the display.
type Server struct {
	Addr    string
	Source  SnapshotSource
	Journal ports.Journal
	Hub     *Hub
	Input   SamplePusher // nil disables POST /api/nav
	srv     *http.Server
	ready   chan net.Addr
}

// NewServer creates a new status server.
func NewServer(addr string, source SnapshotSource, journal ports.Journal) *Server {
	return &Server{
		Addr:    addr,
		Source:  source,
		Journal: journal,
		Hub:     NewHub(DefaultBroadcastInterval),
		ready:   make(chan net.Addr, 1),
	}
}

// Handler returns the instrumented routes.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(SetupRoutes(s), "wdeck-status")
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.Hub.Start(ctx)

	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	go func() {
		<-ctx.Done()
		log.Println("Status server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Hub.CloseAll()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Status server shutdown error: %v", err)
		}
	}()

	log.Printf("Status server listening on %s", ln.Addr())
	s.ready <- ln.Addr()
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Ready yields the bound address once Run is serving.
func (s *Server) Ready() <-chan net.Addr { return s.ready }
