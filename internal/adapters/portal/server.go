package portal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 5 * time.Second

// httpServer is the listener lifecycle shared by both portals.
type httpServer struct {
	name    string
	addr    string
	handler http.Handler

	mu       sync.Mutex
	srv      *http.Server
	ln       net.Listener
	done     chan struct{}
	inflight *handlerGate
}

// handlerGate counts running handlers and refuses new ones once closed.
type handlerGate struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func (g *handlerGate) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		if g.closed {
			g.mu.Unlock()
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}
		g.wg.Add(1)
		g.mu.Unlock()
		defer g.wg.Done()
		next.ServeHTTP(w, r)
	})
}

// close refuses new handlers and waits for the running ones.
func (g *handlerGate) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.wg.Wait()
}

func newHTTPServer(name, addr string, handler http.Handler) *httpServer {
	return &httpServer{
		name:    name,
		addr:    addr,
		handler: otelhttp.NewHandler(handler, name),
	}
}

// start binds the listener and serves in the background.
func (s *httpServer) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%s listen on %s: %w", s.name, s.addr, err)
	}
	gate := &handlerGate{}
	srv := &http.Server{
		Handler:           gate.wrap(s.handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("%s serve error: %v", s.name, err)
		}
	}()

	s.srv, s.ln, s.done, s.inflight = srv, ln, done, gate
	log.Printf("%s listening on %s", s.name, ln.Addr())
	return nil
}

// stop shuts the server down and returns once no handler is running. When
// the graceful shutdown times out the remaining connections are closed.
func (s *httpServer) stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	err := s.srv.Shutdown(shutdownCtx)
	if err != nil {
		log.Printf("%s graceful shutdown failed, closing connections: %v", s.name, err)
		if cerr := s.srv.Close(); cerr != nil {
			log.Printf("%s close error: %v", s.name, cerr)
		}
	}
	<-s.done
	s.inflight.close()
	s.srv, s.ln, s.done, s.inflight = nil, nil, nil, nil
	log.Printf("%s stopped", s.name)
	return err
}

// boundAddr returns the listening address, or "" when stopped.
func (s *httpServer) boundAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}
