package portal

import (
	"context"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wdeck/internal/core/logbuf"
	"github.com/lcalzada-xor/wdeck/internal/core/ports"
	"github.com/lcalzada-xor/wdeck/internal/telemetry"
)

const honeypotWelcomePage = `<html><head><title>Welcome</title></head>` +
	`<body><h1>Welcome to Weak WiFi</h1>` +
	`<p>This is an open WiFi network</p>` +
	`</body></html>`

// Honeypot is the open AP's web server. It serves a bland page and logs
// who talks to it.
type Honeypot struct {
	activity *logbuf.Feed[string]
	http     *httpServer
}

var _ ports.Portal = (*Honeypot)(nil)

// NewHoneypot creates a stopped honeypot publishing activity lines.
func NewHoneypot(addr string, activity *logbuf.Feed[string]) *Honeypot {
	h := &Honeypot{activity: activity}
	h.http = newHTTPServer("honeypot", addr, h.Handler())
	return h
}

// Handler returns the honeypot's routes.
func (h *Honeypot) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", h.handleRoot)
	r.HandleFunc("/login", h.handleLogin)
	r.NotFoundHandler = http.HandlerFunc(h.handleNotFound)
	return r
}

func (h *Honeypot) Start(ctx context.Context) error { return h.http.start() }

func (h *Honeypot) Stop(ctx context.Context) error { return h.http.stop(ctx) }

// Addr returns the bound address.
func (h *Honeypot) Addr() string { return h.http.boundAddr() }

func (h *Honeypot) handleRoot(w http.ResponseWriter, r *http.Request) {
	telemetry.PortalRequests.WithLabelValues("honeypot", "root").Inc()
	writeHTML(w, http.StatusOK, honeypotWelcomePage)
	h.log("HTTP from " + clientIP(r))
}

func (h *Honeypot) handleLogin(w http.ResponseWriter, r *http.Request) {
	telemetry.PortalRequests.WithLabelValues("honeypot", "login").Inc()
	user, pass := r.FormValue("username"), r.FormValue("password")
	if user != "" && pass != "" {
		h.log("Login: " + user + ":" + pass)
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("Login attempted"))
}

func (h *Honeypot) handleNotFound(w http.ResponseWriter, r *http.Request) {
	telemetry.PortalRequests.WithLabelValues("honeypot", "not_found").Inc()
	h.log("404: " + r.URL.RequestURI())
	http.Error(w, "Not found", http.StatusNotFound)
}

func (h *Honeypot) log(line string) {
	if !h.activity.Publish(line) {
		telemetry.LogLinesDropped.WithLabelValues("activity").Inc()
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
