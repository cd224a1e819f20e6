// Package proxy implements the gateway's dispatcher: it forwards authorized
// requests to backend services, injecting trust headers and translating
// upstream failures into gateway-level errors.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/hintwise/hintgate/internal/auth"
)

// Trust headers asserted to backends. They are valid only because the
// dispatcher is the sole path into the backend services; backends accept
// them without re-verifying tokens.
const (
	HeaderGatewayRequest = "X-Gateway-Request"
	HeaderUserPID        = "X-User-PID"
	HeaderUserRole       = "X-User-Role"
)

// Target describes one backend service.
type Target struct {
	// Name is the logical service name used in routes, logs and error bodies.
	Name string
	// BaseURL is the backend's base URL.
	BaseURL string
	// StripPrefix, when set, is removed from the inbound path before
	// forwarding. Empty keeps the path as received.
	StripPrefix string
}

// UpstreamErrorResponse is the body returned when a backend is unreachable.
// It names the logical service only; internal addresses never leak.
type UpstreamErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Service string `json:"service"`
}

// Dispatcher holds one reverse proxy per configured backend. Proxies are
// built once at startup; per-request state travels on the request context.
type Dispatcher struct {
	handlers map[string]http.Handler
	timeout  time.Duration
}

// NewDispatcher builds reverse proxies for the given targets. The timeout
// bounds the whole upstream exchange; the upstream call is cancelled when it
// elapses so callers always receive a timely response.
func NewDispatcher(targets []Target, timeout time.Duration) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]http.Handler, len(targets)),
		timeout:  timeout,
	}

	for _, target := range targets {
		backendURL, err := url.Parse(target.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base URL for service %s: %w", target.Name, err)
		}
		if backendURL.Scheme == "" || backendURL.Host == "" {
			return nil, fmt.Errorf("service %s: base URL %q lacks scheme or host", target.Name, target.BaseURL)
		}
		d.handlers[target.Name] = d.buildProxy(target, backendURL)
	}

	return d, nil
}

// Handler returns the proxy handler for a logical service name.
func (d *Dispatcher) Handler(name string) (http.Handler, error) {
	handler, ok := d.handlers[name]
	if !ok {
		return nil, fmt.Errorf("service %s not registered", name)
	}
	return handler, nil
}

func (d *Dispatcher) buildProxy(target Target, backendURL *url.URL) http.Handler {
	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(backendURL)
			pr.SetXForwarded()

			// Recompute the forwarded path from the inbound request so the
			// prefix strip applies to what the client sent, not to whatever
			// SetURL joined.
			path := pr.In.URL.Path
			if target.StripPrefix != "" {
				path = strings.TrimPrefix(path, target.StripPrefix)
				if path == "" {
					path = "/"
				}
			}
			pr.Out.URL.Path = singleJoin(backendURL.Path, path)
			pr.Out.URL.RawQuery = pr.In.URL.RawQuery

			// Inject trust headers. Set overwrites any client-supplied
			// copies, closing the spoofing hole at the trust boundary.
			pr.Out.Header.Set(HeaderGatewayRequest, "true")
			if principal, ok := auth.PrincipalFromContext(pr.In.Context()); ok {
				pr.Out.Header.Set(HeaderUserPID, principal.PID)
				pr.Out.Header.Set(HeaderUserRole, principal.Role)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			d.respondUpstreamError(w, r, target.Name, err)
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d.timeout)
		defer cancel()

		if principal, ok := auth.PrincipalFromContext(ctx); ok {
			log.Printf("proxying %s %s to %s (pid=%s role=%s)",
				r.Method, r.URL.Path, target.Name, principal.PID, principal.Role)
		}
		proxy.ServeHTTP(w, r.WithContext(ctx))
	})
}

// respondUpstreamError translates a failed or timed-out upstream call into a
// 502 naming the unreachable service. No retry is attempted: the backend
// operations are not idempotent and a silent replay could duplicate them.
func (d *Dispatcher) respondUpstreamError(w http.ResponseWriter, r *http.Request, service string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		log.Printf("proxy timeout after %v for %s %s (service=%s)", d.timeout, r.Method, r.URL.Path, service)
	} else {
		log.Printf("proxy error for %s %s (service=%s): %v", r.Method, r.URL.Path, service, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_ = json.NewEncoder(w).Encode(UpstreamErrorResponse{
		Error:   "Bad Gateway",
		Message: "The service is temporarily unavailable",
		Service: service,
	})
}

// singleJoin joins two URL path segments with exactly one slash.
func singleJoin(a, b string) string {
	aHasSlash := strings.HasSuffix(a, "/")
	bHasSlash := strings.HasPrefix(b, "/")
	switch {
	case aHasSlash && bHasSlash:
		return a + b[1:]
	case !aHasSlash && !bHasSlash:
		return a + "/" + b
	}
	return a + b
}
