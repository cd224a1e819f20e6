package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hintwise/hintgate/internal/auth"
	"github.com/hintwise/hintgate/internal/config"
	gatemiddleware "github.com/hintwise/hintgate/internal/middleware"
	"github.com/hintwise/hintgate/internal/proxy"
	"github.com/hintwise/hintgate/internal/rbac"
)

// RouterOptions controls the construction of the gateway HTTP router.
type RouterOptions struct {
	Cfg        *config.Config
	Codec      *auth.TokenCodec
	LoginState *auth.LoginState
	Registry   *rbac.Registry
	Tickets    auth.TicketValidator
	Dispatcher *proxy.Dispatcher

	// CORSOptions overrides the default policy when set.
	CORSOptions *cors.Options

	// HealthHandler overrides the default health endpoint when set.
	HealthHandler http.HandlerFunc
}

// DefaultCORSOptions mirrors the original deployment: any origin, with
// credentials, since the browser must carry the session cookie.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return true
		},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// proxyRoutes fixes the mapping of route prefixes to logical services.
// chatbot strips its prefix before forwarding, the record services keep
// theirs because their backends route on the full path.
var proxyRoutes = []struct {
	prefix  string
	service string
}{
	{"/chatbot", "chatbot"},
	{"/create", "create"},
	{"/update", "update"},
	{"/delete", "delete"},
}

// NewRouter assembles the gateway router: open health and login endpoints,
// and the proxied service routes behind authentication and RBAC.
func NewRouter(opts RouterOptions) (chi.Router, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	authDeps := AuthHandlerDependencies{
		Tickets:    opts.Tickets,
		Registry:   opts.Registry,
		Codec:      opts.Codec,
		LoginState: opts.LoginState,
		Cfg:        opts.Cfg,
	}
	r.Get("/login", HandleLogin(authDeps))
	r.Get("/logout", HandleLogout(authDeps))

	authn, err := gatemiddleware.NewAuthnMiddleware(gatemiddleware.AuthnDependencies{
		Codec:      opts.Codec,
		LoginState: opts.LoginState,
		LoginPath:  "/login",
	})
	if err != nil {
		return nil, fmt.Errorf("configure authentication middleware: %w", err)
	}
	authz, err := gatemiddleware.NewAuthzMiddleware(opts.Registry)
	if err != nil {
		return nil, fmt.Errorf("configure authorization middleware: %w", err)
	}

	// Routes and the service registry are both static, so resolve every
	// proxy handler up front; a miss is a startup wiring bug.
	handlers := make(map[string]http.Handler, len(proxyRoutes))
	for _, route := range proxyRoutes {
		handler, err := opts.Dispatcher.Handler(route.service)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", route.prefix, err)
		}
		handlers[route.prefix] = handler
	}

	r.Group(func(protected chi.Router) {
		protected.Use(authn)
		protected.Use(authz)

		for _, route := range proxyRoutes {
			protected.Handle(route.prefix, handlers[route.prefix])
			protected.Handle(route.prefix+"/*", handlers[route.prefix])
		}
	})

	// Everything unmatched gets the structured 404, including wrong-method
	// hits on known paths, matching the original catch-all behaviour.
	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleNotFound)

	return r, nil
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, NotFoundResponse{
		Error:   "Not Found",
		Message: "The requested endpoint does not exist",
		Path:    r.URL.Path,
	})
}
