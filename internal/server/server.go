package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/bookmehq/bookme/internal/auth"
	"github.com/bookmehq/bookme/internal/authz"
	"github.com/bookmehq/bookme/internal/config"
	"github.com/bookmehq/bookme/internal/rolesync"
	"github.com/bookmehq/bookme/internal/server/middleware"
	"github.com/bookmehq/bookme/internal/store/postgres"
	"github.com/bookmehq/bookme/internal/tenancy"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      *postgres.Store
	auth       *auth.Service
	directory  *tenancy.Directory
	resolver   *authz.Resolver
	maintainer *rolesync.Maintainer
	cfg        *config.Config
}

// New creates a Server with all routes wired. The context bounds the lifetime
// of background goroutines spawned by the rate limiters.
func New(ctx context.Context, cfg *config.Config, store *postgres.Store, authSvc *auth.Service, directory *tenancy.Directory, resolver *authz.Resolver, maintainer *rolesync.Maintainer) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router:     router,
		store:      store,
		auth:       authSvc,
		directory:  directory,
		resolver:   resolver,
		maintainer: maintainer,
		cfg:        cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Mount API routes on /api/v1. Scope binding runs before everything:
	// a request on an unknown host is refused here, no matter the path.
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BindScope(directory))

		// Unauthenticated auth routes (login, refresh), rate limited per IP.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, 5, 10))

			authConfig := huma.DefaultConfig("Bookme Auth API", "1.0.0")
			authConfig.Servers = []*huma.Server{{URL: "/api/v1"}}
			registerAuthRoutes(humachi.New(r, authConfig), authSvc)
		})

		// Platform surface: tenant provisioning, principal management,
		// fleet-wide role resync.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret, store.Principals()))
			r.Use(middleware.RequireSurface(authz.PlatformSurface{}))

			platformConfig := huma.DefaultConfig("Bookme Platform API", "1.0.0")
			platformConfig.Servers = []*huma.Server{{URL: "/api/v1"}}
			registerPlatformRoutes(humachi.New(r, platformConfig), s)
		})

		// Capability probe: needs a principal and a scope but no surface;
		// the resolver itself answers false for anything out of reach.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret, store.Principals()))

			probeConfig := huma.DefaultConfig("Bookme Authz API", "1.0.0")
			probeConfig.Servers = []*huma.Server{{URL: "/api/v1"}}
			registerProbeRoutes(humachi.New(r, probeConfig), s)
		})

		// Tenant surface: membership and role management inside the tenant
		// the request host resolved to.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret, store.Principals()))
			r.Use(middleware.RequireSurface(authz.NewTenantSurface(store.Memberships())))
			r.Use(middleware.RateLimitByTenant(ctx, 100, 200))

			tenantConfig := huma.DefaultConfig("Bookme Tenant API", "1.0.0")
			tenantConfig.Servers = []*huma.Server{{URL: "/api/v1"}}
			registerTenantSurfaceRoutes(humachi.New(r, tenantConfig), s)
		})
	})

	// Health check (unauthenticated, no scope binding).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
