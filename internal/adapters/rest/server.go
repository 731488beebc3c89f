package rest

import (
	"context"
	"net/http"
	"time"

	"listing-service/internal/constants"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
)

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// AssetDir is served read-only under /assets. Empty disables static serving.
	AssetDir string
	// CollaboratorRateLimit is the per-IP budget per minute for /assets and /geocode.
	CollaboratorRateLimit int
}

type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

func NewRouter(
	cfg ServerConfig,
	listingHandler *ListingHandler,
	collaboratorHandler *CollaboratorHandler,
	authMiddleware *AuthMiddleware,
	baseLogger port.LoggerPort,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	rateLimit := cfg.CollaboratorRateLimit
	if rateLimit <= 0 {
		rateLimit = 60
	}
	collaboratorLimiter := httprate.LimitByIP(rateLimit, time.Minute)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Route(constants.APIPrefix, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/agents", listingHandler.List(domain.CatalogAgents))
		r.Get("/builders", listingHandler.List(domain.CatalogBuilders))
		r.Get("/properties", listingHandler.List(domain.CatalogProperties))
		r.Get("/projects", listingHandler.List(domain.CatalogProjects))
		r.Get("/listings", listingHandler.FindListings)

		r.With(authMiddleware.OptionalAuthenticate).Get("/listings/{listingID}", listingHandler.GetListing)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/listings", listingHandler.CreateListing)
			r.Put("/listings/{listingID}", listingHandler.UpdateListing)
			r.With(collaboratorLimiter).Post("/assets", collaboratorHandler.UploadAsset)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(authMiddleware.RequireRole(domain.RoleAdmin))
			r.Patch("/listings/{listingID}/verification", listingHandler.SetVerification)
		})

		r.With(collaboratorLimiter).Get("/geocode", collaboratorHandler.Geocode)
	})

	if cfg.AssetDir != "" {
		fs := http.StripPrefix(constants.AssetsURLPrefix+"/", http.FileServer(http.Dir(cfg.AssetDir)))
		r.Get(constants.AssetsURLPrefix+"/*", fs.ServeHTTP)
	}

	return r
}

func NewServer(cfg ServerConfig, handler http.Handler, baseLogger port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
