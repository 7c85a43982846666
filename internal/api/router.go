package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Dividend-Tracker-Backend/internal/api/middleware"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/config"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/service"
)

// Services groups the services the router exposes.
// SummaryCache may be nil when scheduled refresh is disabled.
type Services struct {
	System       *service.SystemService
	Portfolio    *service.PortfolioService
	Dividend     *service.DividendService
	Snapshot     *service.SnapshotService
	SummaryCache handlers.SummaryCache
}

// NewRouter creates and configures the HTTP router
func NewRouter(svcs Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	systemHandler := handlers.NewSystemHandler(svcs.System)
	r.Get("/", systemHandler.Root)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(svcs.Portfolio)
			r.Get("/", portfolioHandler.Positions)
		})

		r.Route("/dividend", func(r chi.Router) {
			dividendHandler := handlers.NewDividendHandler(svcs.Portfolio, svcs.Dividend, svcs.Snapshot, svcs.SummaryCache)
			r.Get("/", dividendHandler.Dividends)
			r.Get("/summary", dividendHandler.Summary)
			r.Get("/upcoming", dividendHandler.Upcoming)
			r.Get("/snapshot", dividendHandler.Snapshot)
		})
	})

	return r
}
