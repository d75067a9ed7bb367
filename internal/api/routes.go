package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ntdat247/Autoland-Monitoring/internal/config"
	"github.com/ntdat247/Autoland-Monitoring/internal/logger"
	"github.com/ntdat247/Autoland-Monitoring/internal/pipeline"
	"github.com/ntdat247/Autoland-Monitoring/internal/storage/sqlite"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(cfg *config.Config, log *logger.Logger, processor *pipeline.Processor, reports *sqlite.ReportStore, fleet *sqlite.FleetStore) *Router {
	return &Router{
		handler:    NewHandler(cfg, log, processor, reports, fleet),
		middleware: NewMiddleware(log),
		logger:     log.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS)

	// API routes
	router.Route("/api/v1", func(router chi.Router) {
		// Report routes
		router.Get("/reports", r.handler.GetReports)
		router.Get("/reports/{id}", r.handler.GetReportByID)
		router.Post("/reports/process", r.handler.ProcessReport)

		// Fleet compliance
		router.Get("/fleet", r.handler.GetFleet)

		// Dashboard
		router.Get("/dashboard/stats", r.handler.GetDashboardStats)
		router.Get("/dashboard/cost-savings", r.handler.GetCostSavings)
		router.Get("/dashboard/autolands/recent", r.handler.GetRecentAutolands)

		// Health check
		router.Get("/health", r.handler.GetHealth)
	})

	return router
}
