package rest

import (
	"database/sql"
	"log/slog"

	"github.com/edutools/lms-export/internal/export"
	"github.com/edutools/lms-export/internal/transport/middleware"
	"github.com/go-chi/chi"
)

// RegisterAllRoutes wires the export API under /api/v1.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, exportHandler *export.Handler, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if exportHandler != nil {
			r.Post("/exports", exportHandler.CreateExport)
			r.Get("/roles", exportHandler.ListRoles)
		}
	})
}
