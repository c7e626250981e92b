package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/plastinin/pdfpreview/internal/adapter/http/handler"
	httpmiddleware "github.com/plastinin/pdfpreview/internal/adapter/http/middleware"
	"go.uber.org/zap"
)

// NewRouter создаёт и настраивает HTTP роутер
func NewRouter(
	conversionHandler *handler.ConversionHandler,
	healthHandler *handler.HealthHandler,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.NewLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Health check (вне версионирования API)
	r.Get("/health", healthHandler.Check)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Синхронная конвертация: итог в теле ответа
		r.Post("/convert", conversionHandler.Convert)

		// Conversions
		r.Route("/conversions", func(r chi.Router) {
			r.Post("/", conversionHandler.Create)
			r.Get("/", conversionHandler.List)
			r.Get("/{id}", conversionHandler.GetByID)
			r.Delete("/{id}", conversionHandler.Delete)
			r.Get("/{id}/image", conversionHandler.Image)
			r.Get("/{id}/thumbnail", conversionHandler.Thumbnail)
		})
	})

	return r
}
