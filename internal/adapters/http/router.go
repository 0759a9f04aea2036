// Package http is the HTTP adapter: routing, auth middleware, and the
// translation between wire DTOs and application calls.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kaju0475/samduk/internal/application"
)

// Handler is the HTTP adapter entrypoint. Keeping only the application
// dependency here preserves clean adapter boundaries.
type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers routes and the middleware stack. Everything under /api
// requires a valid session; /auth/v1/login and qr-check are the ways in.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)
	r.Use(metricsMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/login", handler.login)
		r.Post("/qr-check", handler.qrCheck)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Post("/logout", handler.logout)
			r.Post("/qr-token", handler.qrToken)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(handler.authMiddleware)

		r.Route("/master", func(r chi.Router) {
			r.Get("/cylinders", handler.listCylinders)
			r.Post("/cylinders", handler.createCylinder)
			r.Put("/cylinders", handler.updateCylinder)
			r.Delete("/cylinders/{id}", handler.deleteCylinder)
			r.Get("/customers", handler.listCustomers)
			r.Post("/customers", handler.createCustomer)
		})

		r.Route("/work", func(r chi.Router) {
			r.Post("/charging", handler.workCharging)
			r.Post("/delivery", handler.workDelivery)
			r.Post("/inspection", handler.workInspection)
			r.Post("/disposal", handler.workDisposal)
		})

		r.Get("/history", handler.queryHistory)
		r.Get("/system/reports/long-term", handler.longTermReport)
		r.Get("/dashboard/stats", handler.dashboardStats)
	})

	return r
}
