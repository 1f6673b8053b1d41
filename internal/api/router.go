package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	if s.metrics != nil {
		r.Method(http.MethodGet, s.metricsPath, s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Mutating routes take the actor from the token or headers.
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.With(s.actorMiddleware).Post("/", s.handleCreateDevice)
			r.Get("/stats", s.handleDeviceStats)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Get("/allocation", s.handleGetDeviceAllocation)

				r.Group(func(r chi.Router) {
					r.Use(s.actorMiddleware)
					r.Patch("/", s.handleUpdateDevice)
					r.Delete("/", s.handleRemoveDevice)
					r.Put("/status", s.handleChangeDeviceStatus)
					r.Post("/return", s.handleReturnDevice)
				})
			})
		})

		r.Route("/departments", func(r chi.Router) {
			r.Get("/", s.handleListDepartments)
			r.With(s.actorMiddleware).Post("/", s.handleCreateDepartment)

			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", s.handleGetDepartment)
				r.Get("/employees", s.handleListDepartmentEmployees)
				r.With(s.actorMiddleware).Patch("/", s.handleUpdateDepartment)
				r.With(s.actorMiddleware).Delete("/", s.handleDeleteDepartment)
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", s.handleListEmployees)
			r.With(s.actorMiddleware).Post("/", s.handleCreateEmployee)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetEmployee)
				r.With(s.actorMiddleware).Patch("/", s.handleUpdateEmployee)
				r.With(s.actorMiddleware).Delete("/", s.handleDeleteEmployee)
			})
		})

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", s.handleListRequests)
			r.With(s.actorMiddleware).Post("/", s.handleCreateRequest)
			r.Get("/{id}", s.handleGetRequest)
			r.With(s.actorMiddleware).Post("/{id}/approve", s.handleApproveRequest)
			r.With(s.actorMiddleware).Post("/{id}/reject", s.handleRejectRequest)
		})

		r.Route("/allocations", func(r chi.Router) {
			r.Get("/", s.handleListAllocations)
			r.Get("/{id}", s.handleGetAllocation)
		})

		r.Get("/reports/summary", s.handleReportSummary)
		r.Get("/audit", s.handleListAudit)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
