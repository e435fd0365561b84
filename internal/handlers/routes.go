package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Register mounts the MLB analytics API under /api/v1
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/api/v1/mlb", func(r chi.Router) {
		r.Get("/games/{gameId}/analytics", h.GetGameAnalytics)
		r.Get("/features", h.GetFeatures)
		r.Get("/model", h.GetModelInfo)
		r.Post("/model/reload", h.ReloadModel)
		r.Get("/trends", h.GetTrends)
	})
}
