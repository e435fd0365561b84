package handlers

import (
	"net/http"
)

// GetModelInfo describes the configured prediction model
// @Summary Get Model Info
// @Tags MLB
// @Produce json
// @Success 200 {object} models.ModelInfo
// @Router /mlb/model [get]
func (h *Handler) GetModelInfo(w http.ResponseWriter, r *http.Request) {
	if h.model == nil {
		h.errorResponse(w, http.StatusServiceUnavailable, "Model service not configured")
		return
	}
	h.jsonResponse(w, http.StatusOK, h.model.Info())
}

// ReloadModel discards the cached model and loads it from disk again.
// Cached predictions are dropped after a successful reload.
// @Summary Reload Model
// @Tags MLB
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{} "Model could not be loaded"
// @Router /mlb/model/reload [post]
func (h *Handler) ReloadModel(w http.ResponseWriter, r *http.Request) {
	if h.model == nil {
		h.errorResponse(w, http.StatusServiceUnavailable, "Model service not configured")
		return
	}

	ok := h.model.Reload()
	info := h.model.Info()
	status := http.StatusOK
	invalidated := false
	if !ok {
		h.logger.Warnw("Model reload failed", "error", info.Error)
		status = http.StatusServiceUnavailable
	} else if h.prediction != nil {
		if err := h.prediction.InvalidateCache(r.Context()); err != nil {
			h.logger.Warnw("Failed to invalidate cached predictions", "error", err)
		} else {
			invalidated = true
		}
	}
	h.jsonResponse(w, status, map[string]interface{}{
		"reloaded":         ok,
		"cacheInvalidated": invalidated,
		"model":            info,
	})
}
