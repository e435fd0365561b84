package handlers

import (
	"net/http"
)

// GetTrends returns the hot/cold teams and rest-day impact board
// @Summary Get Trend Board
// @Tags MLB
// @Produce json
// @Success 200 {object} models.TrendBoard
// @Router /mlb/trends [get]
func (h *Handler) GetTrends(w http.ResponseWriter, r *http.Request) {
	board, err := h.trends.Board(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to get trend board", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get trends")
		return
	}
	h.jsonResponse(w, http.StatusOK, board)
}
