package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/betbot/analytics-api/internal/logic"
)

// GetGameAnalytics returns the win prediction and team analytics for a scheduled game
// @Summary Get Game Analytics
// @Tags MLB
// @Produce json
// @Param gameId path string true "Scheduled game ID"
// @Success 200 {object} models.GamePrediction
// @Failure 404 {object} map[string]string "Not Found"
// @Router /mlb/games/{gameId}/analytics [get]
func (h *Handler) GetGameAnalytics(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameId")
	if gameID == "" {
		h.errorResponse(w, http.StatusBadRequest, "Game ID is required")
		return
	}

	pred, err := h.prediction.PredictGame(r.Context(), gameID)
	if errors.Is(err, logic.ErrNotFound) {
		h.errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}
	if err != nil {
		h.logger.Errorw("Failed to predict game", "error", err, "gameID", gameID)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}

	h.jsonResponse(w, http.StatusOK, pred)
}

type featureQuery struct {
	Home int `validate:"required,gt=0"`
	Away int `validate:"required,gt=0,nefield=Home"`
	At   time.Time
}

// GetFeatures returns the model feature vector for a matchup as of a point in time
// @Summary Get Matchup Features
// @Tags MLB
// @Produce json
// @Param home query int true "Home team ID"
// @Param away query int true "Away team ID"
// @Param at query string false "Game time (RFC3339 or YYYY-MM-DD), defaults to now"
// @Success 200 {object} models.FeatureSet
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Team not found"
// @Router /mlb/features [get]
func (h *Handler) GetFeatures(w http.ResponseWriter, r *http.Request) {
	q, err := parseFeatureQuery(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validator.Struct(q); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "home and away must be distinct positive team IDs")
		return
	}

	set, err := h.prediction.ComputeFeatureVector(r.Context(), q.Home, q.Away, q.At)
	if errors.Is(err, logic.ErrNotFound) {
		h.errorResponse(w, http.StatusNotFound, "Team not found")
		return
	}
	if err != nil {
		h.logger.Errorw("Failed to compute features", "error", err, "home", q.Home, "away", q.Away)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to compute features")
		return
	}

	h.jsonResponse(w, http.StatusOK, set)
}

func parseFeatureQuery(r *http.Request) (featureQuery, error) {
	var q featureQuery
	var err error

	values := r.URL.Query()
	if q.Home, err = strconv.Atoi(values.Get("home")); err != nil {
		return q, errors.New("invalid home team ID")
	}
	if q.Away, err = strconv.Atoi(values.Get("away")); err != nil {
		return q, errors.New("invalid away team ID")
	}

	at := values.Get("at")
	if at == "" {
		q.At = time.Now().UTC()
		return q, nil
	}
	if q.At, err = time.Parse(time.RFC3339, at); err == nil {
		return q, nil
	}
	if q.At, err = time.Parse("2006-01-02", at); err == nil {
		return q, nil
	}
	return q, errors.New("invalid at: use RFC3339 or YYYY-MM-DD")
}
