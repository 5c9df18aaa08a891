package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/rcalvert/option-tracker/internal/models"
	"github.com/rcalvert/option-tracker/internal/sheet"
	"github.com/rcalvert/option-tracker/internal/tracker"
)

// Tracker is the portion of the tracker service the HTTP layer uses
type Tracker interface {
	Refresh(ctx context.Context) (*tracker.Snapshot, error)
	AddPosition(ctx context.Context, req tracker.AddRequest) (*models.Position, error)
	DeletePositions(ctx context.Context, addrs []int) ([]int, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	tracker Tracker
	log     *logrus.Logger
}

// NewHandler creates a new Handler
func NewHandler(tracker Tracker, log *logrus.Logger) *Handler {
	return &Handler{
		tracker: tracker,
		log:     log,
	}
}

// GetPositions handles GET /positions
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	snap, err := h.tracker.Refresh(r.Context())
	if err != nil {
		h.respondRefreshError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snap.Positions)
}

// GetSummary handles GET /summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	snap, err := h.tracker.Refresh(r.Context())
	if err != nil {
		h.respondRefreshError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snap.Summary)
}

// GetExposure handles GET /exposure
func (h *Handler) GetExposure(w http.ResponseWriter, r *http.Request) {
	snap, err := h.tracker.Refresh(r.Context())
	if err != nil {
		h.respondRefreshError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snap.Exposure)
}

// GetAlerts handles GET /alerts
func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	snap, err := h.tracker.Refresh(r.Context())
	if err != nil {
		h.respondRefreshError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, alertsResponse{
		Expiring: snap.Expiring,
		HighRisk: snap.HighRisk,
	})
}

type alertsResponse struct {
	Expiring []models.EnrichedPosition `json:"expiring"`
	HighRisk []models.EnrichedPosition `json:"high_risk"`
}

// AddPosition handles POST /positions
func (h *Handler) AddPosition(w http.ResponseWriter, r *http.Request) {
	var req tracker.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	position, err := h.tracker.AddPosition(r.Context(), req)
	if err != nil {
		if errors.Is(err, tracker.ErrInvalidPosition) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.WithError(err).Error("failed to add position")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, position)
}

// DeletePositions handles DELETE /positions
func (h *Handler) DeletePositions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Addresses []int `json:"addresses"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Addresses) == 0 {
		http.Error(w, "addresses are required", http.StatusBadRequest)
		return
	}

	deleted, err := h.tracker.DeletePositions(r.Context(), req.Addresses)
	if err != nil {
		h.log.WithError(err).Error("failed to delete positions")
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"deleted": deleted,
			"error":   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string][]int{"deleted": deleted})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) respondRefreshError(w http.ResponseWriter, err error) {
	h.log.WithError(err).Error("failed to refresh positions")
	if errors.Is(err, sheet.ErrStoreUnavailable) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
