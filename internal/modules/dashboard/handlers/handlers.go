// Package handlers provides HTTP handlers for the crop market dashboard.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/cropwatch/internal/events"
	"github.com/aristath/cropwatch/internal/modules/catalog"
	"github.com/aristath/cropwatch/internal/modules/dashboard"
	"github.com/rs/zerolog"
)

// Handler handles dashboard HTTP requests
type Handler struct {
	orchestrator   *dashboard.Orchestrator
	bus            *events.Bus
	originPatterns []string
	log            zerolog.Logger
}

// NewHandler creates a new dashboard handler.
// originPatterns restricts which browser origins may open the websocket stream.
func NewHandler(
	orchestrator *dashboard.Orchestrator,
	bus *events.Bus,
	originPatterns []string,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		orchestrator:   orchestrator,
		bus:            bus,
		originPatterns: originPatterns,
		log:            log.With().Str("handler", "dashboard").Logger(),
	}
}

// SelectionRequest is the body of PUT /api/dashboard/selection.
// Empty fields keep the current value.
type SelectionRequest struct {
	Crop   string `json:"crop"`
	Region string `json:"region"`
}

// HandleGetDashboard handles GET /api/dashboard
func (h *Handler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.orchestrator.Current()

	var data interface{}
	if ok {
		data = snapshot
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     data,
		"metadata": h.metadata(),
	})
}

// HandleGetState handles GET /api/dashboard/state
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	sel := h.orchestrator.Selection()

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"state":      h.orchestrator.State(),
			"generation": h.orchestrator.LatestGeneration(),
			"crop":       sel.Crop.Name,
			"region":     sel.Region,
		},
		"metadata": h.metadata(),
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleSelect handles PUT /api/dashboard/selection.
// The refresh runs in the background; clients poll /state or listen on the stream.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Crop == "" && req.Region == "" {
		http.Error(w, "crop or region is required", http.StatusBadRequest)
		return
	}

	generation, err := h.orchestrator.Select(req.Crop, req.Region)
	if err != nil {
		h.writeError(w, err)
		return
	}

	sel := h.orchestrator.Selection()
	h.writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"data": map[string]interface{}{
			"generation": generation,
			"crop":       sel.Crop.Name,
			"region":     sel.Region,
		},
		"metadata": h.metadata(),
	})
}

// HandleRefresh handles POST /api/dashboard/refresh.
// It blocks until the refresh completes and returns the new snapshot.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.orchestrator.RefreshCurrent(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     snapshot,
		"metadata": h.metadata(),
	})
}

// HandleGetCatalog handles GET /api/catalog
func (h *Handler) HandleGetCatalog(w http.ResponseWriter, r *http.Request) {
	cat := h.orchestrator.Catalog()

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"crops":   cat.Crops(),
			"regions": cat.Regions(),
			"markets": cat.Markets(),
		},
		"metadata": h.metadata(),
	}

	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handler) metadata() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"state":     h.orchestrator.State(),
	}
}

// writeError maps orchestrator errors to status codes
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownCrop), errors.Is(err, catalog.ErrUnknownRegion):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, dashboard.ErrSuperseded):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "Refresh cancelled", http.StatusServiceUnavailable)
	case errors.Is(err, dashboard.ErrClosed):
		http.Error(w, "Dashboard is shutting down", http.StatusServiceUnavailable)
	default:
		h.log.Error().Err(err).Msg("Dashboard request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
