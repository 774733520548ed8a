package server

import (
	"encoding/json"
	"net/http"
)

// healthResponse is the /health body. Status stays "healthy" while the
// dashboard is still computing its first snapshot.
type healthResponse struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	Version    string `json:"version"`
	State      string `json:"state"`
	Generation uint64 `json:"generation"`
	SnapshotID string `json:"snapshot_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	orch := s.container.Orchestrator

	resp := healthResponse{
		Status:     "healthy",
		Service:    "cropwatch",
		Version:    s.cfg.Version,
		State:      string(orch.State()),
		Generation: orch.LatestGeneration(),
	}
	if snap, ok := orch.Current(); ok {
		resp.SnapshotID = snap.ID
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
