package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/angeloszaimis/api-gateway/internal/circuitbreaker"
)

type snapshotResponse struct {
	Snapshot
	Breakers map[string]circuitbreaker.Snapshot `json:"breakers"`
}

// Handler serves the current metrics snapshot as JSON, including the
// breaker state reported by breakerStats at request time.
func (c *Collector) Handler(breakerStats func() map[string]circuitbreaker.Snapshot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := snapshotResponse{
			Snapshot: c.metrics.Snapshot(),
		}
		if breakerStats != nil {
			resp.Breakers = breakerStats()
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}
