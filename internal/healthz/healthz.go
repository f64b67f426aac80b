// Package healthz mounts the indexer's only HTTP surface: process
// liveness and a read-only status snapshot. No JSON-RPC read façade is
// exposed here (spec.md §4.F AMBIENT note) — that stays out of scope.
package healthz

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hiveio/hive-indexer/internal/syncer"
)

// NewRouter builds a chi router exposing /healthz and /status over s.
func NewRouter(s *syncer.Syncer) chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", healthzHandler)
	r.Get("/status", statusHandler(s))
	return r
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func statusHandler(s *syncer.Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := s.Status(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
