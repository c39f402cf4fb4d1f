package menu

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler returns an HTTP handler that responds with the installed menu
// tree as JSON. Actions are not serialized.
func (m *Manager) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("handling menu request",
			"method", r.Method,
			"url", r.URL.Path,
		)

		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		defs := []Definition{}
		if current := m.Current(); current != nil {
			defs = current.Definitions()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(defs); err != nil {
			slog.Error("failed to encode menu", "error", err)
			return
		}
	})
}
