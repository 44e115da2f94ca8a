package server

import (
	"net/http"
	"time"
)

// RegisterAPIRoutes mounts every API endpoint on the mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "world-idle",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/api/game/load", h.Load)
	mux.HandleFunc("/api/game/save", h.Save)
	mux.HandleFunc("/api/game/click", h.Click)
	mux.HandleFunc("/api/game/buy/producer", h.BuyProducer)
	mux.HandleFunc("/api/game/buy/upgrade", h.BuyUpgrade)
	mux.HandleFunc("/api/game/offline/confirm", h.ConfirmOffline)
	mux.HandleFunc("/api/game/verify", h.Verify)
	mux.HandleFunc("/api/game/prestige", h.Prestige)
	mux.HandleFunc("/api/game/stream", h.Stream)
	mux.HandleFunc("/api/claim/issue", h.TokenClaim)
	mux.HandleFunc("/api/referral", h.Referral)
	mux.HandleFunc("/api/telemetry/stats", h.TelemetryStats)
}
