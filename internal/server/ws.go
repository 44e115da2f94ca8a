package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The mini-app is served from the World App webview; origin checks are
	// handled at the edge.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const streamInterval = time.Second

// GET /api/game/stream?wallet=0x...
//
// Pushes the balance/rate view once per second so the client can render the
// counter without polling. Read-only; every mutation still goes through the
// POST endpoints.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	s, ok := h.sessionFor(w, r, wallet)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	defer conn.Close()

	// Drain client frames so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			state := h.stateOf(s)
			if err := conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := conn.WriteJSON(state); err != nil {
				return
			}
		}
	}
}
