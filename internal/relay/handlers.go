// Package relay exposes the HTTP handlers for the WebSocket upgrade endpoint
// and the health check.
package relay

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// NewWebSocketHandler returns the upgrade handler for the relay endpoint. It
// validates the method and origin, upgrades the connection, and hands the new
// session to the hub, which launches the pump goroutines and sends the init
// snapshot.
func NewWebSocketHandler(hub *Hub, cfg Config, log zerolog.Logger) http.HandlerFunc {
	policy := newOriginPolicy(cfg.AllowedOrigins, log)
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     policy.check,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Str("addr", r.RemoteAddr).Msg("websocket upgrade failed")
			return
		}

		client := NewClient(conn, hub, r.RemoteAddr)
		if err := hub.Register(client); err != nil {
			log.Warn().Err(err).Str("addr", r.RemoteAddr).Msg("rejecting connection")
			_ = conn.Close()
		}
	}
}

// HealthHandler provides a simple health check endpoint that returns server
// status.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "MapChat relay is running!")
}
