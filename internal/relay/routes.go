// Package relay wires the HTTP handlers into a ServeMux.
package relay

import (
	"net/http"

	"github.com/rs/zerolog"
)

// SetupRoutes configures and returns a ServeMux with the relay routes: the
// health check at the root and the WebSocket endpoint at /websocket. Callers
// may register additional routes (the account API) on the returned mux.
func SetupRoutes(hub *Hub, cfg Config, log zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("/websocket", NewWebSocketHandler(hub, cfg, log))
	return mux
}
