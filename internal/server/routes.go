package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/codedrop/server/internal/config"
	"github.com/codedrop/server/internal/relay"
)

// healthResponse is the GET / body: server identity plus the current
// timestamp.
type healthResponse struct {
	Server string    `json:"server"`
	Time   time.Time `json:"time"`
}

// NewRouter wires the health endpoint and the websocket upgrade.
func NewRouter(hub *relay.Hub, cfg *config.Config, logger *slog.Logger) *mux.Router {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigin),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/ws", serveWs(hub, &upgrader, logger))
	return r
}

// originChecker allows any origin when allowed is empty, otherwise
// requires an exact match on the Origin header.
func originChecker(allowed string) func(*http.Request) bool {
	if allowed == "" {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		return r.Header.Get("Origin") == allowed
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{
		Server: "codedrop relay",
		Time:   time.Now(),
	})
}

// serveWs returns an http.HandlerFunc that upgrades the request to a
// websocket, registers the client with the hub, and starts its
// read/write pumps.
func serveWs(hub *relay.Hub, upgrader *websocket.Upgrader, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("failed to upgrade connection", "error", err)
			return
		}

		client := relay.NewClient(hub, conn)
		hub.Register <- client

		// The pumps own the connection's lifecycle from here.
		go client.WritePump()
		go client.ReadPump()
	}
}
