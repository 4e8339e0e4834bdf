package notify

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// ChangeMessage is what storefront browsers receive per change token.
// Content-agnostic on purpose: clients re-fetch /api/items on receipt.
type ChangeMessage struct {
	Table string `json:"table"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin page serves the socket; the CSRF-protected forms are the
	// mutation surface, so cross-origin reads of change tokens are harmless.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ServeWS upgrades a storefront connection and forwards change tokens
// until the client disconnects or the hub shuts down.
func ServeWS(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("WebSocket upgrade failed", "error", err, "ip", r.RemoteAddr)
			return
		}

		ch, cancel := hub.Subscribe()

		// Reader drains control frames and detects disconnects.
		done := make(chan struct{})
		go func() {
			defer close(done)
			conn.SetReadLimit(512)
			conn.SetReadDeadline(time.Now().Add(pongWait))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(pongWait))
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		go func() {
			defer conn.Close()
			defer cancel()
			ticker := time.NewTicker(pingPeriod)
			defer ticker.Stop()
			for {
				select {
				case _, ok := <-ch:
					if !ok {
						conn.SetWriteDeadline(time.Now().Add(writeWait))
						conn.WriteMessage(websocket.CloseMessage, []byte{})
						return
					}
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteJSON(ChangeMessage{Table: "items"}); err != nil {
						return
					}
				case <-ticker.C:
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()
	}
}
