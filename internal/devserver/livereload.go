package devserver

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ReloadHub tracks connected browsers and tells them to reload after a
// successful rebuild.
type ReloadHub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

// NewReloadHub creates an empty hub.
func NewReloadHub() *ReloadHub {
	return &ReloadHub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			// Local development tool; the page origin varies with the port.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler upgrades the connection and parks it until the client goes away.
func (h *ReloadHub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		h.mu.Lock()
		h.clients[conn] = true
		h.mu.Unlock()

		// Drain until the peer disconnects; clients never send anything
		// meaningful.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					h.drop(conn)
					return
				}
			}
		}()
	}
}

// Broadcast tells every connected client to reload.
func (h *ReloadHub) Broadcast() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
			log.Printf("livereload: dropping client: %v", err)
			h.drop(conn)
		}
	}
}

func (h *ReloadHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// ClientCount reports the number of connected clients.
func (h *ReloadHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
