// websocket/hub.go
package websocket

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type wsHub struct {
	mutex   sync.Mutex
	clients map[*client]bool
}

var hub = &wsHub{clients: make(map[*client]bool)}

// ServeWS upgrades the connection and registers the client for broadcasts.
// Authentication happens before the upgrade in the route handler.
func ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64)}

	hub.mutex.Lock()
	hub.clients[c] = true
	hub.mutex.Unlock()

	go c.writePump()
	go c.readPump()
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump discards inbound frames; the socket is push-only. It exists to
// detect closes and unregister the client.
func (c *client) readPump() {
	defer func() {
		hub.mutex.Lock()
		if _, ok := hub.clients[c]; ok {
			delete(hub.clients, c)
			close(c.send)
		}
		hub.mutex.Unlock()
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func broadcast(data []byte) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for c := range hub.clients {
		select {
		case c.send <- data:
		default:
			close(c.send)
			delete(hub.clients, c)
		}
	}
}
