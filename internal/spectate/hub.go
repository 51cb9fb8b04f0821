// Package spectate broadcasts the bot's moves to connected websocket
// spectators so a human can watch a running game live.
package spectate

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is one move broadcast to spectators.
type Event struct {
	GameID string `json:"game_id"`
	Mine   bool   `json:"mine"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Score  string `json:"score,omitempty"`
}

// client is a single connected spectator.
type client struct {
	ws   *websocket.Conn
	send chan []byte
}

// Hub fans moves out to every connected spectator. Register/unregister
// and the broadcast itself are all channel operations so Hub's state is
// only ever touched from its own run loop.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
}

// NewHub builds an idle Hub; call Run in its own goroutine to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
	}
}

// Run drives the hub's event loop until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
		case <-stop:
			for c := range h.clients {
				close(c.send)
			}
			return
		}
	}
}

// Publish broadcasts ev to every connected spectator. It never blocks
// the caller on a slow or absent spectator: the broadcast channel is
// buffered, and a full per-client queue drops that client instead of
// stalling the search loop.
func (h *Hub) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("spectate: failed to marshal event: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Printf("spectate: broadcast channel full, dropping event for game %s", ev.GameID)
	}
}

// ServeHTTP upgrades a request to a websocket spectator connection and
// registers it with the hub until the connection drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("spectate: upgrade failed: %v", err)
		return
	}
	c := &client{ws: ws, send: make(chan []byte, 16)}
	h.register <- c

	go h.writePump(c)
	go h.readPump(c)
}

// readPump only exists to notice the connection closing; spectators
// never send anything meaningful to the hub.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister <- c
		c.ws.Close()
	}()
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
