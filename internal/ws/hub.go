package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is the envelope every broadcast frame uses.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub fans events out to every connected dashboard client. It
// implements services.Notifier so game services can publish without
// knowing about websockets.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
	}
}

// Run owns the client set. Call it in its own goroutine before serving.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("[WS] Client connected (%d online)", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
				log.Printf("[WS] Client disconnected (%d online)", len(h.clients))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than stall the hub.
					delete(h.clients, client)
					client.Close()
				}
			}
		}
	}
}

// Publish broadcasts an event to all connected clients.
func (h *Hub) Publish(event string, payload interface{}) {
	data, err := json.Marshal(Event{Type: event, Payload: payload})
	if err != nil {
		log.Printf("[WS] Failed to marshal %s event: %v", event, err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		log.Printf("[WS] Broadcast buffer full, dropping %s event", event)
	}
}

// HandleWebSocket upgrades the connection and attaches the client to
// the hub.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 32),
		wallet: c.Query("wallet"),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}
