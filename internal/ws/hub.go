package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Event is the envelope pushed to every connected client.
type Event struct {
	Type    string      `json:"type"`
	Action  string      `json:"action"`
	Data    interface{} `json:"data,omitempty"`
	User    *EventUser  `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
	At      time.Time   `json:"at"`
}

type EventUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

const (
	TypeStockUpdate = "stock_update"
	TypeOrderUpdate = "order_update"
)

type Hub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{}
	mutex      sync.Mutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		log:        log.Named("ws"),
	}
}

// Register and Unregister return immediately once Run has stopped.
func (h *Hub) Register(conn *websocket.Conn) {
	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
	}
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Publish queues an event for broadcast. Events are dropped when the queue is full.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("marshal event", zap.String("action", ev.Action), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("broadcast queue full, dropping event", zap.String("action", ev.Action))
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Run dispatches until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.register:
			h.mutex.Lock()
			h.clients[conn] = true
			h.mutex.Unlock()
			h.log.Debug("client connected", zap.Int("clients", h.ClientCount()))

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Debug("drop client", zap.Error(err))
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
