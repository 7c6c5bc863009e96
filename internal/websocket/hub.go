package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageHandler receives every message a client sends. It runs on the
// client's read goroutine.
type MessageHandler func(client *Client, msg *Message)

// Hub tracks the pages connected to the edge and fans out worker events to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	onMessage  MessageHandler
	onConnect  func(*Client)
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// SetMessageHandler must be called before Run.
func (h *Hub) SetMessageHandler(fn MessageHandler) {
	h.onMessage = fn
}

// SetConnectHandler must be called before Run. fn runs for every newly
// registered client.
func (h *Hub) SetConnectHandler(fn func(*Client)) {
	h.onConnect = fn
}

func (h *Hub) Run() {
	defer close(h.done) // Signal that Run() has exited

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()
			if h.onConnect != nil {
				h.onConnect(client)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				client.trySend(data)
			}
			h.mu.RUnlock()
		}
	}
}

// Stop gracefully shuts down the hub and closes every client.
// It blocks until Run has returned.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	close(h.stop)
	<-h.done // Wait for Run() to finish
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister safely unregisters a client, handling the case where the hub may be stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		// Hub already stopped and closed every client
	}
}

// Broadcast queues msg for every connected client. Messages sent while no
// client is connected are dropped.
func (h *Hub) Broadcast(msg *Message) {
	if h.ClientCount() == 0 {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal broadcast", "component", "websocket.Hub", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// Notify broadcasts an event with the given payload.
func (h *Hub) Notify(event string, payload interface{}) {
	msg, err := NewMessage(MessageType(event), payload)
	if err != nil {
		slog.Error("failed to build message", "component", "websocket.Hub", "event", event, "error", err)
		return
	}
	h.Broadcast(msg)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) dispatch(client *Client, msg *Message) {
	if h.onMessage == nil {
		return
	}
	h.onMessage(client, msg)
}
