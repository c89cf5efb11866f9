// Package ws fans question activity (likes, new comments) out to streaming
// subscribers over websockets or SSE.
package ws

import "sync"

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Hub manages stream subscriptions keyed by question ID.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]map[Subscriber]struct{}
	register  chan subscription
	unreg     chan subscription
	broadcast chan message
}

// message couples payload with the question it concerns.
type message struct {
	questionID string
	payload    []byte
}

// subscription defines register/unregister requests.
type subscription struct {
	questionID string
	client     Subscriber
}

// NewHub creates an initialized Hub.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[string]map[Subscriber]struct{}),
		register:  make(chan subscription),
		unreg:     make(chan subscription),
		broadcast: make(chan message),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.register:
			if _, ok := h.clients[sub.questionID]; !ok {
				h.clients[sub.questionID] = make(map[Subscriber]struct{})
			}
			h.clients[sub.questionID][sub.client] = struct{}{}
		case sub := <-h.unreg:
			if clients, ok := h.clients[sub.questionID]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(h.clients, sub.questionID)
				}
			}
		case msg := <-h.broadcast:
			if clients, ok := h.clients[msg.questionID]; ok {
				for c := range clients {
					if err := c.Send(msg.payload); err != nil {
						c.Close()
						delete(clients, c)
					}
				}
				if len(clients) == 0 {
					delete(h.clients, msg.questionID)
				}
			}
		}
	}
}

// Register adds a client to a question's stream.
func (h *Hub) Register(questionID string, client Subscriber) {
	h.register <- subscription{questionID: questionID, client: client}
}

// Unregister removes a client.
func (h *Hub) Unregister(questionID string, client Subscriber) {
	h.unreg <- subscription{questionID: questionID, client: client}
}

// Broadcast delivers a payload to every subscriber of a question. Delivery is
// best effort; a failed write evicts the subscriber.
func (h *Hub) Broadcast(questionID string, payload []byte) {
	h.broadcast <- message{questionID: questionID, payload: payload}
}
