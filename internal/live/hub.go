package live

import (
	"fmt"
	"sync"

	"mesob/internal/logger"
	"mesob/internal/monitoring"
)

// Hub is the connection registry and broadcast router. It tracks which
// live connection is subscribed to which topics and fans events out to
// them. Delivery is best effort and at most once per connection; a
// reconnecting client re-fetches current state over HTTP instead of
// relying on replay.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	topics  map[string]map[*Client]bool

	monitor *monitoring.Monitor
	log     *logger.Logger
}

// NewHub creates an empty hub. It is constructed once at startup and
// passed by handle to everything that publishes.
func NewHub(mon *monitoring.Monitor, log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		topics:  make(map[string]map[*Client]bool),
		monitor: mon,
		log:     log,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.monitor.LiveConnections.Inc()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for topic, subscribers := range h.topics {
		if subscribers[c] {
			delete(subscribers, c)
			if len(subscribers) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	close(c.send)
	h.mu.Unlock()
	h.monitor.LiveConnections.Dec()
}

// Join subscribes the connection to the given topics. A connection may
// belong to several topics when its role carries several
// responsibilities.
func (h *Hub) Join(c *Client, topics ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	for _, topic := range topics {
		subscribers := h.topics[topic]
		if subscribers == nil {
			subscribers = make(map[*Client]bool)
			h.topics[topic] = subscribers
		}
		subscribers[c] = true
	}
}

// Topics returns the topics the connection currently belongs to.
func (h *Hub) Topics(c *Client) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []string
	for topic, subscribers := range h.topics {
		if subscribers[c] {
			out = append(out, topic)
		}
	}
	return out
}

// Publish delivers one event to the union of subscribers of the given
// topics, so a connection subscribed to several of them still receives
// the event once. Called synchronously after the store commit that
// produced the event, which is what keeps per-topic ordering.
func (h *Hub) Publish(topics []string, event string, payload interface{}) {
	data, err := encodeEnvelope(event, payload)
	if err != nil {
		h.log.Error("LIVE", err.Error())
		return
	}

	// Sends stay under the read lock so unregister can never close a
	// send channel mid-delivery.
	h.mu.RLock()
	defer h.mu.RUnlock()
	targets := make(map[*Client]bool)
	for _, topic := range topics {
		for c := range h.topics[topic] {
			targets[c] = true
		}
	}
	for c := range targets {
		select {
		case c.send <- data:
		default:
			h.monitor.EventsDropped.Inc()
			h.log.Warn("LIVE", fmt.Sprintf("client %s buffer full, dropping %s", c.id, event))
		}
	}
}

// trySend enqueues one frame for a single connection, dropping it when
// the buffer is full or the connection is already gone.
func (h *Hub) trySend(c *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
		h.monitor.EventsDropped.Inc()
	}
}
