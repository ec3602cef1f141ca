// internal/socket/hub.go
package socket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	PongWait   = 60 * time.Second
	pingPeriod = (PongWait * 9) / 10
	sendBuffer = 16
)

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
}

// Client is one subscriber to a topic. All writes go through its pump goroutine.
type Client struct {
	conn  Conn
	topic string
	send  chan []byte
	done  chan struct{}
}

func (c *Client) Topic() string { return c.topic }

func (c *Client) writePump(log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug("websocket write failed", zap.String("topic", c.topic), zap.Error(err))
				c.drain()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.drain()
				return
			}
		}
	}
}

// drain discards queued messages until the hub closes send.
func (c *Client) drain() {
	for range c.send {
	}
}

// Hub fans messages out to the subscribers of each topic (a delivery order id).
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]struct{}
	log    *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		topics: make(map[string]map[*Client]struct{}),
		log:    log,
	}
}

// Register subscribes conn to topic and starts its writer.
func (h *Hub) Register(topic string, conn Conn) *Client {
	c := &Client{
		conn:  conn,
		topic: topic,
		send:  make(chan []byte, sendBuffer),
		done:  make(chan struct{}),
	}
	go c.writePump(h.log)

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Client]struct{})
		h.topics[topic] = subs
	}
	subs[c] = struct{}{}
	h.log.Info("websocket client registered", zap.String("topic", topic), zap.Int("subscribers", len(subs)))
	return c
}

// Unregister removes c and waits for its writer to stop. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	subs, ok := h.topics[c.topic]
	_, present := subs[c]
	if ok && present {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, c.topic)
		}
		close(c.send)
	}
	h.mu.Unlock()

	<-c.done
	if present {
		h.log.Info("websocket client unregistered", zap.String("topic", c.topic))
	}
}

// Broadcast queues message for every subscriber of topic and returns how many accepted it.
// Subscribers with a full buffer miss the message.
func (h *Hub) Broadcast(topic string, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for c := range h.topics[topic] {
		select {
		case c.send <- message:
			sent++
		default:
			h.log.Warn("websocket client too slow, dropping message", zap.String("topic", topic))
		}
	}
	return sent
}

func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Close unregisters every client.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*Client
	for _, subs := range h.topics {
		for c := range subs {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.Unregister(c)
	}
}
