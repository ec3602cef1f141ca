// Package events publishes delivery updates on NATS and relays them to websocket subscribers.
package events

import (
	"encoding/json"
	"fmt"
	"strings"

	"go-quickstart/config"
	"go-quickstart/internal/models"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const DeliverySubjectPrefix = "deliveries."

// DeliverySubject maps an order id to its subject, escaping NATS token separators and wildcards.
func DeliverySubject(orderID string) string {
	r := strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")
	return DeliverySubjectPrefix + r.Replace(orderID)
}

// Bus is a NATS connection. A nil *Bus is valid and publishes nothing.
type Bus struct {
	nc  *nats.Conn
	log *zap.Logger
}

// Connect dials cfg.URL. An empty URL disables the bus and returns nil.
func Connect(cfg config.NATSConfig, log *zap.Logger) (*Bus, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name("go-quickstart"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Bus{nc: nc, log: log}, nil
}

func (b *Bus) Enabled() bool { return b != nil && b.nc != nil }

func (b *Bus) Publish(subject string, v interface{}) error {
	if !b.Enabled() {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return b.nc.Publish(subject, data)
}

// Subscribe registers handler for subject and returns a func that removes it.
func (b *Bus) Subscribe(subject string, handler func(subject string, data []byte)) (func(), error) {
	if !b.Enabled() {
		return func() {}, nil
	}
	sub, err := b.nc.Subscribe(subject, func(m *nats.Msg) {
		handler(m.Subject, m.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Close flushes pending messages and closes the connection.
func (b *Bus) Close() {
	if !b.Enabled() {
		return
	}
	if err := b.nc.Drain(); err != nil {
		b.nc.Close()
	}
}

// Broadcaster is satisfied by *socket.Hub.
type Broadcaster interface {
	Broadcast(topic string, message []byte) int
}

// DeliveryNotifier pushes delivery changes to live trackers. With a bus the update goes
// through NATS so every instance's subscribers see it; otherwise it goes straight to the hub.
type DeliveryNotifier struct {
	bus *Bus
	hub Broadcaster
	log *zap.Logger
}

func NewDeliveryNotifier(bus *Bus, hub Broadcaster, log *zap.Logger) *DeliveryNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeliveryNotifier{bus: bus, hub: hub, log: log}
}

func (n *DeliveryNotifier) NotifyDelivery(d *models.Delivery) error {
	if n.bus.Enabled() {
		return n.bus.Publish(DeliverySubject(d.OrderID), d)
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode delivery: %w", err)
	}
	n.hub.Broadcast(d.OrderID, data)
	return nil
}

// Relay forwards bus delivery events to the local hub. It is a no-op without a bus.
func (n *DeliveryNotifier) Relay() (func(), error) {
	return n.bus.Subscribe(DeliverySubjectPrefix+"*", func(subject string, data []byte) {
		var d struct {
			OrderID string `json:"orderId"`
		}
		if err := json.Unmarshal(data, &d); err != nil || d.OrderID == "" {
			n.log.Warn("dropping malformed delivery event", zap.String("subject", subject))
			return
		}
		n.hub.Broadcast(d.OrderID, data)
	})
}
