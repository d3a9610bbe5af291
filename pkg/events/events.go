package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// SubjectPrefix namespaces every subject published by this service.
const SubjectPrefix = "gatepass."

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

// Subject maps an event type such as "pass.requested" to its NATS subject.
func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

type NATSEventBus struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewNATSEventBus(url string, logger *zap.Logger) (*NATSEventBus, error) {
	log := logger.Named("events")

	conn, err := nats.Connect(url,
		nats.Name("gatepass-backend"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn, logger: log}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	n.logger.Debug("Publishing event", zap.String("subject", subject), zap.Int("bytes", len(payload)))

	return n.conn.Publish(subject, payload)
}

// Close flushes pending messages before closing the connection.
func (n *NATSEventBus) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}
