package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	contractsv1 "sitecompliance/contracts/gen/events/v1"

	"github.com/nats-io/nats.go"
)

type NATSConfig struct {
	URL            string
	Name           string
	ReconnectWait  time.Duration
	MaxReconnects  int
	ConnectTimeout time.Duration
}

// NATS publishes relayed envelopes as JSON. The event id travels in the
// Nats-Msg-Id header so JetStream streams can drop redeliveries.
type NATS struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewNATS(cfg NATSConfig, logger *slog.Logger) (*NATS, error) {
	if cfg.Name == "" {
		cfg.Name = "compliance-engine"
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = -1
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if logger != nil && err != nil {
				logger.Warn("nats disconnected",
					"event", "nats_disconnected",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATS{conn: conn, logger: logger}, nil
}

// Publish returns only after the server has the message, so the relay can
// mark the outbox row sent.
func (n *NATS) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	msg := nats.NewMsg(topic)
	msg.Data = payload
	msg.Header.Set(nats.MsgIdHdr, event.EventID)
	msg.Header.Set("Event-Type", event.EventType)
	msg.Header.Set("Partition-Key", event.PartitionKey)
	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", topic, err)
	}
	return nil
}

func (n *NATS) Close() error {
	if n == nil || n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
