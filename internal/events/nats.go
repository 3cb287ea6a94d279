package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// conn is the slice of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	Drain() error
	Close()
}

// NATSPublisher publishes domain events as JSON on NATS subjects.
type NATSPublisher struct {
	nc     conn
	logger *zap.Logger
}

func Connect(url string, logger *zap.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("ghostprotocol"),
		nats.Timeout(connectTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	logger.Info("connected to nats", zap.String("url", url))
	return &NATSPublisher{nc: nc, logger: logger}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", subject, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Event is one message received by Tail.
type Event struct {
	Subject string          `json:"subject" yaml:"subject"`
	Payload json.RawMessage `json:"payload" yaml:"-"`
}

// Tail delivers every event matching subject to fn until ctx is done.
func (p *NATSPublisher) Tail(ctx context.Context, subject string, fn func(Event)) error {
	sub, err := p.nc.Subscribe(subject, func(m *nats.Msg) {
		fn(Event{Subject: m.Subject, Payload: json.RawMessage(m.Data)})
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}

// Close flushes pending publishes before closing the connection.
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("nats drain failed", zap.Error(err))
		p.nc.Close()
	}
}
