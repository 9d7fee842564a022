package messaging

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// MutationEvent describes a write the remote API confirmed.
type MutationEvent struct {
	Type       string    `json:"type"`
	ProductID  int       `json:"product_id"`
	Fields     any       `json:"fields,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event any) error
	Close() error
}

type logPublisher struct {
	log *logrus.Logger
}

// NewLogPublisher is used when no broker is configured; events only reach the log.
func NewLogPublisher(logger *logrus.Logger) Publisher {
	return &logPublisher{log: logger}
}

func (p *logPublisher) PublishEvent(_ context.Context, key string, event any) error {
	p.log.WithFields(logrus.Fields{"key": key, "event": event}).Info("Messaging: Event published")
	return nil
}

func (p *logPublisher) Close() error { return nil }
