// Package audit records who changed what. Events are published
// fire-and-forget: a broker outage must never fail the request that
// triggered the event.
package audit

import (
	"context"

	"github.com/clinika/clinika-backend/pkg/logger"
	"github.com/clinika/clinika-backend/pkg/messaging"
)

// Event types published to the audit exchange.
const (
	EventCreated = "record.created"
	EventUpdated = "record.updated"
	EventDeleted = "record.deleted"
	EventSignIn  = "user.signed_in"
	EventSignOut = "user.signed_out"
)

// Entry describes one audited change.
type Entry struct {
	Entity   string `json:"entity"`
	EntityID string `json:"entity_id,omitempty"`
	ActorID  string `json:"actor_id,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Recorder publishes audit entries.
type Recorder interface {
	Record(ctx context.Context, eventType string, entry Entry)
}

// Publisher records entries to RabbitMQ.
type Publisher struct {
	pub *messaging.Publisher
	log *logger.Logger
}

// NewPublisher declares the audit exchange and returns a recorder over it.
func NewPublisher(rmq *messaging.RabbitMQ, source string, log *logger.Logger) (*Publisher, error) {
	pub, err := messaging.NewPublisher(rmq, messaging.ExchangeAuditEvents, source, log)
	if err != nil {
		return nil, err
	}
	return &Publisher{pub: pub, log: log.WithComponent("audit")}, nil
}

// Record publishes an entry, logging on failure.
func (p *Publisher) Record(ctx context.Context, eventType string, entry Entry) {
	if err := p.pub.Publish(ctx, eventType, entry); err != nil {
		p.log.Warn().Err(err).
			Str("event_type", eventType).
			Str("entity", entry.Entity).
			Msg("failed to publish audit event")
	}
}

// Nop is used when no broker is configured.
type Nop struct{}

func (Nop) Record(context.Context, string, Entry) {}
