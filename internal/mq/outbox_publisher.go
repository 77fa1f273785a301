package mq

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailtriage/pkg/outbox"
)

// EventPublisher is the narrow interface services use to emit domain
// events. Satisfied by OutboxPublisher in production.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// OutboxPublisher records events in the outbox table instead of
// publishing straight to the broker. The outbox dispatcher forwards
// them, so a broker outage never loses an event.
type OutboxPublisher struct {
	db   *pgxpool.Pool
	repo *outbox.Repository
}

func NewOutboxPublisher(db *pgxpool.Pool, repo *outbox.Repository) *OutboxPublisher {
	return &OutboxPublisher{db: db, repo: repo}
}

func (p *OutboxPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		return err
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// aggregate type 取事件前缀，例如 email.ingested -> email
	aggregateType := eventType
	if i := strings.Index(eventType, "."); i > 0 {
		aggregateType = eventType[:i]
	}

	if err := outbox.InsertEventInTx(ctx, tx, p.repo, aggregateType, nil, eventType, evt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
