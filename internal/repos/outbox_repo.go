package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// OutboxEvent is a lending event waiting to be published.
type OutboxEvent struct {
	ID            string     `db:"id"`
	AggregateType string     `db:"aggregate_type"`
	AggregateID   string     `db:"aggregate_id"`
	EventType     string     `db:"event_type"`
	Payload       string     `db:"payload"`
	CreatedAt     time.Time  `db:"created_at"`
	PublishedAt   *time.Time `db:"published_at"`
}

type OutboxRepo struct{ db *sqlx.DB }

func NewOutboxRepo(db *sqlx.DB) *OutboxRepo { return &OutboxRepo{db: db} }

// Append stores an event inside the caller's transaction.
func (r *OutboxRepo) Append(ctx context.Context, q sqlx.ExtContext, aggType, aggID, eventType string, payload []byte) error {
	_, err := q.ExecContext(ctx, q.Rebind(`
		INSERT INTO outbox_events(id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), uuid.NewString(), aggType, aggID, eventType, string(payload), time.Now().UTC())
	return err
}

// Pending returns unpublished events oldest first.
func (r *OutboxRepo) Pending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	out := []OutboxEvent{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at, published_at
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT ?
	`), limit)
	return out, err
}

func (r *OutboxRepo) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE outbox_events SET published_at = ? WHERE id IN (?)`, time.Now().UTC(), ids)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}
