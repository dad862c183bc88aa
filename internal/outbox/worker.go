package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	applog "libris/internal/log"
	"libris/internal/repos"
)

const batchSize = 100

// Worker relays committed lending events from outbox_events to a Publisher.
// Delivery is at-least-once: an event is marked only after Publish succeeds.
type Worker struct {
	repo      *repos.OutboxRepo
	publisher Publisher
	interval  time.Duration
}

func NewWorker(repo *repos.OutboxRepo, publisher Publisher, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Worker{repo: repo, publisher: publisher, interval: interval}
}

// Run polls until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	applog.L().Info("outbox.worker.started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			applog.L().Info("outbox.worker.stopped")
			return
		case <-ticker.C:
			if _, err := w.DispatchOnce(ctx); err != nil && ctx.Err() == nil {
				applog.L().Error("outbox.dispatch", zap.Error(err))
			}
		}
	}
}

// DispatchOnce publishes one batch of pending events and returns how many were delivered.
// It stops at the first publish failure so events leave in creation order.
func (w *Worker) DispatchOnce(ctx context.Context) (int, error) {
	events, err := w.repo.Pending(ctx, batchSize)
	if err != nil {
		return 0, err
	}
	var sent []string
	var pubErr error
	for _, ev := range events {
		if err := w.publisher.Publish(ctx, ev); err != nil {
			applog.L().Error("outbox.publish",
				zap.String("event_id", ev.ID),
				zap.String("event_type", ev.EventType),
				zap.Error(err))
			pubErr = err
			break
		}
		sent = append(sent, ev.ID)
	}
	if err := w.repo.MarkPublished(ctx, sent); err != nil {
		return 0, err
	}
	return len(sent), pubErr
}
