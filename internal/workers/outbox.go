// Package workers drains the transactional outbox into post-solve handlers.
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jeopardy-ctf/scoring-api/internal/config"
	"github.com/jeopardy-ctf/scoring-api/internal/domain"
	"github.com/jeopardy-ctf/scoring-api/internal/metrics"
)

const (
	dlqBatchSize = 50
	// shutdownWriteTimeout bounds the bookkeeping writes made after ctx is cancelled.
	shutdownWriteTimeout = 5 * time.Second
)

type OutboxStore interface {
	Claim(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	Release(ctx context.Context, events []domain.OutboxEvent) error
	DeadLetter(ctx context.Context, event domain.OutboxEvent, handler, msg string) error
	PendingDeadLetters(ctx context.Context, maxAttempts, limit int) ([]domain.DeadLetter, error)
	Resolve(ctx context.Context, id int64, at time.Time) error
	RetryFailed(ctx context.Context, id int64, msg string, at time.Time) error
}

// Handler reacts to one outbox event. Handlers must tolerate redelivery.
type Handler interface {
	Name() string
	Handle(ctx context.Context, event domain.OutboxEvent) error
}

type OutboxWorker struct {
	store            OutboxStore
	handlers         map[string][]Handler
	pollInterval     time.Duration
	batchSize        int
	dlqRetryInterval time.Duration
	dlqMaxAttempts   int
}

func NewOutboxWorker(store OutboxStore, conf *config.WorkersConfig) *OutboxWorker {
	return &OutboxWorker{
		store:            store,
		handlers:         map[string][]Handler{},
		pollInterval:     conf.PollInterval,
		batchSize:        conf.BatchSize,
		dlqRetryInterval: conf.DLQRetryInterval,
		dlqMaxAttempts:   conf.DLQMaxAttempts,
	}
}

func (w *OutboxWorker) Register(eventType string, h Handler) {
	w.handlers[eventType] = append(w.handlers[eventType], h)
}

func (w *OutboxWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ProcessOnce(ctx); err != nil {
				zap.L().Error("outbox poll failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce claims one batch and dispatches it. Claimed rows are already marked
// processed, so a failing handler is recorded in the DLQ instead of being retried here.
// Events not yet dispatched when ctx is cancelled go back to the pending set.
func (w *OutboxWorker) ProcessOnce(ctx context.Context) (int, error) {
	events, err := w.store.Claim(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("w.store.Claim -> %w", err)
	}

	for i, e := range events {
		if ctx.Err() != nil {
			w.release(ctx, events[i:])
			return i, nil
		}

		handlers := w.handlers[e.Type]
		if len(handlers) == 0 {
			zap.L().Warn("no handler for outbox event", zap.String("type", e.Type), zap.Int64("outbox_id", e.ID))
			continue
		}

		failed := false
		for _, h := range handlers {
			if err := h.Handle(ctx, e); err != nil {
				failed = true
				w.deadLetter(ctx, e, h.Name(), err)
			}
		}

		if failed {
			metrics.FailedEvents.WithLabelValues(e.Type).Inc()
		} else {
			metrics.ProcessedEvents.WithLabelValues(e.Type).Inc()
		}
	}

	return len(events), nil
}

func (w *OutboxWorker) release(ctx context.Context, events []domain.OutboxEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownWriteTimeout)
	defer cancel()

	if err := w.store.Release(ctx, events); err != nil {
		cause := fmt.Errorf("w.store.Release -> %w", err)
		for _, e := range events {
			for _, h := range w.handlers[e.Type] {
				w.deadLetter(ctx, e, h.Name(), cause)
			}
		}
		return
	}
	zap.L().Info("outbox events released on shutdown", zap.Int("count", len(events)))
}

// deadLetter writes on a context detached from ctx so a shutdown cancel does not drop the row.
func (w *OutboxWorker) deadLetter(ctx context.Context, e domain.OutboxEvent, handler string, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownWriteTimeout)
	defer cancel()

	metrics.DLQEvents.Inc()
	zap.L().Error("outbox handler failed, moving to DLQ",
		zap.Int64("outbox_id", e.ID),
		zap.String("type", e.Type),
		zap.String("handler", handler),
		zap.Error(cause),
	)

	if err := w.store.DeadLetter(ctx, e, handler, cause.Error()); err != nil {
		zap.L().Error("failed to insert into DLQ", zap.Int64("outbox_id", e.ID), zap.Error(err))
	}
}

func (w *OutboxWorker) RetryDLQ(ctx context.Context) {
	ticker := time.NewTicker(w.dlqRetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.RetryOnce(ctx); err != nil {
				zap.L().Error("DLQ retry failed", zap.Error(err))
			}
		}
	}
}

// RetryOnce re-dispatches unresolved dead letters to the handler that failed them.
func (w *OutboxWorker) RetryOnce(ctx context.Context) error {
	letters, err := w.store.PendingDeadLetters(ctx, w.dlqMaxAttempts, dlqBatchSize)
	if err != nil {
		return fmt.Errorf("w.store.PendingDeadLetters -> %w", err)
	}

	for _, d := range letters {
		h := w.handler(d.Type, d.Handler)
		if h == nil {
			zap.L().Warn("no handler for dead letter", zap.Int64("dlq_id", d.ID), zap.String("handler", d.Handler))
			continue
		}

		e := domain.OutboxEvent{
			ID:        d.OutboxID,
			Type:      d.Type,
			EntityID:  d.EntityID,
			Payload:   json.RawMessage(d.Payload),
			CreatedAt: d.CreatedAt,
		}

		now := time.Now()
		if err := h.Handle(ctx, e); err != nil {
			if err := w.store.RetryFailed(ctx, d.ID, err.Error(), now); err != nil {
				zap.L().Error("failed to record DLQ retry", zap.Int64("dlq_id", d.ID), zap.Error(err))
			}
			if d.Attempts+1 >= w.dlqMaxAttempts {
				zap.L().Error("DLQ entry exhausted its retries",
					zap.Int64("dlq_id", d.ID),
					zap.String("handler", d.Handler),
					zap.Int("attempts", d.Attempts+1),
				)
			}
			continue
		}

		if err := w.store.Resolve(ctx, d.ID, now); err != nil {
			zap.L().Error("failed to resolve DLQ entry", zap.Int64("dlq_id", d.ID), zap.Error(err))
			continue
		}
		metrics.ProcessedEvents.WithLabelValues(d.Type).Inc()
		zap.L().Info("DLQ entry resolved", zap.Int64("dlq_id", d.ID), zap.String("handler", d.Handler))
	}

	return nil
}

func (w *OutboxWorker) handler(eventType, name string) Handler {
	for _, h := range w.handlers[eventType] {
		if h.Name() == name {
			return h
		}
	}
	return nil
}
