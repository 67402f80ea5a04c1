package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/hotel-service/internal/config"
	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/notify"
	"github.com/spec-kit/hotel-service/internal/observability"
	"github.com/spec-kit/hotel-service/internal/repository"
)

// OutboxWorker delivers pending notification rows.
type OutboxWorker struct {
	tx        repository.TxRunner
	sender    notify.Sender
	policy    RetryPolicy
	batchSize int
	interval  time.Duration
	lease     time.Duration
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewOutboxWorker builds a worker from the outbox configuration.
func NewOutboxWorker(tx repository.TxRunner, sender notify.Sender, cfg config.OutboxConfig, metrics *observability.Metrics, logger *zap.Logger) *OutboxWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 50
	}
	return &OutboxWorker{
		tx:     tx,
		sender: sender,
		policy: RetryPolicy{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  time.Duration(cfg.InitialDelaySeconds) * time.Second,
			MaxDelay:      time.Duration(cfg.MaxDelaySeconds) * time.Second,
			BackoffFactor: 2,
		},
		batchSize: batch,
		interval:  cfg.PollInterval(),
		lease:     cfg.Lease(),
		metrics:   metrics,
		logger:    logger.Named("outbox"),
		now:       time.Now,
	}
}

// Result summarizes one delivery pass.
type Result struct {
	Sent    int
	Retried int
	Failed  int
}

const markTimeout = 5 * time.Second

// RunOnce leases due rows in a short transaction, then sends each one and
// records its outcome in a transaction of its own. Send failures are recorded
// on the row and never returned; storage errors are, after the rest of the
// batch has been attempted. A row whose outcome could not be recorded stays
// leased and is retried once the lease expires.
func (w *OutboxWorker) RunOnce(ctx context.Context) (Result, error) {
	var (
		res Result
		due []domain.Notification
	)
	now := w.now()
	err := w.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		due, err = repos.Notifications.ClaimDue(ctx, now, now.Add(w.lease), w.batchSize)
		return err
	})
	if err != nil {
		return res, err
	}

	var errs []error
	for _, n := range due {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := w.deliver(ctx, n, &res); err != nil {
			w.logger.Error("notification outcome not recorded",
				zap.String("notification_id", n.ID),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return res, errors.Join(errs...)
}

func (w *OutboxWorker) deliver(ctx context.Context, n domain.Notification, res *Result) error {
	sendErr := w.sender.Send(ctx, notify.Message{To: n.Recipient, Subject: n.Subject, Body: n.Body})
	if sendErr == nil {
		res.Sent++
		w.metrics.RecordNotification("sent")
		return w.mark(ctx, func(ctx context.Context, store repository.NotificationRepository) error {
			return store.MarkSent(ctx, n.ID)
		})
	}

	if w.policy.Exhausted(n.Attempts) {
		res.Failed++
		w.metrics.RecordNotification("failed")
		w.logger.Error("notification failed permanently",
			zap.String("notification_id", n.ID),
			zap.String("recipient", n.Recipient),
			zap.Int("attempts", n.Attempts+1),
			zap.Error(sendErr),
		)
		return w.mark(ctx, func(ctx context.Context, store repository.NotificationRepository) error {
			return store.MarkFailed(ctx, n.ID, sendErr.Error())
		})
	}

	delay := w.policy.NextDelay(n.Attempts + 1)
	res.Retried++
	w.metrics.RecordNotification("retry")
	w.logger.Warn("notification delivery failed; will retry",
		zap.String("notification_id", n.ID),
		zap.Int("attempts", n.Attempts+1),
		zap.Duration("retry_in", delay),
		zap.Error(sendErr),
	)
	return w.mark(ctx, func(ctx context.Context, store repository.NotificationRepository) error {
		return store.MarkRetry(ctx, n.ID, sendErr.Error(), w.now().Add(delay))
	})
}

// mark records an outcome even when ctx was cancelled after the send.
func (w *OutboxWorker) mark(ctx context.Context, fn func(context.Context, repository.NotificationRepository) error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
	defer cancel()
	return w.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return fn(ctx, repos.Notifications)
	})
}

// Start polls until ctx is cancelled.
func (w *OutboxWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.logger.Info("outbox worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox worker stopped")
			return
		case <-ticker.C:
			res, err := w.RunOnce(ctx)
			if err != nil {
				w.logger.Error("outbox pass failed", zap.Error(err))
				continue
			}
			if res.Sent+res.Retried+res.Failed > 0 {
				w.logger.Debug("outbox pass",
					zap.Int("sent", res.Sent),
					zap.Int("retried", res.Retried),
					zap.Int("failed", res.Failed),
				)
			}
		}
	}
}
