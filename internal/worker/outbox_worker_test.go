package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hotel-service/internal/config"
	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/notify"
	"github.com/spec-kit/hotel-service/internal/observability"
	"github.com/spec-kit/hotel-service/internal/repository"
	"github.com/spec-kit/hotel-service/internal/repository/memory"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

// brokenMarks fails the nth MarkSent call across all transactions.
type brokenMarks struct {
	store  *memory.Store
	failOn int
	calls  int
}

func (b *brokenMarks) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return b.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		repos.Notifications = &markCounter{NotificationRepository: repos.Notifications, owner: b}
		return fn(ctx, repos)
	})
}

type markCounter struct {
	repository.NotificationRepository
	owner *brokenMarks
}

func (m *markCounter) MarkSent(ctx context.Context, id string) error {
	m.owner.calls++
	if m.owner.calls == m.owner.failOn {
		return errors.New("connection reset")
	}
	return m.NotificationRepository.MarkSent(ctx, id)
}

// cancellingSender cancels the pass after its first delivery.
type cancellingSender struct {
	recordingSender
	cancel context.CancelFunc
}

func (s *cancellingSender) Send(ctx context.Context, msg notify.Message) error {
	err := s.recordingSender.Send(ctx, msg)
	s.cancel()
	return err
}

func newWorker(t *testing.T, store *memory.Store, sender notify.Sender, maxAttempts int) *OutboxWorker {
	t.Helper()
	w := NewOutboxWorker(store, sender, config.OutboxConfig{
		BatchSize:           10,
		MaxAttempts:         maxAttempts,
		InitialDelaySeconds: 30,
		MaxDelaySeconds:     300,
	}, observability.NewMetrics("test"), nil)
	w.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	return w
}

func enqueue(t *testing.T, store *memory.Store, to string) {
	t.Helper()
	require.NoError(t, store.Repositories().Notifications.Enqueue(context.Background(), &domain.Notification{
		Recipient: to,
		Subject:   "New delivery task",
		Body:      "Room 101",
	}))
}

func TestOutboxWorkerSends(t *testing.T) {
	store := memory.NewStore()
	enqueue(t, store, "a@hotel.test")
	enqueue(t, store, "b@hotel.test")
	sender := &recordingSender{}

	res, err := newWorker(t, store, sender, 3).RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Result{Sent: 2}, res)
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "a@hotel.test", sender.sent[0].To)
	for _, n := range store.Notifications() {
		assert.Equal(t, domain.NotificationStatusSent, n.Status)
		assert.Equal(t, 1, n.Attempts)
		assert.NotNil(t, n.SentAt)
	}
}

func TestOutboxWorkerRetriesThenFails(t *testing.T) {
	store := memory.NewStore()
	enqueue(t, store, "a@hotel.test")
	w := newWorker(t, store, &recordingSender{err: errors.New("relay down")}, 2)

	res, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Retried: 1}, res)

	n := store.Notifications()[0]
	assert.Equal(t, domain.NotificationStatusPending, n.Status)
	assert.Equal(t, 1, n.Attempts)
	require.NotNil(t, n.LastError)
	assert.Equal(t, "relay down", *n.LastError)
	require.NotNil(t, n.NextAttemptAt)
	assert.Equal(t, w.now().Add(30*time.Second), *n.NextAttemptAt)

	// not due yet
	res, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	later := w.now().Add(time.Minute)
	w.now = func() time.Time { return later }
	res, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Failed: 1}, res)

	n = store.Notifications()[0]
	assert.Equal(t, domain.NotificationStatusFailed, n.Status)
	assert.Equal(t, 2, n.Attempts)
	assert.Nil(t, n.NextAttemptAt)
}

func TestOutboxWorkerStartStopsOnCancel(t *testing.T) {
	store := memory.NewStore()
	w := newWorker(t, store, &recordingSender{}, 3)
	w.interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestOutboxWorkerDoesNotResendAfterMarkFailure(t *testing.T) {
	store := memory.NewStore()
	enqueue(t, store, "a@hotel.test")
	enqueue(t, store, "b@hotel.test")
	enqueue(t, store, "c@hotel.test")
	sender := &recordingSender{}
	w := newWorker(t, store, sender, 3)
	w.tx = &brokenMarks{store: store, failOn: 2}

	res, err := w.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, Result{Sent: 3}, res)

	res, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	perRecipient := map[string]int{}
	for _, m := range sender.sent {
		perRecipient[m.To]++
	}
	assert.Equal(t, map[string]int{"a@hotel.test": 1, "b@hotel.test": 1, "c@hotel.test": 1}, perRecipient)

	statuses := map[string]domain.NotificationStatus{}
	for _, n := range store.Notifications() {
		statuses[n.Recipient] = n.Status
	}
	assert.Equal(t, domain.NotificationStatusSent, statuses["a@hotel.test"])
	assert.Equal(t, domain.NotificationStatusPending, statuses["b@hotel.test"])
	assert.Equal(t, domain.NotificationStatusSent, statuses["c@hotel.test"])

	// the unrecorded row comes back once its lease runs out
	later := w.now().Add(6 * time.Minute)
	w.now = func() time.Time { return later }
	res, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Sent: 1}, res)
}

func TestOutboxWorkerStopsMidBatchOnCancel(t *testing.T) {
	store := memory.NewStore()
	enqueue(t, store, "a@hotel.test")
	enqueue(t, store, "b@hotel.test")
	ctx, cancel := context.WithCancel(context.Background())
	sender := &cancellingSender{cancel: cancel}
	w := newWorker(t, store, sender, 3)

	res, err := w.RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Result{Sent: 1}, res)
	require.Len(t, sender.sent, 1)

	statuses := map[string]domain.NotificationStatus{}
	for _, n := range store.Notifications() {
		statuses[n.Recipient] = n.Status
	}
	assert.Equal(t, domain.NotificationStatusSent, statuses["a@hotel.test"])
	assert.Equal(t, domain.NotificationStatusPending, statuses["b@hotel.test"])
}
