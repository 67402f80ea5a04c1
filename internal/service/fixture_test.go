package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hotel-service/internal/config"
	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/events"
	"github.com/spec-kit/hotel-service/internal/notify"
	"github.com/spec-kit/hotel-service/internal/observability"
	"github.com/spec-kit/hotel-service/internal/repository"
	"github.com/spec-kit/hotel-service/internal/repository/memory"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t           *testing.T
	ctx         context.Context
	store       *memory.Store
	repos       repository.Repositories
	dispatcher  events.Dispatcher
	assignments *AssignmentService
	orders      *OrderService
	tasks       *TaskService
	bookings    *BookingService
	published   *recordingPublisher
}

type published struct {
	Topic string
	Type  string
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, eventType string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{Topic: topic, Type: eventType})
	return p.err
}

func (p *recordingPublisher) topics(eventType string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, m := range p.msgs {
		if m.Type == eventType {
			out = append(out, m.Topic)
		}
	}
	return out
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	dispatcher := events.NewInMemoryDispatcher(nil)
	pub := &recordingPublisher{}
	NewNotificationService(dispatcher, pub, repos.Notifications, nil).RegisterHandlers()

	assignments := NewAssignmentService(config.AssignmentConfig{MaxCASRetries: 3}, AssignmentDependencies{
		Tx:      store,
		Metrics: observability.NewMetrics("test"),
	})
	orders := NewOrderService(OrderDependencies{Repos: repos, Tx: store, Assignments: assignments, Dispatcher: dispatcher})
	orders.now = func() time.Time { return fixedNow }
	tasks := NewTaskService(config.NotificationConfig{AdminEmails: []string{"gm@hotel.test"}}, TaskDependencies{
		Repos: repos, Tx: store, Assignments: assignments, Dispatcher: dispatcher,
	})
	tasks.now = func() time.Time { return fixedNow }
	bookings := NewBookingService(BookingDependencies{Repos: repos, Tx: store, HotelName: "Test Hotel"})
	bookings.now = func() time.Time { return fixedNow }

	return &fixture{
		t:           t,
		ctx:         context.Background(),
		store:       store,
		repos:       repos,
		dispatcher:  dispatcher,
		assignments: assignments,
		orders:      orders,
		tasks:       tasks,
		bookings:    bookings,
		published:   pub,
	}
}

func (f *fixture) staff(name string, role domain.StaffRole, status domain.StaffStatus) *domain.StaffMember {
	f.t.Helper()
	m := &domain.StaffMember{
		Name:         name,
		Email:        name + "@hotel.test",
		PasswordHash: "x",
		Role:         role,
		Status:       status,
	}
	require.NoError(f.t, f.repos.Staff.Create(f.ctx, m))
	return m
}

func (f *fixture) activeStaff(names ...string) []*domain.StaffMember {
	out := make([]*domain.StaffMember, 0, len(names))
	for _, n := range names {
		out = append(out, f.staff(n, domain.StaffRoleStaff, domain.StaffStatusActive))
	}
	return out
}

func (f *fixture) admin() *domain.StaffMember {
	return f.staff("admin", domain.StaffRoleAdmin, domain.StaffStatusActive)
}

func (f *fixture) room(number string) *domain.Room {
	f.t.Helper()
	r := &domain.Room{
		Number:        number,
		Type:          "double",
		PricePerNight: 120,
		Capacity:      2,
		Status:        domain.RoomStatusAvailable,
	}
	require.NoError(f.t, f.repos.Rooms.Create(f.ctx, r))
	return r
}

func (f *fixture) guest(name string) *domain.User {
	f.t.Helper()
	u := &domain.User{Name: name, Email: name + "@guest.test", PasswordHash: "x", Status: domain.UserStatusActive}
	require.NoError(f.t, f.repos.Users.Create(f.ctx, u))
	return u
}

// checkedIn creates a guest with a confirmed booking covering fixedNow.
func (f *fixture) checkedIn(name, roomNumber string) (*domain.User, *domain.Booking) {
	f.t.Helper()
	u := f.guest(name)
	r := f.room(roomNumber)
	b := &domain.Booking{
		UserID:   u.ID,
		RoomID:   r.ID,
		CheckIn:  fixedNow.Add(-24 * time.Hour),
		CheckOut: fixedNow.Add(48 * time.Hour),
		Guests:   1,
		Status:   domain.BookingStatusConfirmed,
		Total:    360,
	}
	require.NoError(f.t, f.repos.Bookings.Create(f.ctx, b))
	return u, b
}

func (f *fixture) menuItem(name string, price float64) *domain.MenuItem {
	f.t.Helper()
	item := &domain.MenuItem{Name: name, Price: price, Available: true}
	require.NoError(f.t, f.repos.Menu.Create(f.ctx, item))
	return item
}

func (f *fixture) pendingTasks(assignee *domain.StaffMember, room *domain.Room, n int) {
	f.t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(f.t, f.repos.Tasks.Create(f.ctx, &domain.Task{
			Kind:         domain.TaskKindHousekeeping,
			AssigneeID:   &assignee.ID,
			Status:       domain.TaskStatusPending,
			RoomID:       room.ID,
			ScheduledFor: fixedNow,
		}))
	}
}

func (f *fixture) notificationsTo(email string) []domain.Notification {
	var out []domain.Notification
	for _, n := range f.store.Notifications() {
		if n.Recipient == email {
			out = append(out, n)
		}
	}
	return out
}

type failingSender struct {
	err error
}

func (s failingSender) Send(context.Context, notify.Message) error {
	return s.err
}

func ptr[T any](v T) *T {
	return &v
}
