// Package memory is an in-process implementation of the repository
// interfaces. Transactions are serialized and roll back by restoring a
// snapshot, which is enough to observe all-or-nothing writes in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/repository"
)

type data struct {
	users         map[string]domain.User
	staff         map[string]domain.StaffMember
	rooms         map[string]domain.Room
	roomImages    map[string]domain.RoomImage
	bookings      map[string]domain.Booking
	menu          map[string]domain.MenuItem
	orders        map[string]domain.Order
	tasks         map[string]domain.Task
	history       []domain.TaskHistory
	rotation      map[string]domain.RotationPointer
	notifications map[string]domain.Notification
	chat          []domain.ChatMessage
	resets        map[string]repository.PasswordResetToken
}

func newData() data {
	return data{
		users:         map[string]domain.User{},
		staff:         map[string]domain.StaffMember{},
		rooms:         map[string]domain.Room{},
		roomImages:    map[string]domain.RoomImage{},
		bookings:      map[string]domain.Booking{},
		menu:          map[string]domain.MenuItem{},
		orders:        map[string]domain.Order{},
		tasks:         map[string]domain.Task{},
		rotation:      map[string]domain.RotationPointer{},
		notifications: map[string]domain.Notification{},
		resets:        map[string]repository.PasswordResetToken{},
	}
}

func (d data) clone() data {
	out := newData()
	for k, v := range d.users {
		out.users[k] = v
	}
	for k, v := range d.staff {
		out.staff[k] = v
	}
	for k, v := range d.rooms {
		out.rooms[k] = v
	}
	for k, v := range d.roomImages {
		out.roomImages[k] = v
	}
	for k, v := range d.bookings {
		out.bookings[k] = v
	}
	for k, v := range d.menu {
		out.menu[k] = v
	}
	for k, v := range d.orders {
		out.orders[k] = v
	}
	for k, v := range d.tasks {
		out.tasks[k] = v
	}
	out.history = append([]domain.TaskHistory(nil), d.history...)
	for k, v := range d.rotation {
		out.rotation[k] = v
	}
	for k, v := range d.notifications {
		out.notifications[k] = v
	}
	out.chat = append([]domain.ChatMessage(nil), d.chat...)
	for k, v := range d.resets {
		out.resets[k] = v
	}
	return out
}

// Store holds every collection behind one mutex.
type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	d     data
	clock time.Time

	// BeforeRotationSwap, when set, runs inside CompareAndSwap before the
	// comparison. Tests use it to simulate a concurrent writer.
	BeforeRotationSwap func(s *Store, name string)

	// Counters for asserting which queries a workflow issued.
	CountPendingCalls  int
	ListAssignableCall int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		d:     newData(),
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Repositories returns repositories bound directly to the store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:          &userRepo{s},
		Staff:          &staffRepo{s},
		Rooms:          &roomRepo{s},
		RoomImages:     &roomImageRepo{s},
		Bookings:       &bookingRepo{s},
		Menu:           &menuRepo{s},
		Orders:         &orderRepo{s},
		Tasks:          &taskRepo{s},
		TaskHistory:    &historyRepo{s},
		Rotation:       &rotationRepo{s},
		Notifications:  &notificationRepo{s},
		Chat:           &chatRepo{s},
		PasswordResets: &resetRepo{s},
	}
}

// WithinTx implements repository.TxRunner.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.d.clone()
	s.mu.Unlock()

	if err := fn(ctx, s.Repositories()); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// SetRotation overwrites a rotation cursor.
func (s *Store) SetRotation(name, staffID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRotationLocked(name, staffID)
}

func (s *Store) setRotationLocked(name, staffID string) {
	s.d.rotation[name] = domain.RotationPointer{Name: name, StaffID: staffID, UpdatedAt: s.tick()}
}

// Rotation returns the cursor value, or "" when absent.
func (s *Store) Rotation(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.rotation[name].StaffID
}

// Tasks returns all tasks ordered by creation.
func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, 0, len(s.d.tasks))
	for _, t := range s.d.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Orders returns all orders ordered by creation.
func (s *Store) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Order, 0, len(s.d.orders))
	for _, o := range s.d.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Notifications returns all outbox rows ordered by creation.
func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, 0, len(s.d.notifications))
	for _, n := range s.d.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// tick advances the fake clock so creation order is strict. Caller holds mu.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func newID() string {
	return uuid.NewString()
}
var _ repository.TxRunner = (*Store)(nil)
