package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/repository"
)

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 50
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// users

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range r.s.d.users {
		if existing.Email == u.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	u.ID = newID()
	u.CreatedAt = r.s.tick()
	u.UpdatedAt = u.CreatedAt
	r.s.d.users[u.ID] = *u
	return nil
}

func (r *userRepo) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.users[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	u.UpdatedAt = r.s.tick()
	r.s.d.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.d.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// staff

type staffRepo struct{ s *Store }

func (r *staffRepo) Create(_ context.Context, m *domain.StaffMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	for _, existing := range r.s.d.staff {
		if existing.Email == m.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "staff_members_email_key"}
		}
	}
	if m.ID == "" {
		m.ID = newID()
	}
	m.CreatedAt = r.s.tick()
	m.UpdatedAt = m.CreatedAt
	r.s.d.staff[m.ID] = *m
	return nil
}

func (r *staffRepo) Update(_ context.Context, m *domain.StaffMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.staff[m.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.UpdatedAt = r.s.tick()
	r.s.d.staff[m.ID] = *m
	return nil
}

func (r *staffRepo) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.d.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &m, nil
}

func (r *staffRepo) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, m := range r.s.d.staff {
		if m.Email == email {
			return &m, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *staffRepo) List(_ context.Context, f repository.StaffFilter) ([]domain.StaffMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.StaffMember
	for _, m := range r.sorted() {
		if f.Role != nil && m.Role != *f.Role {
			continue
		}
		if f.Status != nil && m.Status != *f.Status {
			continue
		}
		out = append(out, m)
	}
	return page(out, f.Limit, f.Offset), nil
}

func (r *staffRepo) ListAssignable(_ context.Context) ([]domain.StaffMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ListAssignableCall++
	var out []domain.StaffMember
	for _, m := range r.sorted() {
		if m.Assignable() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *staffRepo) sorted() []domain.StaffMember {
	out := make([]domain.StaffMember, 0, len(r.s.d.staff))
	for _, m := range r.s.d.staff {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// rooms

type roomRepo struct{ s *Store }

func (r *roomRepo) Create(_ context.Context, room *domain.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.d.rooms {
		if existing.Number == room.Number {
			return &pgconn.PgError{Code: "23505", ConstraintName: "rooms_number_key"}
		}
	}
	room.ID = newID()
	room.CreatedAt = r.s.tick()
	room.UpdatedAt = room.CreatedAt
	r.s.d.rooms[room.ID] = *room
	return nil
}

func (r *roomRepo) Update(_ context.Context, room *domain.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.rooms[room.ID]; !ok {
		return pgx.ErrNoRows
	}
	room.UpdatedAt = r.s.tick()
	stored := *room
	stored.Images = nil
	r.s.d.rooms[room.ID] = stored
	return nil
}

func (r *roomRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.rooms[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.d.rooms, id)
	for imgID, img := range r.s.d.roomImages {
		if img.RoomID == id {
			delete(r.s.d.roomImages, imgID)
		}
	}
	return nil
}

func (r *roomRepo) GetByID(_ context.Context, id string) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.d.rooms[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &room, nil
}

func (r *roomRepo) List(_ context.Context, f repository.RoomFilter) ([]domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Room
	for _, room := range r.s.d.rooms {
		if f.Type != nil && room.Type != *f.Type {
			continue
		}
		if f.Status != nil && room.Status != *f.Status {
			continue
		}
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return page(out, f.Limit, f.Offset), nil
}

func (r *roomRepo) MarkCleaned(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.d.rooms[id]
	if !ok {
		return pgx.ErrNoRows
	}
	room.LastCleanedAt = &at
	r.s.d.rooms[id] = room
	return nil
}

// room images

type roomImageRepo struct{ s *Store }

func (r *roomImageRepo) Create(_ context.Context, img *domain.RoomImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	img.ID = newID()
	img.CreatedAt = r.s.tick()
	r.s.d.roomImages[img.ID] = *img
	return nil
}

func (r *roomImageRepo) GetByID(_ context.Context, id string) (*domain.RoomImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	img, ok := r.s.d.roomImages[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &img, nil
}

func (r *roomImageRepo) ListByRoom(_ context.Context, roomID string) ([]domain.RoomImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.RoomImage
	for _, img := range r.s.d.roomImages {
		if img.RoomID == roomID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *roomImageRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.roomImages[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.d.roomImages, id)
	return nil
}

// bookings

type bookingRepo struct{ s *Store }

func (r *bookingRepo) Create(_ context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b.ID = newID()
	b.CreatedAt = r.s.tick()
	b.UpdatedAt = b.CreatedAt
	r.s.d.bookings[b.ID] = *b
	return nil
}

func (r *bookingRepo) Update(_ context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.bookings[b.ID]; !ok {
		return pgx.ErrNoRows
	}
	b.UpdatedAt = r.s.tick()
	r.s.d.bookings[b.ID] = *b
	return nil
}

func (r *bookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.d.bookings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &b, nil
}

func (r *bookingRepo) List(_ context.Context, f repository.BookingFilter) ([]domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Booking
	for _, b := range r.s.d.bookings {
		if f.UserID != nil && b.UserID != *f.UserID {
			continue
		}
		if f.RoomID != nil && b.RoomID != *f.RoomID {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, b.Status) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.After(out[j].CheckIn) })
	return page(out, f.Limit, f.Offset), nil
}

func (r *bookingRepo) HasOverlap(_ context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.d.bookings {
		if b.RoomID != roomID {
			continue
		}
		if b.Status != domain.BookingStatusPending && b.Status != domain.BookingStatusConfirmed {
			continue
		}
		if b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn) {
			return true, nil
		}
	}
	return false, nil
}

func (r *bookingRepo) FindActiveForUser(_ context.Context, userID string, at time.Time) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.d.bookings {
		if b.UserID == userID && b.ActiveAt(at) {
			return &b, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func containsStatus[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// menu

type menuRepo struct{ s *Store }

func (r *menuRepo) Create(_ context.Context, item *domain.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item.ID = newID()
	item.CreatedAt = r.s.tick()
	item.UpdatedAt = item.CreatedAt
	r.s.d.menu[item.ID] = *item
	return nil
}

func (r *menuRepo) Update(_ context.Context, item *domain.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.menu[item.ID]; !ok {
		return pgx.ErrNoRows
	}
	item.UpdatedAt = r.s.tick()
	r.s.d.menu[item.ID] = *item
	return nil
}

func (r *menuRepo) GetByID(_ context.Context, id string) (*domain.MenuItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.d.menu[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &item, nil
}

func (r *menuRepo) GetByIDs(_ context.Context, ids []string) (map[string]domain.MenuItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]domain.MenuItem, len(ids))
	for _, id := range ids {
		if item, ok := r.s.d.menu[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func (r *menuRepo) List(_ context.Context, includeUnavailable bool, limit, offset int) ([]domain.MenuItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.MenuItem
	for _, item := range r.s.d.menu {
		if item.Available || includeUnavailable {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// orders

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(_ context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.ID = newID()
	o.CreatedAt = r.s.tick()
	o.UpdatedAt = o.CreatedAt
	stored := *o
	stored.Items = append([]domain.OrderItem(nil), o.Items...)
	r.s.d.orders[o.ID] = stored
	return nil
}

func (r *orderRepo) Update(_ context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.d.orders[o.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Status = o.Status
	stored.DeliveryTaskID = o.DeliveryTaskID
	stored.Notes = o.Notes
	stored.UpdatedAt = r.s.tick()
	o.UpdatedAt = stored.UpdatedAt
	r.s.d.orders[o.ID] = stored
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.d.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Order
	for _, o := range r.s.d.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

// tasks

type taskRepo struct{ s *Store }

func (r *taskRepo) Create(_ context.Context, t *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = newID()
	t.CreatedAt = r.s.tick()
	t.UpdatedAt = t.CreatedAt
	r.s.d.tasks[t.ID] = *t
	return nil
}

func (r *taskRepo) Update(_ context.Context, t *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.tasks[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	t.UpdatedAt = r.s.tick()
	r.s.d.tasks[t.ID] = *t
	return nil
}

func (r *taskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.d.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r *taskRepo) List(_ context.Context, f repository.TaskFilter) ([]domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Task
	for _, t := range r.s.d.tasks {
		if f.AssigneeID != nil && !t.AssignedTo(*f.AssigneeID) {
			continue
		}
		if f.RoomID != nil && t.RoomID != *f.RoomID {
			continue
		}
		if len(f.Kinds) > 0 && !containsStatus(f.Kinds, t.Kind) {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
			continue
		}
		if f.ScheduledFrom != nil && t.ScheduledFor.Before(*f.ScheduledFrom) {
			continue
		}
		if f.ScheduledTo != nil && t.ScheduledFor.After(*f.ScheduledTo) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledFor.Equal(out[j].ScheduledFor) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ScheduledFor.Before(out[j].ScheduledFor)
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *taskRepo) CountPendingByAssignee(_ context.Context, staffIDs []string) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.CountPendingCalls++
	wanted := make(map[string]struct{}, len(staffIDs))
	for _, id := range staffIDs {
		wanted[id] = struct{}{}
	}
	counts := make(map[string]int, len(staffIDs))
	for _, t := range r.s.d.tasks {
		if t.Status != domain.TaskStatusPending || t.AssigneeID == nil {
			continue
		}
		if _, ok := wanted[*t.AssigneeID]; ok {
			counts[*t.AssigneeID]++
		}
	}
	return counts, nil
}

// task history

type historyRepo struct{ s *Store }

func (r *historyRepo) Create(_ context.Context, h *domain.TaskHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h.ID = newID()
	h.CreatedAt = r.s.tick()
	r.s.d.history = append(r.s.d.history, *h)
	return nil
}

func (r *historyRepo) ListByTask(_ context.Context, taskID string) ([]domain.TaskHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.TaskHistory
	for _, h := range r.s.d.history {
		if h.TaskID == taskID {
			out = append(out, h)
		}
	}
	return out, nil
}

// rotation

type rotationRepo struct{ s *Store }

func (r *rotationRepo) Get(_ context.Context, name string) (*domain.RotationPointer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ptr, ok := r.s.d.rotation[name]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ptr, nil
}

func (r *rotationRepo) CompareAndSwap(_ context.Context, name, prev, next string) (bool, error) {
	if hook := r.s.BeforeRotationSwap; hook != nil {
		hook(r.s, name)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, exists := r.s.d.rotation[name]
	switch {
	case prev == "" && exists:
		return false, nil
	case prev != "" && (!exists || current.StaffID != prev):
		return false, nil
	}
	r.s.setRotationLocked(name, next)
	return true, nil
}

// notifications

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Enqueue(_ context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = newID()
	n.Status = domain.NotificationStatusPending
	n.CreatedAt = r.s.tick()
	due := n.CreatedAt
	n.NextAttemptAt = &due
	r.s.d.notifications[n.ID] = *n
	return nil
}

func (r *notificationRepo) ClaimDue(_ context.Context, now, leaseUntil time.Time, limit int) ([]domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.s.d.notifications {
		if n.Status != domain.NotificationStatusPending {
			continue
		}
		if n.NextAttemptAt != nil && n.NextAttemptAt.After(now) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	out = page(out, limit, 0)
	for i := range out {
		lease := leaseUntil
		out[i].NextAttemptAt = &lease
		r.s.d.notifications[out[i].ID] = out[i]
	}
	return out, nil
}

func (r *notificationRepo) MarkSent(_ context.Context, id string) error {
	return r.update(id, func(n *domain.Notification) {
		sentAt := r.s.clock
		n.Status = domain.NotificationStatusSent
		n.SentAt = &sentAt
		n.LastError = nil
		n.NextAttemptAt = nil
		n.Attempts++
	})
}

func (r *notificationRepo) MarkRetry(_ context.Context, id, lastError string, nextAttemptAt time.Time) error {
	return r.update(id, func(n *domain.Notification) {
		n.Status = domain.NotificationStatusPending
		n.LastError = &lastError
		n.NextAttemptAt = &nextAttemptAt
		n.Attempts++
	})
}

func (r *notificationRepo) MarkFailed(_ context.Context, id, lastError string) error {
	return r.update(id, func(n *domain.Notification) {
		n.Status = domain.NotificationStatusFailed
		n.LastError = &lastError
		n.NextAttemptAt = nil
		n.Attempts++
	})
}

func (r *notificationRepo) List(_ context.Context, status *domain.NotificationStatus, limit, offset int) ([]domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.s.d.notifications {
		if status != nil && n.Status != *status {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *notificationRepo) update(id string, fn func(n *domain.Notification)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.d.notifications[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&n)
	r.s.d.notifications[id] = n
	return nil
}

// chat

type chatRepo struct{ s *Store }

func (r *chatRepo) Create(_ context.Context, m *domain.ChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = newID()
	m.CreatedAt = r.s.tick()
	r.s.d.chat = append(r.s.d.chat, *m)
	return nil
}

func (r *chatRepo) ListByBooking(_ context.Context, bookingID string, limit, offset int) ([]domain.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.ChatMessage
	for _, m := range r.s.d.chat {
		if m.BookingID == bookingID {
			out = append(out, m)
		}
	}
	return page(out, limit, offset), nil
}

// password resets

type resetRepo struct{ s *Store }

func (r *resetRepo) Create(_ context.Context, t *repository.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = newID()
	t.CreatedAt = r.s.tick()
	r.s.d.resets[t.Token] = *t
	return nil
}

func (r *resetRepo) GetByToken(_ context.Context, token string) (*repository.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.d.resets[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r *resetRepo) MarkUsed(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key, t := range r.s.d.resets {
		if t.ID != id {
			continue
		}
		if t.UsedAt != nil {
			return repository.ErrTokenUsed
		}
		now := r.s.tick()
		t.UsedAt = &now
		r.s.d.resets[key] = t
		return nil
	}
	return pgx.ErrNoRows
}
