package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/events"
	"github.com/spec-kit/hotel-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

const maxLineQuantity = 50

// OrderLineInput is one requested menu item.
type OrderLineInput struct {
	MenuItemID string
	Quantity   int
}

// PlaceOrderInput describes a room-service order.
type PlaceOrderInput struct {
	Items []OrderLineInput
	Notes string
}

// OrderService handles guest food orders and their delivery tasks.
type OrderService struct {
	repos       repository.Repositories
	tx          repository.TxRunner
	assignments *AssignmentService
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// OrderDependencies bundles collaborators.
type OrderDependencies struct {
	Repos       repository.Repositories
	Tx          repository.TxRunner
	Assignments *AssignmentService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		repos:       deps.Repos,
		tx:          deps.Tx,
		assignments: deps.Assignments,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		now:         time.Now,
	}
}

// PlaceOrder prices the order, rotates the delivery assignee and stores the
// order, its delivery task and the staff notification atomically.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*domain.Order, *domain.Task, error) {
	if len(input.Items) == 0 {
		return nil, nil, apperrors.NewValidationError("order has no items", nil)
	}
	quantities := make(map[string]int, len(input.Items))
	var ids []string
	for _, line := range input.Items {
		if line.MenuItemID == "" || line.Quantity < 1 || line.Quantity > maxLineQuantity {
			return nil, nil, apperrors.NewValidationError("invalid order line", map[string]any{
				"menu_item_id": line.MenuItemID,
				"quantity":     line.Quantity,
			})
		}
		if _, seen := quantities[line.MenuItemID]; !seen {
			ids = append(ids, line.MenuItemID)
		}
		quantities[line.MenuItemID] += line.Quantity
	}

	now := s.now().UTC()
	booking, err := s.repos.Bookings.FindActiveForUser(ctx, userID, now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewConflict("orders require a checked-in booking", nil)
		}
		return nil, nil, apperrors.MapError(err)
	}
	room, err := s.repos.Rooms.GetByID(ctx, booking.RoomID)
	if err != nil {
		return nil, nil, notFoundOr(err, "room", map[string]any{"room_id": booking.RoomID})
	}

	menu, err := s.repos.Menu.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	order := &domain.Order{
		UserID:    userID,
		BookingID: booking.ID,
		RoomID:    booking.RoomID,
		Notes:     strings.TrimSpace(input.Notes),
		Status:    domain.OrderStatusPlaced,
	}
	for _, id := range ids {
		item, ok := menu[id]
		if !ok || !item.Available {
			return nil, nil, apperrors.NewValidationError("menu item unavailable", map[string]any{"menu_item_id": id})
		}
		qty := quantities[id]
		order.Items = append(order.Items, domain.OrderItem{
			MenuItemID: id,
			Name:       item.Name,
			UnitPrice:  item.Price,
			Quantity:   qty,
		})
		order.Total += item.Price * float64(qty)
	}

	var (
		task     *domain.Task
		assignee domain.StaffMember
	)
	err = s.assignments.WithRoundRobin(ctx, func(ctx context.Context, repos repository.Repositories, res Resolution) error {
		placed := *order
		placed.Items = append([]domain.OrderItem(nil), order.Items...)
		if err := repos.Orders.Create(ctx, &placed); err != nil {
			return err
		}
		t := &domain.Task{
			Kind:         domain.TaskKindDelivery,
			AssigneeID:   &res.Staff.ID,
			Status:       domain.TaskStatusPending,
			RoomID:       placed.RoomID,
			OrderID:      &placed.ID,
			Description:  describeOrder(&placed),
			ScheduledFor: now,
		}
		if err := repos.Tasks.Create(ctx, t); err != nil {
			return err
		}
		placed.DeliveryTaskID = &t.ID
		if err := repos.Orders.Update(ctx, &placed); err != nil {
			return err
		}
		if err := recordAssignment(ctx, repos.TaskHistory, userActor(userID), t, string(res.Policy)); err != nil {
			return err
		}
		subject := fmt.Sprintf("New delivery for room %s", room.Number)
		if err := enqueueMail(ctx, repos.Notifications, res.Staff.Email, subject, t.Description); err != nil {
			return err
		}
		*order = placed
		task = t
		assignee = res.Staff
		return nil
	})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("task_id", task.ID),
		zap.String("assignee_staff_id", assignee.ID))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:  events.EventOrderPlaced,
		Actor: userActor(userID),
		Payload: events.OrderPlacedPayload{
			OrderID:        order.ID,
			BookingID:      order.BookingID,
			RoomID:         order.RoomID,
			Total:          order.Total,
			DeliveryTaskID: task.ID,
			AssigneeID:     assignee.ID,
		},
	})
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:  events.EventTaskAssigned,
		Actor: userActor(userID),
		Payload: events.TaskAssignedPayload{
			TaskID:       task.ID,
			Kind:         task.Kind,
			RoomID:       task.RoomID,
			AssigneeID:   assignee.ID,
			Policy:       "round_robin",
			ScheduledFor: task.ScheduledFor,
		},
	})
	return order, task, nil
}

// ListOrders returns the guest's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	orders, err := s.repos.Orders.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return orders, nil
}

// CancelOrder cancels a placed order and closes its pending delivery task.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	var order *domain.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		o, err := repos.Orders.GetByID(ctx, orderID)
		if err != nil {
			return notFoundOr(err, "order", map[string]any{"order_id": orderID})
		}
		if o.UserID != userID {
			return apperrors.NewNotFound("order", map[string]any{"order_id": orderID})
		}
		if o.Status != domain.OrderStatusPlaced {
			return apperrors.NewConflict("order can no longer be cancelled", map[string]any{"status": o.Status})
		}
		o.Status = domain.OrderStatusCancelled
		if err := repos.Orders.Update(ctx, o); err != nil {
			return err
		}
		if o.DeliveryTaskID != nil {
			if err := closeCancelledDelivery(ctx, repos, *o.DeliveryTaskID, s.now().UTC()); err != nil {
				return err
			}
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return order, nil
}

func closeCancelledDelivery(ctx context.Context, repos repository.Repositories, taskID string, at time.Time) error {
	task, err := repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if task.Status != domain.TaskStatusPending {
		return nil
	}
	task.Status = domain.TaskStatusCompleted
	task.CompletedAt = &at
	if err := repos.Tasks.Update(ctx, task); err != nil {
		return err
	}
	return repos.TaskHistory.Create(ctx, &domain.TaskHistory{
		TaskID:        task.ID,
		ChangedByType: domain.AuthorTypeSystem,
		ChangeType:    domain.ChangeTypeCompleted,
		OldValue:      map[string]any{"status": domain.TaskStatusPending},
		NewValue:      map[string]any{"status": domain.TaskStatusCompleted, "reason": "order_cancelled"},
	})
}

func describeOrder(o *domain.Order) string {
	parts := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		parts = append(parts, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
	}
	desc := "Deliver " + strings.Join(parts, ", ")
	if o.Notes != "" {
		desc += " (" + stringPreview(o.Notes, 120) + ")"
	}
	return desc
}
