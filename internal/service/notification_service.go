package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/events"
	"github.com/spec-kit/hotel-service/internal/realtime"
	"github.com/spec-kit/hotel-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

// RealtimePublisher fans an event out to websocket subscribers of topic.
type RealtimePublisher interface {
	Publish(ctx context.Context, topic, eventType string, payload any) error
}

// NotificationService relays committed domain events to realtime clients
// and exposes the mail outbox to administrators.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  RealtimePublisher
	outbox     repository.NotificationRepository
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, publisher RealtimePublisher, outbox repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		outbox:     outbox,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventOrderPlaced, n.handleOrderPlaced)
	n.dispatcher.Subscribe(events.EventTaskAssigned, n.handleTaskAssigned)
	n.dispatcher.Subscribe(events.EventTaskCompleted, n.handleTaskCompleted)
	n.dispatcher.Subscribe(events.EventChatMessage, n.handleChatMessage)
}

func (n *NotificationService) handleOrderPlaced(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OrderPlacedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	return n.fanOut(ctx, event, payload, realtime.BookingTopic(payload.BookingID), realtime.StaffTopic)
}

func (n *NotificationService) handleTaskAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TaskAssignedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	return n.fanOut(ctx, event, payload, realtime.StaffMemberTopic(payload.AssigneeID))
}

func (n *NotificationService) handleTaskCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TaskCompletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	return n.fanOut(ctx, event, payload, realtime.StaffTopic)
}

func (n *NotificationService) handleChatMessage(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ChatMessagePayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	return n.fanOut(ctx, event, payload, realtime.BookingTopic(payload.BookingID))
}

// fanOut publishes to every topic. A failed topic does not stop the others.
func (n *NotificationService) fanOut(ctx context.Context, event events.Event, payload any, topics ...string) error {
	if n.publisher == nil {
		return nil
	}
	var firstErr error
	for _, topic := range topics {
		if err := n.publisher.Publish(ctx, topic, string(event.Type), payload); err != nil {
			n.logger.Warn("realtime publish failed",
				zap.String("topic", topic),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ListOutbox returns outbox rows, optionally filtered by status.
func (n *NotificationService) ListOutbox(ctx context.Context, actor *domain.StaffMember, status *domain.NotificationStatus, limit, offset int) ([]domain.Notification, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	rows, err := n.outbox.List(ctx, status, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rows, nil
}
