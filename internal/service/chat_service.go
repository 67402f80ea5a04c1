package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/events"
	"github.com/spec-kit/hotel-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

const maxChatBody = 2000

// ChatAuthor identifies who posts to a booking thread.
type ChatAuthor struct {
	Type domain.AuthorType
	ID   string
}

// ChatService stores booking threads between guests and staff.
type ChatService struct {
	bookings   repository.BookingRepository
	chat       repository.ChatRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewChatService constructs the service.
func NewChatService(repos repository.Repositories, dispatcher events.Dispatcher, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		bookings:   repos.Bookings,
		chat:       repos.Chat,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (s *ChatService) authorize(ctx context.Context, author ChatAuthor, bookingID string) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return notFoundOr(err, "booking", map[string]any{"booking_id": bookingID})
	}
	switch author.Type {
	case domain.AuthorTypeStaff:
		return nil
	case domain.AuthorTypeUser:
		if booking.UserID == author.ID {
			return nil
		}
		return apperrors.NewNotFound("booking", map[string]any{"booking_id": bookingID})
	default:
		return apperrors.NewForbidden("unsupported author")
	}
}

// Post appends a message and broadcasts it to the booking channel.
func (s *ChatService) Post(ctx context.Context, author ChatAuthor, bookingID, body string) (*domain.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("message body is required", nil)
	}
	if utf8.RuneCountInString(body) > maxChatBody {
		return nil, apperrors.NewValidationError("message too long", map[string]any{"max": maxChatBody})
	}
	if err := s.authorize(ctx, author, bookingID); err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{
		BookingID:  bookingID,
		AuthorType: author.Type,
		AuthorID:   author.ID,
		Body:       body,
	}
	if err := s.chat.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:  events.EventChatMessage,
		Actor: events.Actor{Type: author.Type, ID: &author.ID},
		Payload: events.ChatMessagePayload{
			MessageID:  msg.ID,
			BookingID:  msg.BookingID,
			AuthorType: msg.AuthorType,
			AuthorID:   msg.AuthorID,
			Body:       msg.Body,
			CreatedAt:  msg.CreatedAt,
		},
	})
	return msg, nil
}

// List returns the booking thread, oldest first.
func (s *ChatService) List(ctx context.Context, author ChatAuthor, bookingID string, limit, offset int) ([]domain.ChatMessage, error) {
	if err := s.authorize(ctx, author, bookingID); err != nil {
		return nil, err
	}
	msgs, err := s.chat.ListByBooking(ctx, bookingID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}
