package service

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/events"
	"github.com/spec-kit/hotel-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

// notFoundOr maps pgx.ErrNoRows, and ids Postgres could not parse, to a 404
// for resource. Anything else gets the generic mapping.
func notFoundOr(err error, resource string, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) || apperrors.IsMalformedValue(err) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("publish event", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func userActor(userID string) events.Actor {
	return events.Actor{Type: domain.AuthorTypeUser, ID: &userID}
}

func staffActor(staffID string) events.Actor {
	return events.Actor{Type: domain.AuthorTypeStaff, ID: &staffID}
}

func systemActor() events.Actor {
	return events.Actor{Type: domain.AuthorTypeSystem}
}

// enqueueMail writes a pending outbox row. Empty recipients are skipped.
func enqueueMail(ctx context.Context, repo repository.NotificationRepository, to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return nil
	}
	return repo.Enqueue(ctx, &domain.Notification{
		Recipient: to,
		Subject:   subject,
		Body:      body,
		Status:    domain.NotificationStatusPending,
	})
}

func recordAssignment(ctx context.Context, repo repository.TaskHistoryRepository, actor events.Actor, task *domain.Task, policy string) error {
	return repo.Create(ctx, &domain.TaskHistory{
		TaskID:        task.ID,
		ChangedByType: actor.Type,
		ChangedByID:   actor.ID,
		ChangeType:    domain.ChangeTypeAssigned,
		OldValue:      map[string]any{"assignee_staff_id": nil},
		NewValue: map[string]any{
			"assignee_staff_id": task.AssigneeID,
			"policy":            policy,
		},
	})
}

// stringPreview shortens body to at most max runes.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
