package domain

import "time"

// NotificationStatus enumerates outbox delivery states.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Notification is an outbox row awaiting mail delivery.
type Notification struct {
	ID            string
	Recipient     string
	Subject       string
	Body          string
	Status        NotificationStatus
	Attempts      int
	LastError     *string
	NextAttemptAt *time.Time
	SentAt        *time.Time
	CreatedAt     time.Time
}
