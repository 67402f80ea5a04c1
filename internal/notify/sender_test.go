package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/hotel-service/internal/config"
)

func TestNewSenderFallsBackToLog(t *testing.T) {
	sender, err := NewSender(config.NotificationConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, sender)
}

func TestNewSenderUsesSMTPWhenConfigured(t *testing.T) {
	sender, err := NewSender(config.NotificationConfig{
		SMTPHost:  "smtp.hotel.test",
		SMTPPort:  2525,
		EmailFrom: "frontdesk@hotel.test",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, sender)
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))

	require.NoError(t, sender.Send(context.Background(), Message{To: "s@hotel.test", Subject: "New task"}))
	assert.ErrorIs(t, sender.Send(context.Background(), Message{}), ErrNoRecipient)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "s@hotel.test", logs.All()[0].ContextMap()["to"])
}

func TestBuildMessage(t *testing.T) {
	m, err := buildMessage("frontdesk@hotel.test", Message{To: "guest@hotel.test", Subject: "Booking confirmed", Body: "See you soon"})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Subject: Booking confirmed")
	assert.Contains(t, buf.String(), "guest@hotel.test")

	_, err = buildMessage("frontdesk@hotel.test", Message{To: "not an address"})
	assert.Error(t, err)
}
