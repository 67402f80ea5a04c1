package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/events"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

func TestChatThread(t *testing.T) {
	f := newFixture(t)
	chat := NewChatService(f.repos, f.dispatcher, nil)
	guest, booking := f.checkedIn("gina", "101")
	ana := f.activeStaff("ana")[0]
	stranger := f.guest("stranger")

	guestAuthor := ChatAuthor{Type: domain.AuthorTypeUser, ID: guest.ID}
	staffAuthor := ChatAuthor{Type: domain.AuthorTypeStaff, ID: ana.ID}

	_, err := chat.Post(f.ctx, guestAuthor, booking.ID, "  Could I get more towels?  ")
	require.NoError(t, err)
	_, err = chat.Post(f.ctx, staffAuthor, booking.ID, "On the way")
	require.NoError(t, err)

	msgs, err := chat.List(f.ctx, guestAuthor, booking.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Could I get more towels?", msgs[0].Body)
	assert.Equal(t, domain.AuthorTypeStaff, msgs[1].AuthorType)

	assert.Equal(t, []string{"booking:" + booking.ID, "booking:" + booking.ID},
		f.published.topics(string(events.EventChatMessage)))

	_, err = chat.List(f.ctx, ChatAuthor{Type: domain.AuthorTypeUser, ID: stranger.ID}, booking.ID, 0, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = chat.Post(f.ctx, guestAuthor, booking.ID, "   ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = chat.Post(f.ctx, guestAuthor, booking.ID, strings.Repeat("a", maxChatBody+1))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
