package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("keeps domain errors", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", NewNoEligibleStaff("round_robin"))

		got := ToDomainError(err)

		require.NotNil(t, got)
		assert.Equal(t, CodeNoEligibleStaff, got.Code)
		assert.Equal(t, http.StatusConflict, got.HTTPStatus)
	})

	t.Run("maps no rows to not found", func(t *testing.T) {
		got := ToDomainError(pgx.ErrNoRows)

		assert.Equal(t, CodeNotFound, got.Code)
		assert.Equal(t, http.StatusNotFound, got.HTTPStatus)
	})

	t.Run("maps fiber errors by status", func(t *testing.T) {
		got := ToDomainError(fiber.NewError(http.StatusForbidden, "admin role required"))

		assert.Equal(t, CodeForbidden, got.Code)
		assert.Equal(t, "admin role required", got.Message)
	})

	t.Run("maps malformed values to validation", func(t *testing.T) {
		err := fmt.Errorf("get room: %w", &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`})

		got := ToDomainError(err)

		assert.True(t, IsMalformedValue(err))
		assert.Equal(t, CodeValidation, got.Code)
		assert.Equal(t, http.StatusBadRequest, got.HTTPStatus)
	})

	t.Run("other postgres errors stay internal", func(t *testing.T) {
		err := &pgconn.PgError{Code: "23505"}

		assert.False(t, IsMalformedValue(err))
		assert.Equal(t, CodeInternal, ToDomainError(err).Code)
	})

	t.Run("hides unknown errors behind internal error", func(t *testing.T) {
		got := ToDomainError(errors.New("boom"))

		assert.Equal(t, CodeInternal, got.Code)
		assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
		assert.Equal(t, "internal server error", got.Message)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})
}

func TestAssignmentErrorsAreDistinguishable(t *testing.T) {
	noStaff := NewNoEligibleStaff("least_loaded")
	invalid := NewAssigneeInvalid("ghost@hotel.test")

	assert.True(t, HasCode(noStaff, CodeNoEligibleStaff))
	assert.False(t, HasCode(noStaff, CodeAssigneeInvalid))
	assert.True(t, HasCode(invalid, CodeAssigneeInvalid))
	assert.Equal(t, http.StatusBadRequest, ToDomainError(invalid).HTTPStatus)
}

func TestMapErrorKeepsNil(t *testing.T) {
	require.NoError(t, MapError(nil))
	require.Error(t, MapError(errors.New("boom")))
}
