package service

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

func TestNotFoundOr(t *testing.T) {
	assert.True(t, apperrors.HasCode(notFoundOr(pgx.ErrNoRows, "room", nil), apperrors.CodeNotFound))
	assert.True(t, apperrors.HasCode(notFoundOr(&pgconn.PgError{Code: "22P02"}, "room", nil), apperrors.CodeNotFound))
	assert.True(t, apperrors.HasCode(notFoundOr(errors.New("boom"), "room", nil), apperrors.CodeInternal))
}

func TestStringPreviewKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", stringPreview("  short  ", 10))
	assert.Equal(t, "ééé...", stringPreview("éééééééé", 6))
	assert.Equal(t, "寿司", stringPreview("寿司寿司", 2))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Suite", capitalize("suite"))
	assert.Equal(t, "Élan", capitalize("élan"))
	assert.Equal(t, "", capitalize(""))
}
