package service

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/media"
	"github.com/spec-kit/hotel-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

func TestRoomCatalog(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	store, err := media.NewLocalStore(t.TempDir(), "/media", 64)
	require.NoError(t, err)
	rooms := NewRoomService(f.repos, store, nil)

	room, err := rooms.Create(f.ctx, admin, RoomInput{Number: "201", Type: "Suite", PricePerNight: 250, Capacity: 3})
	require.NoError(t, err)
	assert.Equal(t, "suite", room.Type)
	assert.Equal(t, domain.RoomStatusAvailable, room.Status)

	_, err = rooms.Create(f.ctx, admin, RoomInput{Number: "201", Type: "double", PricePerNight: 100})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = rooms.Create(f.ctx, admin, RoomInput{Number: "202", Type: "double"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 128, 64))))
	img, err := rooms.AddImage(f.ctx, admin, room.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Width)
	assert.Equal(t, 32, img.Height)
	assert.True(t, strings.HasPrefix(img.URL, "/media/room-201/"))

	_, err = rooms.AddImage(f.ctx, admin, room.ID, strings.NewReader("text"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	got, err := rooms.Get(f.ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 1)

	status := domain.RoomStatusMaintenance
	updated, err := rooms.Update(f.ctx, admin, room.ID, RoomInput{Number: "201", Type: "suite", PricePerNight: 275, Status: status})
	require.NoError(t, err)
	assert.Equal(t, 275.0, updated.PricePerNight)
	assert.Len(t, updated.Images, 1)

	available, err := rooms.List(f.ctx, repository.RoomFilter{Status: ptr(domain.RoomStatusAvailable)})
	require.NoError(t, err)
	assert.Empty(t, available)

	require.NoError(t, rooms.DeleteImage(f.ctx, admin, room.ID, img.ID))
	assert.True(t, apperrors.HasCode(rooms.DeleteImage(f.ctx, admin, room.ID, img.ID), apperrors.CodeNotFound))

	require.NoError(t, rooms.Delete(f.ctx, admin, room.ID))
	_, err = rooms.Get(f.ctx, room.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestRoomWritesRequireAdmin(t *testing.T) {
	f := newFixture(t)
	staff := f.activeStaff("ana")[0]
	store, err := media.NewLocalStore(t.TempDir(), "/media", 64)
	require.NoError(t, err)
	rooms := NewRoomService(f.repos, store, nil)

	_, err = rooms.Create(f.ctx, staff, RoomInput{Number: "1", Type: "single", PricePerNight: 80})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}
