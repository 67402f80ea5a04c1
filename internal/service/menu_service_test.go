package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

func TestMenu(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	svc := NewMenuService(f.repos.Menu)

	soup, err := svc.Create(f.ctx, admin, MenuItemInput{Name: "Soup", Price: 6, Available: true})
	require.NoError(t, err)
	_, err = svc.Create(f.ctx, admin, MenuItemInput{Name: "Lobster", Price: 60})
	require.NoError(t, err)
	_, err = svc.Create(f.ctx, admin, MenuItemInput{Name: "Free", Price: 0})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	visible, err := svc.List(f.ctx, false, 0, 0)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, soup.ID, visible[0].ID)

	all, err := svc.List(f.ctx, true, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	updated, err := svc.Update(f.ctx, admin, soup.ID, MenuItemInput{Name: "Soup of the day", Price: 7})
	require.NoError(t, err)
	assert.False(t, updated.Available)
}
