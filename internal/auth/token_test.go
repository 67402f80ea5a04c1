package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hotel-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	role := domain.StaffRoleAdmin

	meta, signed, err := tm.GenerateToken("staff-1", domain.SubjectTypeStaff, &role)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", meta.SubjectID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), meta.ExpiresAt, 5*time.Second)
	assert.Equal(t, 15*time.Minute, meta.TTL())

	claims, err := tm.ParseToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.Subject)
	assert.Equal(t, domain.SubjectTypeStaff, claims.Kind)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.StaffRoleAdmin, *claims.Role)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	_, signed, err := NewTokenManager("one", 5).GenerateToken("u1", domain.SubjectTypeUser, nil)
	require.NoError(t, err)

	_, err = NewTokenManager("two", 5).ParseToken(signed)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	_, signed, err := tm.GenerateToken("u1", domain.SubjectTypeUser, nil)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseToken(signed)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.Error(t, ComparePassword(hash, "battery staple"))
}
