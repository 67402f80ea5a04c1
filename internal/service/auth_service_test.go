package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hotel-service/internal/auth"
	"github.com/spec-kit/hotel-service/internal/config"
	"github.com/spec-kit/hotel-service/internal/domain"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

func newAuthService(f *fixture) *AuthService {
	cfg := config.Config{
		App:  config.AppConfig{Name: "hotel"},
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, PasswordResetTTLMinutes: 10, BcryptCost: 4},
	}
	return NewAuthService(cfg, AuthDependencies{Repos: f.repos, Tx: f.store})
}

func TestRegisterAndLoginUser(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)

	user, session, err := svc.RegisterUser(f.ctx, "Gina", "Gina@Guest.test", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "gina@guest.test", user.Email)
	assert.NotEmpty(t, session.Token)

	claims, err := svc.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, domain.SubjectTypeUser, claims.Kind)

	_, _, err = svc.RegisterUser(f.ctx, "Gina", "gina@guest.test", "correct-horse")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, _, err = svc.RegisterUser(f.ctx, "Short", "short@guest.test", "abc")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, _, err = svc.LoginUser(f.ctx, "gina@guest.test", "wrong-password")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, _, err = svc.LoginUser(f.ctx, "nobody@guest.test", "correct-horse")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, session, err = svc.LoginUser(f.ctx, "gina@guest.test", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
}

func TestLoginStaffRefusesInactive(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	hash, err := auth.HashPassword("staff-password", 4)
	require.NoError(t, err)
	active := &domain.StaffMember{Name: "Ana", Email: "ana@hotel.test", PasswordHash: hash, Role: domain.StaffRoleStaff, Status: domain.StaffStatusActive}
	off := &domain.StaffMember{Name: "Off", Email: "off@hotel.test", PasswordHash: hash, Role: domain.StaffRoleStaff, Status: domain.StaffStatusNonActive}
	require.NoError(t, f.repos.Staff.Create(f.ctx, active))
	require.NoError(t, f.repos.Staff.Create(f.ctx, off))

	_, session, err := svc.LoginStaff(f.ctx, "ana@hotel.test", "staff-password")
	require.NoError(t, err)
	claims, err := svc.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.StaffRoleStaff, *claims.Role)

	_, _, err = svc.LoginStaff(f.ctx, "off@hotel.test", "staff-password")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestPasswordResetThroughOutbox(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	_, _, err := svc.RegisterUser(f.ctx, "Gina", "gina@guest.test", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(f.ctx, "nobody@guest.test"))
	assert.Empty(t, f.store.Notifications())

	require.NoError(t, svc.RequestPasswordReset(f.ctx, "gina@guest.test"))
	mails := f.notificationsTo("gina@guest.test")
	require.Len(t, mails, 1)
	token := resetTokenFrom(t, mails[0].Body)

	require.NoError(t, svc.ConfirmPasswordReset(f.ctx, token, "battery-staple"))
	err = svc.ConfirmPasswordReset(f.ctx, token, "another-password")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, _, err = svc.LoginUser(f.ctx, "gina@guest.test", "battery-staple")
	require.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	user, _, err := svc.RegisterUser(f.ctx, "Gina", "gina@guest.test", "correct-horse")
	require.NoError(t, err)
	subject := AuthSubject{Type: domain.SubjectTypeUser, ID: user.ID}

	err = svc.ChangePassword(f.ctx, subject, "wrong", "battery-staple")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	require.NoError(t, svc.ChangePassword(f.ctx, subject, "correct-horse", "battery-staple"))
	_, _, err = svc.LoginUser(f.ctx, "gina@guest.test", "battery-staple")
	require.NoError(t, err)
}

func resetTokenFrom(t *testing.T, body string) string {
	t.Helper()
	const marker = "reset your password: "
	i := strings.Index(body, marker)
	require.GreaterOrEqual(t, i, 0, body)
	rest := body[i+len(marker):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest)
}
