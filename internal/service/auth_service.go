package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hotel-service/internal/auth"
	"github.com/spec-kit/hotel-service/internal/config"
	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

// AuthSubject identifies the caller when changing password.
type AuthSubject struct {
	Type domain.SubjectType
	ID   string
}

// Session is an issued access token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	ExpiresIn time.Duration
}

// AuthService coordinates registration, login and password flows.
type AuthService struct {
	repos      repository.Repositories
	tx         repository.TxRunner
	tokenMgr   *auth.TokenManager
	bcryptCost int
	resetTTL   time.Duration
	appName    string
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	Repos  repository.Repositories
	Tx     repository.TxRunner
	Tokens *auth.TokenManager
	Logger *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	}
	ttl := time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AuthService{
		repos:      deps.Repos,
		tx:         deps.Tx,
		tokenMgr:   tokens,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   ttl,
		appName:    cfg.App.Name,
		logger:     logger,
		now:        time.Now,
	}
}

func invalidCredentials() error {
	return apperrors.NewUnauthorized("invalid credentials")
}

// RegisterUser creates a new guest account and signs it in.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*domain.User, *Session, error) {
	name = strings.TrimSpace(name)
	if name == "" || !strings.Contains(email, "@") {
		return nil, nil, apperrors.NewValidationError("name and a valid email are required", nil)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.NewValidationError(err.Error(), nil)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, nil, apperrors.MapError(err)
	}

	session, err := s.issue(user.ID, domain.SubjectTypeUser, nil)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// LoginUser authenticates a guest.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.User, *Session, error) {
	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, invalidCredentials()
		}
		return nil, nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, invalidCredentials()
	}
	if !user.CanSignIn() {
		return nil, nil, apperrors.NewForbidden("account suspended")
	}
	session, err := s.issue(user.ID, domain.SubjectTypeUser, nil)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// LoginStaff authenticates staff and returns a role-bearing token.
func (s *AuthService) LoginStaff(ctx context.Context, email, password string) (*domain.StaffMember, *Session, error) {
	staff, err := s.repos.Staff.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, invalidCredentials()
		}
		return nil, nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		return nil, nil, invalidCredentials()
	}
	if !staff.Active() {
		return nil, nil, apperrors.NewForbidden("account is not active")
	}
	session, err := s.issue(staff.ID, domain.SubjectTypeStaff, &staff.Role)
	if err != nil {
		return nil, nil, err
	}
	return staff, session, nil
}

func (s *AuthService) issue(subjectID string, kind domain.SubjectType, role *domain.StaffRole) (*Session, error) {
	meta, token, err := s.tokenMgr.GenerateToken(subjectID, kind, role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{Token: token, ExpiresAt: meta.ExpiresAt, ExpiresIn: meta.TTL()}, nil
}

// RequestPasswordReset stores a reset token and mails it through the outbox.
// Unknown addresses succeed silently so accounts cannot be enumerated.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	var (
		subjectType domain.SubjectType
		subjectID   string
	)
	if user, err := s.repos.Users.GetByEmail(ctx, email); err == nil {
		subjectType, subjectID = domain.SubjectTypeUser, user.ID
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	} else if staff, err := s.repos.Staff.GetByEmail(ctx, email); err == nil {
		subjectType, subjectID = domain.SubjectTypeStaff, staff.ID
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	if subjectID == "" {
		s.logger.Debug("password reset for unknown email")
		return nil
	}

	token := &repository.PasswordResetToken{
		SubjectType: string(subjectType),
		SubjectID:   subjectID,
		Token:       uuid.NewString(),
		ExpiresAt:   s.now().Add(s.resetTTL),
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.PasswordResets.Create(ctx, token); err != nil {
			return err
		}
		body := fmt.Sprintf("Use this code to reset your password: %s\nIt expires at %s.",
			token.Token, token.ExpiresAt.UTC().Format(time.RFC1123))
		return enqueueMail(ctx, repos.Notifications, email, s.appName+": password reset", body)
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	expired := apperrors.NewValidationError("reset token expired or used", nil)

	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		token, err := repos.PasswordResets.GetByToken(ctx, tokenStr)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return expired
			}
			return err
		}
		if token.UsedAt != nil || s.now().After(token.ExpiresAt) {
			return expired
		}
		if err := repos.PasswordResets.MarkUsed(ctx, token.ID); err != nil {
			if errors.Is(err, repository.ErrTokenUsed) {
				return expired
			}
			return err
		}

		switch domain.SubjectType(token.SubjectType) {
		case domain.SubjectTypeUser:
			user, err := repos.Users.GetByID(ctx, token.SubjectID)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
			return repos.Users.Update(ctx, user)
		case domain.SubjectTypeStaff:
			staff, err := repos.Staff.GetByID(ctx, token.SubjectID)
			if err != nil {
				return err
			}
			staff.PasswordHash = hash
			return repos.Staff.Update(ctx, staff)
		default:
			return fmt.Errorf("unknown reset subject %q", token.SubjectType)
		}
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, subject AuthSubject, currentPassword, newPassword string) error {
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	switch subject.Type {
	case domain.SubjectTypeUser:
		user, err := s.repos.Users.GetByID(ctx, subject.ID)
		if err != nil {
			return notFoundOr(err, "user", nil)
		}
		if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
			return invalidCredentials()
		}
		user.PasswordHash = hash
		return apperrors.MapError(s.repos.Users.Update(ctx, user))
	case domain.SubjectTypeStaff:
		staff, err := s.repos.Staff.GetByID(ctx, subject.ID)
		if err != nil {
			return notFoundOr(err, "staff", nil)
		}
		if err := auth.ComparePassword(staff.PasswordHash, currentPassword); err != nil {
			return invalidCredentials()
		}
		staff.PasswordHash = hash
		return apperrors.MapError(s.repos.Staff.Update(ctx, staff))
	default:
		return apperrors.NewUnauthorized("unknown subject")
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
