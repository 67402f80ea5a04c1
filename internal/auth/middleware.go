package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	SubjectType domain.SubjectType
	User        *domain.User
	Staff       *domain.StaffMember
}

// ID returns the caller's account id.
func (p *Principal) ID() string {
	switch {
	case p == nil:
		return ""
	case p.User != nil:
		return p.User.ID
	case p.Staff != nil:
		return p.Staff.ID
	}
	return ""
}

// IsAdmin reports whether the caller is an Admin staff account.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Staff != nil && p.Staff.Role == domain.StaffRoleAdmin
}

// AuthorType maps the caller onto chat and history authorship.
func (p *Principal) AuthorType() domain.AuthorType {
	if p != nil && p.SubjectType == domain.SubjectTypeStaff {
		return domain.AuthorTypeStaff
	}
	return domain.AuthorTypeUser
}

// Resolver turns a bearer token into a Principal. The HTTP middleware and the
// realtime gateway share it.
type Resolver struct {
	tokens *TokenManager
	users  repository.UserRepository
	staff  repository.StaffRepository
}

// NewResolver constructs a Resolver.
func NewResolver(tokens *TokenManager, users repository.UserRepository, staff repository.StaffRepository) *Resolver {
	return &Resolver{tokens: tokens, users: users, staff: staff}
}

// Resolve validates token and loads the account it names. Suspended users and
// Non-Active staff are refused.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Principal, error) {
	claims, err := r.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	principal := &Principal{SubjectType: claims.Kind}
	switch claims.Kind {
	case domain.SubjectTypeUser:
		user, err := r.users.GetByID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewUnauthorized("user not found")
			}
			return nil, apperrors.MapError(err)
		}
		if !user.CanSignIn() {
			return nil, apperrors.NewForbidden("account suspended")
		}
		principal.User = user
	case domain.SubjectTypeStaff:
		staff, err := r.staff.GetByID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewUnauthorized("staff not found")
			}
			return nil, apperrors.MapError(err)
		}
		if !staff.Active() {
			return nil, apperrors.NewForbidden("staff account is not active")
		}
		principal.Staff = staff
	default:
		return nil, apperrors.NewUnauthorized("unknown subject")
	}
	return principal, nil
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	resolver *Resolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(resolver *Resolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	principal, err := m.resolver.Resolve(c.UserContext(), strings.TrimSpace(parts[1]))
	if err != nil {
		return err
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil
}

// WithPrincipal stores p on the request, for handlers tests.
func WithPrincipal(c *fiber.Ctx, p *Principal) {
	c.Locals(principalKey, p)
}
