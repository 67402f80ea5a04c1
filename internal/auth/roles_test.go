package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hotel-service/internal/domain"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

func newRoleApp(p *Principal, guard fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/", func(c *fiber.Ctx) error {
		if p != nil {
			WithPrincipal(c, p)
		}
		return c.Next()
	}, guard, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func TestRoleGuards(t *testing.T) {
	guest := &Principal{SubjectType: domain.SubjectTypeUser, User: &domain.User{ID: "u1"}}
	staff := &Principal{SubjectType: domain.SubjectTypeStaff, Staff: &domain.StaffMember{ID: "s1", Role: domain.StaffRoleStaff}}
	admin := &Principal{SubjectType: domain.SubjectTypeStaff, Staff: &domain.StaffMember{ID: "a1", Role: domain.StaffRoleAdmin}}

	cases := []struct {
		name  string
		p     *Principal
		guard fiber.Handler
		want  int
	}{
		{"guest passes RequireUser", guest, RequireUser(), http.StatusNoContent},
		{"staff refused by RequireUser", staff, RequireUser(), http.StatusForbidden},
		{"admin passes admin guard", admin, RequireStaffRole(domain.StaffRoleAdmin), http.StatusNoContent},
		{"staff refused by admin guard", staff, RequireStaffRole(domain.StaffRoleAdmin), http.StatusForbidden},
		{"guest refused by staff guard", guest, RequireStaffRole(), http.StatusForbidden},
		{"any staff passes empty guard", staff, RequireStaffRole(), http.StatusNoContent},
		{"anonymous refused", nil, RequireAnyRole(), http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := newRoleApp(tc.p, tc.guard).Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
