package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/hotel-service/internal/config"
	"github.com/spec-kit/hotel-service/internal/observability"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, app *fiber.App, method, path string) (int, envelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func newMiddlewareApp() *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return apperrors.NewNoEligibleStaff("round_robin")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": "fine"})
	})
	return app
}

func TestErrorEnvelope(t *testing.T) {
	app := newMiddlewareApp()

	status, env := decode(t, app, fiber.MethodGet, "/conflict")
	assert.Equal(t, fiber.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperrors.CodeNoEligibleStaff, env.Error.Code)

	status, env = decode(t, app, fiber.MethodGet, "/panic")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperrors.CodeInternal, env.Error.Code)

	status, env = decode(t, app, fiber.MethodGet, "/missing")
	assert.Equal(t, fiber.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperrors.CodeNotFound, env.Error.Code)

	status, env = decode(t, app, fiber.MethodGet, "/ok")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, env.Error)
	assert.JSONEq(t, `"fine"`, string(env.Data))
}

func TestErrorMetricsUseRoutePattern(t *testing.T) {
	metrics := observability.NewMetrics("routes")
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Get("/rooms/:id", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("room", nil)
	})

	for _, id := range []string{"a1", "b2", "c3"} {
		status, _ := decode(t, app, fiber.MethodGet, "/rooms/"+id)
		require.Equal(t, fiber.StatusNotFound, status)
	}

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `route="/rooms/:id"`)
	assert.NotContains(t, string(body), "/rooms/a1")
	assert.NotContains(t, string(body), "/rooms/b2")
}

func TestRequestIDHeader(t *testing.T) {
	app := newMiddlewareApp()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestRateLimiterRejectsAfterBurst(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	limiter := NewRateLimiter(config.RateLimitConfig{RequestsPerMinute: 1, Burst: 2})
	app.Post("/login", limiter.Handle, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": "ok"})
	})

	for i := 0; i < 2; i++ {
		status, _ := decode(t, app, fiber.MethodPost, "/login")
		assert.Equal(t, fiber.StatusOK, status)
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestRateLimiterDisabled(t *testing.T) {
	app := fiber.New()
	limiter := NewRateLimiter(config.RateLimitConfig{})
	app.Get("/", limiter.Handle, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for i := 0; i < 20; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
}
