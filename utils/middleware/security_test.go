package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitLimiter(t *testing.T) {
	cfg := SecurityConfig{RateLimitRequests: 2, RateLimitWindow: time.Minute}
	app := fiber.New()
	SetupSecurity(app, cfg)
	app.Post("/jobs", SubmitLimiter(cfg), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusAccepted) })

	var codes []int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/jobs", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{fiber.StatusAccepted, fiber.StatusAccepted, fiber.StatusTooManyRequests}, codes)
}

func TestSecurityHeaders(t *testing.T) {
	app := fiber.New()
	SetupSecurity(app, SecurityConfig{})
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestSubmitLimiterDisabled(t *testing.T) {
	app := fiber.New()
	app.Post("/jobs", SubmitLimiter(SecurityConfig{}), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusAccepted) })

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/jobs", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	}
}
