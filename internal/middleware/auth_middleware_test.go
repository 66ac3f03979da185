package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", RequireAuth(testSecret), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c).String())
	})
	app.Post("/hook", RequireWebhookSecret("hook-secret"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.New()
	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + signToken(t, testSecret, userID.String(), time.Now().Add(time.Hour)), fiber.StatusOK},
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", userID.String(), time.Now().Add(time.Hour)), fiber.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, userID.String(), time.Now().Add(-time.Minute)), fiber.StatusUnauthorized},
		{"subject not a uuid", "Bearer " + signToken(t, testSecret, "admin", time.Now().Add(time.Hour)), fiber.StatusUnauthorized},
	}

	app := newAuthApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.status == fiber.StatusOK {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, userID.String(), string(body))
			}
		})
	}
}

func TestRequireWebhookSecret(t *testing.T) {
	app := newAuthApp()

	req := httptest.NewRequest("POST", "/hook", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("POST", "/hook", nil)
	req.Header.Set("X-Webhook-Secret", "hook-secret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
