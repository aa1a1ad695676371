package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"todoapi/internal/apperr"
	"todoapi/internal/middleware"
	"todoapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, tokens *services.TokenService) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(apperr.Status(err)).SendString(apperr.Code(err))
		},
	})
	app.Get("/me", middleware.AuthRequired(tokens), func(c *fiber.Ctx) error {
		id, ok := middleware.UserID(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(strconv.FormatUint(uint64(id), 10))
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens, err := services.NewTokenService("secret", "HS256", time.Minute)
	require.NoError(t, err)
	tokens.WithClock(func() time.Time { return now })

	valid, err := tokens.Issue(5)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + valid, http.StatusOK, "5"},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, "5"},
		{"missing", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"no token", "Bearer ", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, "UNAUTHORIZED"},
	}

	app := newApp(t, tokens)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tc.body, string(body))
		})
	}
}

func TestAuthRequired_ExpiredToken(t *testing.T) {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := issued
	tokens, err := services.NewTokenService("secret", "HS256", time.Minute)
	require.NoError(t, err)
	tokens.WithClock(func() time.Time { return now })

	token, err := tokens.Issue(5)
	require.NoError(t, err)
	now = issued.Add(time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := newApp(t, tokens).Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
