package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Pratik1374/API-GraphQL/internal/identity"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verifierStub struct {
	verifyFn func(ctx context.Context, token string) (*identity.Identity, error)
}

func (s verifierStub) Verify(ctx context.Context, token string) (*identity.Identity, error) {
	return s.verifyFn(ctx, token)
}
func (verifierStub) GetUserByEmail(context.Context, string) (*identity.Identity, error) {
	return nil, errors.New("not implemented")
}
func (verifierStub) DeleteUser(context.Context, string) error { return nil }
func (verifierStub) Name() string                              { return "stub" }

func tokenTable(tokens map[string]string) verifierStub {
	return verifierStub{verifyFn: func(_ context.Context, token string) (*identity.Identity, error) {
		if sub, ok := tokens[token]; ok {
			return &identity.Identity{Subject: sub}, nil
		}
		return nil, errors.New("bad token")
	}}
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/test", AuthRequired(tokenTable(map[string]string{"good": "u1", "blank": ""})), func(c *fiber.Ctx) error {
		id, ok := identity.FromContext(c.UserContext())
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"subject": Subject(c), "ctx": id.Subject})
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{name: "Happy Path", authHeader: "Bearer good", expectedStatus: http.StatusOK},
		{name: "Lowercase Scheme", authHeader: "bearer good", expectedStatus: http.StatusOK},
		{name: "Missing Header", expectedStatus: http.StatusUnauthorized},
		{name: "Invalid Format", authHeader: "Basic dXNlcjpwYXNz", expectedStatus: http.StatusUnauthorized},
		{name: "Rejected Token", authHeader: "Bearer nope", expectedStatus: http.StatusUnauthorized},
		{name: "Empty Subject", authHeader: "Bearer blank", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var out map[string]string
			require.NoError(t, json.Unmarshal(body, &out))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "u1", out["subject"])
				assert.Equal(t, "u1", out["ctx"])
			} else {
				assert.Contains(t, out["error"], "Unauthorized: ")
			}
		})
	}
}

func TestCheckRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	t.Run("bypassed outside production-like envs", func(t *testing.T) {
		for _, env := range []string{"test", "development", "stress"} {
			t.Setenv("APP_ENV", env)
			allowed, err := CheckRateLimit(ctx, nil, "graphql", "u1", 0, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
	})

	t.Run("counts hits within the window", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		for i := 0; i < 2; i++ {
			allowed, err := CheckRateLimit(ctx, rdb, "graphql", "u1", 2, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := CheckRateLimit(ctx, rdb, "graphql", "u1", 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		assert.True(t, mr.TTL("rl:graphql:u1") > 0)
		mr.FastForward(time.Minute + time.Second)
		allowed, err = CheckRateLimit(ctx, rdb, "graphql", "u1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("nil client errors", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, err := CheckRateLimit(ctx, nil, "graphql", "u1", 2, time.Minute)
		assert.Error(t, err)
	})
}

func TestRateLimitKeyedBySubject(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	app := fiber.New()
	app.Use(AuthRequired(tokenTable(map[string]string{"a": "alice", "b": "bob"})))
	app.Get("/graphql", RateLimit(rdb, 1, time.Minute, "graphql"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	call := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, call("a"))
	assert.Equal(t, http.StatusTooManyRequests, call("a"))
	assert.Equal(t, http.StatusOK, call("b"))
	assert.True(t, mr.Exists("rl:graphql:subject:alice"))
}

func TestRateLimitFailurePolicy(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	handler := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	tests := []struct {
		name   string
		policy FailPolicy
		status int
	}{
		{name: "fail open", policy: FailOpen, status: http.StatusOK},
		{name: "fail closed", policy: FailClosed, status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", RateLimitWithPolicy(nil, 1, time.Minute, tt.policy), handler)
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestTracingSetsTraceHeaderAndContext(t *testing.T) {
	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Use(ContextMiddleware())
	app.Use(StructuredLogger())
	app.Get("/", func(c *fiber.Ctx) error {
		tid, _ := c.Locals("traceID").(string)
		return c.SendString(tid)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, string(body), resp.Header.Get("X-Trace-ID"))
}
