package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) IsLimited(ip, action string, maxAttempts int) (bool, error) {
	return false, assert.AnError
}

func (failingStore) RecordAttempt(ip, action string, window time.Duration) error {
	return assert.AnError
}

func (failingStore) ClearAttempts(ip, action string) error {
	return assert.AnError
}

func doRequest(e *echo.Echo) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newGuardedEcho(cfg Config) *echo.Echo {
	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, Middleware(cfg))
	return e
}

func TestMiddleware(t *testing.T) {
	t.Run("allows requests under the budget and blocks beyond it", func(t *testing.T) {
		e := newGuardedEcho(Config{
			Store:       NewMemoryStore(),
			Action:      "login",
			MaxAttempts: 3,
			Window:      time.Minute,
		})

		for i := 0; i < 3; i++ {
			rec := doRequest(e)
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
			assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		}

		rec := doRequest(e)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("limits are per ip", func(t *testing.T) {
		e := newGuardedEcho(Config{
			Store:       NewMemoryStore(),
			Action:      "login",
			MaxAttempts: 1,
			Window:      time.Minute,
		})

		rec := doRequest(e)
		require.Equal(t, http.StatusOK, rec.Code)
		rec = doRequest(e)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set(echo.HeaderXRealIP, "10.0.0.2")
		other := httptest.NewRecorder()
		e.ServeHTTP(other, req)
		assert.Equal(t, http.StatusOK, other.Code)
	})

	t.Run("invokes the custom limit handler", func(t *testing.T) {
		e := newGuardedEcho(Config{
			Store:       NewMemoryStore(),
			Action:      "login",
			MaxAttempts: 1,
			Window:      time.Minute,
			OnLimitReached: func(c echo.Context) error {
				return c.Redirect(http.StatusSeeOther, "/login")
			},
		})

		doRequest(e)
		rec := doRequest(e)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("a broken store fails open when configured", func(t *testing.T) {
		e := newGuardedEcho(Config{
			Store:       failingStore{},
			Action:      "login",
			MaxAttempts: 1,
			Window:      time.Minute,
			FailOpen:    true,
		})

		rec := doRequest(e)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("a broken store fails closed by default", func(t *testing.T) {
		e := newGuardedEcho(Config{
			Store:       failingStore{},
			Action:      "login",
			MaxAttempts: 1,
			Window:      time.Minute,
		})

		rec := doRequest(e)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
