package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/pulsefit/gymhub/config"
	"github.com/pulsefit/gymhub/testutils"
)

func newTestManager(t *testing.T) *Manager {
	cfg := &config.Config{
		Session: config.SessionConfig{
			Enabled:  true,
			Store:    "memory",
			Name:     "test_session",
			MaxAge:   time.Hour,
			Path:     "/",
			HttpOnly: true,
			SameSite: "lax",
		},
	}

	manager, err := ProvideSessionManager(cfg, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, manager)
	return manager
}

// serve runs one request through the session middleware, replaying cookies
// from an earlier response so state carries across requests.
func serve(t *testing.T, manager *Manager, handler echo.HandlerFunc, prev *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(Middleware(manager))
	e.GET("/", handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if prev != nil {
		for _, cookie := range prev.Result().Cookies() {
			req.AddCookie(cookie)
		}
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec
}

func TestFlash(t *testing.T) {
	t.Run("a flash survives to the next request and is consumed", func(t *testing.T) {
		manager := newTestManager(t)

		set := serve(t, manager, func(c echo.Context) error {
			SetFlashSuccess(c, "account created")
			return c.NoContent(http.StatusOK)
		}, nil)

		var first, second *FlashMessage
		read := serve(t, manager, func(c echo.Context) error {
			first = GetFlash(c)
			return c.NoContent(http.StatusOK)
		}, set)

		require.NotNil(t, first)
		assert.Equal(t, "account created", first.Message)
		assert.Equal(t, FlashSuccess, first.Type)

		serve(t, manager, func(c echo.Context) error {
			second = GetFlash(c)
			return c.NoContent(http.StatusOK)
		}, read)
		assert.Nil(t, second)
	})

	t.Run("each helper carries its type", func(t *testing.T) {
		manager := newTestManager(t)

		set := serve(t, manager, func(c echo.Context) error {
			SetFlashError(c, "something failed")
			return c.NoContent(http.StatusOK)
		}, nil)

		var flash *FlashMessage
		serve(t, manager, func(c echo.Context) error {
			flash = GetFlash(c)
			return c.NoContent(http.StatusOK)
		}, set)

		require.NotNil(t, flash)
		assert.Equal(t, FlashError, flash.Type)
	})

	t.Run("no flash means nil", func(t *testing.T) {
		manager := newTestManager(t)

		var flash *FlashMessage
		serve(t, manager, func(c echo.Context) error {
			flash = GetFlash(c)
			return c.NoContent(http.StatusOK)
		}, nil)
		assert.Nil(t, flash)
	})
}

func TestAuthSessionState(t *testing.T) {
	t.Run("login marks the session authenticated", func(t *testing.T) {
		manager := newTestManager(t)

		loggedIn := serve(t, manager, func(c echo.Context) error {
			Login(c, 42)
			return c.NoContent(http.StatusOK)
		}, nil)

		serve(t, manager, func(c echo.Context) error {
			assert.True(t, IsAuthenticated(c))
			assert.EqualValues(t, 42, GetUserID(c))
			return c.NoContent(http.StatusOK)
		}, loggedIn)
	})

	t.Run("logout destroys the session", func(t *testing.T) {
		manager := newTestManager(t)

		loggedIn := serve(t, manager, func(c echo.Context) error {
			Login(c, 42)
			return c.NoContent(http.StatusOK)
		}, nil)

		loggedOut := serve(t, manager, func(c echo.Context) error {
			Logout(c)
			return c.NoContent(http.StatusOK)
		}, loggedIn)

		serve(t, manager, func(c echo.Context) error {
			assert.False(t, IsAuthenticated(c))
			assert.EqualValues(t, 0, GetUserID(c))
			return c.NoContent(http.StatusOK)
		}, loggedOut)
	})

	t.Run("pending email set, read, cleared", func(t *testing.T) {
		manager := newTestManager(t)

		set := serve(t, manager, func(c echo.Context) error {
			SetPendingEmail(c, "jane@x.com")
			return c.NoContent(http.StatusOK)
		}, nil)

		read := serve(t, manager, func(c echo.Context) error {
			assert.Equal(t, "jane@x.com", GetPendingEmail(c))
			ClearPendingEmail(c)
			return c.NoContent(http.StatusOK)
		}, set)

		serve(t, manager, func(c echo.Context) error {
			assert.Empty(t, GetPendingEmail(c))
			return c.NoContent(http.StatusOK)
		}, read)
	})
}

func TestSessionServiceMiddleware_TouchesLastUsed(t *testing.T) {
	manager := newTestManager(t)
	db := testutils.SetupTestDB(t, &UserSession{})
	svc := NewSessionService(db, manager)

	e := echo.New()
	e.Use(Middleware(manager))
	e.Use(SessionServiceMiddleware(svc))
	e.GET("/login", func(c echo.Context) error {
		Login(c, 1)
		return c.NoContent(http.StatusOK)
	})
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	loggedIn := httptest.NewRecorder()
	e.ServeHTTP(loggedIn, req)
	require.Equal(t, http.StatusOK, loggedIn.Code)

	var tracked UserSession
	require.NoError(t, db.Where("user_id = ?", 1).First(&tracked).Error)
	require.NoError(t, db.Model(&tracked).Update("last_used", time.Now().Add(-time.Hour)).Error)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range loggedIn.Result().Cookies() {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, db.Where("user_id = ?", 1).First(&tracked).Error)
	assert.WithinDuration(t, time.Now(), tracked.LastUsed, time.Minute)
}

func TestRequireAuthWeb(t *testing.T) {
	manager := newTestManager(t)

	e := echo.New()
	e.Use(Middleware(manager))
	e.GET("/dashboard", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireAuthWeb("/login"))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}
