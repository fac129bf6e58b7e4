package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/pulsefit/gymhub/config"
	"github.com/pulsefit/gymhub/middleware/ratelimit"
	"github.com/pulsefit/gymhub/services/auth"
	"github.com/pulsefit/gymhub/services/registration"
	"github.com/pulsefit/gymhub/services/templates"
	"github.com/pulsefit/gymhub/services/user"
	"github.com/pulsefit/gymhub/session"
	"github.com/pulsefit/gymhub/testutils"
	"gorm.io/gorm"
)

type testApp struct {
	echo     *echo.Echo
	db       *gorm.DB
	auth     *auth.Service
	users    user.Store
	sessions session.SessionService
}

func setupApp(t *testing.T, models ...interface{}) *testApp {
	db := testutils.SetupTestDB(t, models...)

	cfg := testutils.GetTestConfig()
	cfg.Session = config.SessionConfig{
		Enabled:  true,
		Store:    "memory",
		Name:     "test_session",
		MaxAge:   time.Hour,
		Path:     "/",
		HttpOnly: true,
		SameSite: "lax",
	}
	cfg.Templates = config.TemplatesConfig{
		Dir:       "../templates/pages",
		Extension: ".html",
	}

	users := user.NewStore(db)
	authSvc := auth.NewService(cfg, db, users, nil)

	mailSvc := &testutils.MockMailService{}
	mailSvc.On("SendTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	authSvc.SetMailService(mailSvc)

	regSvc := registration.NewService(cfg, registration.NewStore(db), users, authSvc, mailSvc, nil)

	manager, err := session.ProvideSessionManager(cfg, nil, nil)
	require.NoError(t, err)
	sessSvc := session.NewSessionService(db, manager)

	tmplSvc := templates.New(&cfg.Templates)
	require.NoError(t, tmplSvc.LoadTemplates())

	e := echo.New()
	e.Renderer = tmplSvc.Renderer()
	e.Use(session.Middleware(manager))
	e.Use(session.SessionServiceMiddleware(sessSvc))

	h := New(cfg, nil, regSvc, authSvc, users, ratelimit.NewMemoryStore())
	h.RegisterRoutes(e)

	return &testApp{echo: e, db: db, auth: authSvc, users: users, sessions: sessSvc}
}

func (app *testApp) postForm(path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	app.echo.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) get(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	app.echo.ServeHTTP(rec, req)
	return rec
}

func createTestUser(t *testing.T, app *testApp, email, password string) *user.User {
	hash, err := app.auth.HashPassword(password)
	require.NoError(t, err)

	u := &user.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleMember,
		Status:       user.StatusActive,
	}
	require.NoError(t, app.users.Create(u))
	return u
}

func TestSubmitResetPassword_ErrorHandling(t *testing.T) {
	t.Run("storage errors surface as a generic message", func(t *testing.T) {
		// no password_reset_tokens table: every lookup is a storage error
		app := setupApp(t, &user.User{})

		rec := app.postForm("/reset-password", url.Values{
			"token":            {"sometoken"},
			"password":         {"Abcdef1!"},
			"confirm_password": {"Abcdef1!"},
		}, nil)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/reset-password?token=sometoken", rec.Header().Get(echo.HeaderLocation))

		page := app.get("/reset-password?token=sometoken", rec.Result().Cookies())
		require.Equal(t, http.StatusOK, page.Code)
		assert.Contains(t, page.Body.String(), "Something went wrong")
		assert.NotContains(t, page.Body.String(), "no such table")
	})

	t.Run("policy violations keep their own message", func(t *testing.T) {
		app := setupApp(t, &user.User{}, &auth.PasswordResetToken{})
		u := createTestUser(t, app, "member@x.com", testutils.TestPasswords.Valid)

		token, err := app.auth.CreatePasswordResetToken(u)
		require.NoError(t, err)

		rec := app.postForm("/reset-password", url.Values{
			"token":            {token.Token},
			"password":         {testutils.TestPasswords.NoSpecial},
			"confirm_password": {testutils.TestPasswords.NoSpecial},
		}, nil)
		require.Equal(t, http.StatusFound, rec.Code)

		page := app.get("/reset-password?token="+token.Token, rec.Result().Cookies())
		require.Equal(t, http.StatusOK, page.Code)
		assert.Contains(t, page.Body.String(), "one special character")
	})
}

func login(t *testing.T, app *testApp, email, password, userAgent string) []*http.Cookie {
	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("User-Agent", userAgent)
	rec := httptest.NewRecorder()
	app.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
	return rec.Result().Cookies()
}

func TestSessionsPanel(t *testing.T) {
	chromeUA := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	t.Run("login tracks the session with browser details", func(t *testing.T) {
		app := setupApp(t, &user.User{}, &session.UserSession{})
		u := createTestUser(t, app, "member@x.com", testutils.TestPasswords.Valid)

		login(t, app, "member@x.com", testutils.TestPasswords.Valid, chromeUA)

		var tracked session.UserSession
		require.NoError(t, app.db.Where("user_id = ?", u.ID).First(&tracked).Error)
		assert.Contains(t, tracked.Browser, "Chrome")
		assert.Equal(t, "Desktop", tracked.DeviceType)
	})

	t.Run("lists sessions with the current one marked", func(t *testing.T) {
		app := setupApp(t, &user.User{}, &session.UserSession{})
		createTestUser(t, app, "member@x.com", testutils.TestPasswords.Valid)

		cookies := login(t, app, "member@x.com", testutils.TestPasswords.Valid, chromeUA)

		page := app.get("/sessions", cookies)
		require.Equal(t, http.StatusOK, page.Code)
		assert.Contains(t, page.Body.String(), "Chrome")
		assert.Contains(t, page.Body.String(), "(this device)")
	})

	t.Run("revoking another session removes its row", func(t *testing.T) {
		app := setupApp(t, &user.User{}, &session.UserSession{})
		u := createTestUser(t, app, "member@x.com", testutils.TestPasswords.Valid)

		cookies := login(t, app, "member@x.com", testutils.TestPasswords.Valid, chromeUA)
		require.NoError(t, app.sessions.TrackSession(u.ID, "tok-other", "10.0.0.9", chromeUA, time.Now().Add(time.Hour)))

		var other session.UserSession
		require.NoError(t, app.db.Where("token = ?", "tok-other").First(&other).Error)

		rec := app.postForm("/sessions/revoke", url.Values{
			"session_id": {fmt.Sprint(other.ID)},
		}, cookies)
		require.Equal(t, http.StatusFound, rec.Code)

		var count int64
		app.db.Model(&session.UserSession{}).Where("user_id = ?", u.ID).Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("revoking all others keeps only the current session", func(t *testing.T) {
		app := setupApp(t, &user.User{}, &session.UserSession{})
		u := createTestUser(t, app, "member@x.com", testutils.TestPasswords.Valid)

		cookies := login(t, app, "member@x.com", testutils.TestPasswords.Valid, chromeUA)
		require.NoError(t, app.sessions.TrackSession(u.ID, "tok-b", "10.0.0.9", "", time.Now().Add(time.Hour)))
		require.NoError(t, app.sessions.TrackSession(u.ID, "tok-c", "10.0.0.9", "", time.Now().Add(time.Hour)))

		rec := app.postForm("/sessions/revoke-others", nil, cookies)
		require.Equal(t, http.StatusFound, rec.Code)

		var count int64
		app.db.Model(&session.UserSession{}).Where("user_id = ?", u.ID).Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("unauthenticated visitors are sent to login", func(t *testing.T) {
		app := setupApp(t, &user.User{}, &session.UserSession{})

		rec := app.get("/sessions", nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	})
}
