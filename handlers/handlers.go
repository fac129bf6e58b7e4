package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pulsefit/gymhub/config"
	"github.com/pulsefit/gymhub/middleware/csrf"
	"github.com/pulsefit/gymhub/middleware/ratelimit"
	"github.com/pulsefit/gymhub/services/auth"
	"github.com/pulsefit/gymhub/services/logging"
	"github.com/pulsefit/gymhub/services/registration"
	"github.com/pulsefit/gymhub/services/user"
	"github.com/pulsefit/gymhub/session"
	"go.uber.org/zap"
)

type Handlers struct {
	cfg          *config.Config
	logger       *logging.Service
	registration *registration.Service
	auth         *auth.Service
	users        user.Store
	limiter      ratelimit.Store
}

func New(cfg *config.Config, logger *logging.Service, reg *registration.Service, authSvc *auth.Service, users user.Store, limiter ratelimit.Store) *Handlers {
	return &Handlers{
		cfg:          cfg,
		logger:       logger,
		registration: reg,
		auth:         authSvc,
		users:        users,
		limiter:      limiter,
	}
}

func (h *Handlers) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Landing)

	e.GET("/register", h.ShowRegister)
	e.POST("/register", h.SubmitRegister, h.limit("registration_submit", 10, time.Hour))

	e.GET("/verify-otp", h.ShowVerifyOTP)
	e.POST("/verify-otp", h.SubmitVerifyOTP, h.limit("otp_verify", 15, time.Hour))

	e.GET("/login", h.ShowLogin)
	e.POST("/login", h.SubmitLogin, h.limit("login", 10, 15*time.Minute))
	e.POST("/logout", h.Logout)

	e.GET("/forgot-password", h.ShowForgotPassword)
	e.POST("/forgot-password", h.SubmitForgotPassword, h.limit("password_reset", 5, time.Hour))

	e.GET("/reset-password", h.ShowResetPassword)
	e.POST("/reset-password", h.SubmitResetPassword)

	e.GET("/dashboard", h.Dashboard, session.RequireAuthWeb("/login"))

	e.GET("/sessions", h.Sessions, session.RequireAuthWeb("/login"))
	e.POST("/sessions/revoke", h.RevokeSession, session.RequireAuthWeb("/login"))
	e.POST("/sessions/revoke-others", h.RevokeOtherSessions, session.RequireAuthWeb("/login"))
}

func (h *Handlers) limit(action string, maxAttempts int, window time.Duration) echo.MiddlewareFunc {
	return ratelimit.Middleware(ratelimit.Config{
		Store:       h.limiter,
		Action:      action,
		MaxAttempts: maxAttempts,
		Window:      window,
		FailOpen:    h.cfg.RateLimit.FailOpen,
		Logger:      h.logger,
		OnLimitReached: func(c echo.Context) error {
			session.SetFlashError(c, "Too many attempts. Please try again later.")
			return c.Redirect(http.StatusFound, c.Request().URL.Path)
		},
	})
}

// render assembles the shared view data every page template expects.
func (h *Handlers) render(c echo.Context, status int, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	data["AppName"] = h.cfg.App.Name
	data["CSRFToken"] = csrf.GetToken(c)
	data["Flash"] = session.GetFlash(c)
	data["Authenticated"] = session.IsAuthenticated(c)
	return c.Render(status, name, data)
}

// fail logs an infrastructure error and sends the user back with a generic
// message; internals never reach the page.
func (h *Handlers) fail(c echo.Context, redirectTo string, err error) error {
	h.logger.Error("request failed", zap.Error(err), zap.String("path", c.Request().URL.Path))
	session.SetFlashError(c, "Something went wrong. Please try again later.")
	return c.Redirect(http.StatusFound, redirectTo)
}
