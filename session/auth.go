package session

import (
	"time"

	"github.com/labstack/echo/v4"
)

const (
	UserIDKey        = "_user_id"
	AuthenticatedKey = "_authenticated"
	PendingEmailKey  = "_pending_email"
)

func Login(c echo.Context, userID uint) {
	manager := GetManager(c)
	if manager == nil {
		return
	}
	ctx := c.Request().Context()

	// rotate the session id on privilege change; this also assigns the token
	// a fresh session needs before it can be tracked
	_ = manager.RenewToken(ctx)

	manager.Put(ctx, UserIDKey, userID)
	manager.Put(ctx, AuthenticatedKey, true)

	if service := GetSessionService(c); service != nil {
		token := manager.Token(ctx)
		if token != "" && userID > 0 {
			ipAddress := c.RealIP()
			userAgent := c.Request().UserAgent()
			expiresAt := time.Now().Add(manager.config.MaxAge)

			_ = service.TrackSession(userID, token, ipAddress, userAgent, expiresAt)
		}
	}
}

func Logout(c echo.Context) {
	manager := GetManager(c)
	if manager == nil {
		return
	}
	ctx := c.Request().Context()

	if service := GetSessionService(c); service != nil {
		if token := manager.Token(ctx); token != "" {
			_ = service.RemoveSessionByToken(token)
		}
	}

	manager.Remove(ctx, UserIDKey)
	manager.Remove(ctx, AuthenticatedKey)
	_ = manager.Destroy(ctx)
}

func GetUserID(c echo.Context) uint {
	manager := GetManager(c)
	if manager == nil {
		return 0
	}
	ctx := c.Request().Context()

	switch v := manager.Get(ctx, UserIDKey).(type) {
	case uint:
		return v
	case int:
		return uint(v)
	case int64:
		return uint(v)
	case float64:
		return uint(v)
	default:
		return 0
	}
}

func IsAuthenticated(c echo.Context) bool {
	manager := GetManager(c)
	if manager == nil {
		return false
	}
	ctx := c.Request().Context()
	return manager.GetBool(ctx, AuthenticatedKey)
}

func RequireAuthWeb(loginURL string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAuthenticated(c) {
				return c.Redirect(302, loginURL)
			}
			return next(c)
		}
	}
}

// SetPendingEmail carries the registration email between the submit and
// verify steps so the OTP form never has to ask for it.
func SetPendingEmail(c echo.Context, email string) {
	manager := GetManager(c)
	if manager == nil {
		return
	}
	manager.Put(c.Request().Context(), PendingEmailKey, email)
}

func GetPendingEmail(c echo.Context) string {
	manager := GetManager(c)
	if manager == nil {
		return ""
	}
	return manager.GetString(c.Request().Context(), PendingEmailKey)
}

func ClearPendingEmail(c echo.Context) {
	manager := GetManager(c)
	if manager == nil {
		return
	}
	manager.Remove(c.Request().Context(), PendingEmailKey)
}
