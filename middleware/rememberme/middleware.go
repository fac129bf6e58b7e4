package rememberme

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pulsefit/gymhub/services/auth"
	"github.com/pulsefit/gymhub/services/logging"
	"github.com/pulsefit/gymhub/services/user"
	"github.com/pulsefit/gymhub/session"
	"go.uber.org/zap"
)

const CookieName = "remember_me"

type Config struct {
	AuthService *auth.Service
	Users       user.Store
	Logger      *logging.Service
}

// Middleware restores a login from the remember-me cookie. The token rotates
// on every successful use.
func Middleware(cfg Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if session.IsAuthenticated(c) {
				return next(c)
			}

			if cfg.AuthService == nil || !cfg.AuthService.IsRememberMeEnabled() {
				return next(c)
			}

			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			rememberToken, err := cfg.AuthService.ValidateRememberToken(cookie.Value)
			if err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Debug("remember token validation failed", zap.Error(err))
				}
				clearCookie(c, cfg.AuthService)
				return next(c)
			}

			if cfg.Users != nil {
				if _, err := cfg.Users.FindByID(rememberToken.UserID); err != nil {
					if cfg.Logger != nil {
						cfg.Logger.Warn("remember token user not found",
							zap.Uint("user_id", rememberToken.UserID),
							zap.Error(err))
					}
					clearCookie(c, cfg.AuthService)
					return next(c)
				}
			}

			session.Login(c, rememberToken.UserID)

			if newToken, err := cfg.AuthService.RotateRememberToken(cookie.Value); err == nil {
				SetCookie(c, cfg.AuthService, newToken.Token, newToken.ExpiresAt)
			} else if cfg.Logger != nil {
				cfg.Logger.Warn("failed to rotate remember token", zap.Error(err))
			}

			return next(c)
		}
	}
}

func SetCookie(c echo.Context, authService *auth.Service, token string, expiresAt time.Time) {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   authService.RememberMeCookieSecure(),
		SameSite: parseSameSite(authService.RememberMeCookieSameSite()),
	}
	c.SetCookie(cookie)
}

func ClearCookie(c echo.Context, authService *auth.Service) {
	clearCookie(c, authService)
}

func clearCookie(c echo.Context, authService *auth.Service) {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   authService.RememberMeCookieSecure(),
		SameSite: parseSameSite(authService.RememberMeCookieSameSite()),
	}
	c.SetCookie(cookie)
}

func parseSameSite(s string) http.SameSite {
	switch s {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
