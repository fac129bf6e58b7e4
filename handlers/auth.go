package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pulsefit/gymhub/middleware/rememberme"
	"github.com/pulsefit/gymhub/services/auth"
	"github.com/pulsefit/gymhub/session"
)

func (h *Handlers) ShowLogin(c echo.Context) error {
	if session.IsAuthenticated(c) {
		return c.Redirect(http.StatusFound, "/dashboard")
	}
	return h.render(c, http.StatusOK, "login", nil)
}

func (h *Handlers) SubmitLogin(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	u, err := h.auth.Authenticate(email, password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			session.SetFlashError(c, "Invalid email or password.")
		case errors.Is(err, auth.ErrAccountPendingApproval):
			session.SetFlashInfo(c, "Your account is awaiting admin approval.")
		default:
			return h.fail(c, "/login", err)
		}
		return c.Redirect(http.StatusFound, "/login")
	}

	session.Login(c, u.ID)

	if c.FormValue("remember_me") == "1" && h.auth.IsRememberMeEnabled() {
		if token, err := h.auth.CreateRememberToken(u.ID); err == nil {
			rememberme.SetCookie(c, h.auth, token.Token, token.ExpiresAt)
		} else {
			h.logger.Errorf("failed to create remember token: %v", err)
		}
	}

	return c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handlers) Logout(c echo.Context) error {
	if userID := session.GetUserID(c); userID > 0 && h.auth.IsRememberMeEnabled() {
		if err := h.auth.InvalidateRememberTokens(userID); err != nil {
			h.logger.Errorf("failed to invalidate remember tokens: %v", err)
		}
	}
	rememberme.ClearCookie(c, h.auth)
	session.Logout(c)
	return c.Redirect(http.StatusFound, "/")
}
