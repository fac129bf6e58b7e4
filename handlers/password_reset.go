package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pulsefit/gymhub/services/auth"
	"github.com/pulsefit/gymhub/session"
)

const resetRequestedMessage = "If an account exists for that email, a reset link is on its way."

func (h *Handlers) ShowForgotPassword(c echo.Context) error {
	return h.render(c, http.StatusOK, "forgot_password", nil)
}

func (h *Handlers) SubmitForgotPassword(c echo.Context) error {
	email := c.FormValue("email")

	// the response is identical whether or not the account exists
	if err := h.auth.RequestPasswordReset(email); err != nil {
		h.logger.Errorf("password reset request failed: %v", err)
	}

	session.SetFlashInfo(c, resetRequestedMessage)
	return c.Redirect(http.StatusFound, "/forgot-password")
}

func (h *Handlers) ShowResetPassword(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		session.SetFlashError(c, "This reset link is invalid.")
		return c.Redirect(http.StatusFound, "/forgot-password")
	}

	return h.render(c, http.StatusOK, "reset_password", map[string]any{
		"Token": token,
	})
}

func (h *Handlers) SubmitResetPassword(c echo.Context) error {
	token := c.FormValue("token")
	newPassword := c.FormValue("password")
	confirmPassword := c.FormValue("confirm_password")

	err := h.auth.ResetPassword(token, newPassword, confirmPassword)
	if err != nil {
		var policyErr *auth.PasswordPolicyError
		switch {
		case errors.Is(err, auth.ErrResetTokenNotFound):
			session.SetFlashError(c, "This reset link is invalid or has already been used.")
			return c.Redirect(http.StatusFound, "/forgot-password")
		case errors.Is(err, auth.ErrResetTokenExpired):
			session.SetFlashError(c, "This reset link has expired. Please request a new one.")
			return c.Redirect(http.StatusFound, "/forgot-password")
		case errors.Is(err, auth.ErrPasswordMismatch):
			session.SetFlashError(c, "Passwords do not match.")
		case errors.As(err, &policyErr):
			session.SetFlashError(c, policyErr.Error())
		default:
			// storage and hashing failures stay server-side
			return h.fail(c, "/reset-password?token="+token, err)
		}
		return c.Redirect(http.StatusFound, "/reset-password?token="+token)
	}

	session.SetFlashSuccess(c, "Your password has been reset. Please sign in.")
	return c.Redirect(http.StatusFound, "/login")
}
