package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pulsefit/gymhub/session"
)

func currentSessionToken(c echo.Context) string {
	manager := session.GetManager(c)
	if manager == nil {
		return ""
	}
	return manager.Token(c.Request().Context())
}

// Sessions lists the signed-in devices for the current account.
func (h *Handlers) Sessions(c echo.Context) error {
	svc := session.GetSessionService(c)
	if svc == nil {
		return c.Redirect(http.StatusFound, "/dashboard")
	}

	sessions, err := svc.GetUserSessions(session.GetUserID(c), currentSessionToken(c))
	if err != nil {
		return h.fail(c, "/dashboard", err)
	}

	return h.render(c, http.StatusOK, "sessions", map[string]any{
		"Sessions": sessions,
	})
}

func (h *Handlers) RevokeSession(c echo.Context) error {
	svc := session.GetSessionService(c)
	if svc == nil {
		return c.Redirect(http.StatusFound, "/dashboard")
	}

	sessionID, err := strconv.ParseUint(c.FormValue("session_id"), 10, 64)
	if err != nil {
		session.SetFlashError(c, "Unknown session.")
		return c.Redirect(http.StatusFound, "/sessions")
	}

	if err := svc.RevokeSession(session.GetUserID(c), uint(sessionID)); err != nil {
		session.SetFlashError(c, "Could not revoke that session.")
		return c.Redirect(http.StatusFound, "/sessions")
	}

	session.SetFlashSuccess(c, "Session revoked.")
	return c.Redirect(http.StatusFound, "/sessions")
}

func (h *Handlers) RevokeOtherSessions(c echo.Context) error {
	svc := session.GetSessionService(c)
	if svc == nil {
		return c.Redirect(http.StatusFound, "/dashboard")
	}

	if err := svc.RevokeAllOtherSessions(session.GetUserID(c), currentSessionToken(c)); err != nil {
		return h.fail(c, "/sessions", err)
	}

	session.SetFlashSuccess(c, "All other sessions have been signed out.")
	return c.Redirect(http.StatusFound, "/sessions")
}
