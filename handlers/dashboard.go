package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pulsefit/gymhub/services/user"
	"github.com/pulsefit/gymhub/session"
)

func (h *Handlers) Landing(c echo.Context) error {
	return h.render(c, http.StatusOK, "landing", nil)
}

func (h *Handlers) Dashboard(c echo.Context) error {
	userID := session.GetUserID(c)

	u, err := h.users.FindByID(userID)
	if err != nil {
		session.Logout(c)
		session.SetFlashError(c, "Please sign in again.")
		return c.Redirect(http.StatusFound, "/login")
	}

	data := map[string]any{
		"User": u,
	}

	switch u.Role {
	case user.RoleMember:
		return h.render(c, http.StatusOK, "dashboard_member", data)
	case user.RoleTrainer:
		return h.render(c, http.StatusOK, "dashboard_trainer", data)
	case user.RoleAdmin:
		return h.render(c, http.StatusOK, "dashboard_admin", data)
	case user.RoleEquipmentManager:
		return h.render(c, http.StatusOK, "dashboard_equipment", data)
	default:
		h.logger.Errorf("user %d has unknown role %q", u.ID, u.Role)
		session.Logout(c)
		return c.Redirect(http.StatusFound, "/")
	}
}
