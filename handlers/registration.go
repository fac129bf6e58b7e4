package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pulsefit/gymhub/services/registration"
	"github.com/pulsefit/gymhub/services/user"
	"github.com/pulsefit/gymhub/session"
)

func (h *Handlers) ShowRegister(c echo.Context) error {
	return h.render(c, http.StatusOK, "register", map[string]any{
		"Roles": []user.Role{user.RoleMember, user.RoleTrainer, user.RoleEquipmentManager},
	})
}

func (h *Handlers) SubmitRegister(c echo.Context) error {
	role, err := user.ParseRole(c.FormValue("role"))
	if err != nil {
		session.SetFlashError(c, "Please choose a valid role.")
		return c.Redirect(http.StatusFound, "/register")
	}

	in := registration.SubmitInput{
		Name:              c.FormValue("name"),
		Email:             c.FormValue("email"),
		Password:          c.FormValue("password"),
		ConfirmPassword:   c.FormValue("confirm_password"),
		Role:              role,
		ExperienceLevel:   c.FormValue("experience_level"),
		FitnessGoals:      c.FormValue("fitness_goals"),
		PreferredRoutines: c.FormValue("preferred_routines"),
	}

	p, err := h.registration.Submit(in)
	if err != nil {
		var validationErr *registration.ValidationError
		var notificationErr *registration.NotificationError
		switch {
		case errors.As(err, &validationErr):
			session.SetFlashError(c, validationErr.Error())
		case errors.Is(err, registration.ErrEmailTaken):
			session.SetFlashError(c, "An account with this email already exists.")
		case errors.As(err, &notificationErr):
			session.SetFlashError(c, "We could not send your verification code. Please try again.")
		default:
			return h.fail(c, "/register", err)
		}
		return c.Redirect(http.StatusFound, "/register")
	}

	session.SetPendingEmail(c, p.Email)
	session.SetFlashSuccess(c, "We emailed you a verification code.")
	return c.Redirect(http.StatusFound, "/verify-otp")
}

func (h *Handlers) ShowVerifyOTP(c echo.Context) error {
	email := session.GetPendingEmail(c)
	if email == "" {
		session.SetFlashError(c, "Please register first.")
		return c.Redirect(http.StatusFound, "/register")
	}

	if c.QueryParam("resend") == "1" {
		return h.resendOTP(c, email)
	}

	return h.render(c, http.StatusOK, "verify_otp", map[string]any{
		"Email": email,
	})
}

func (h *Handlers) resendOTP(c echo.Context, email string) error {
	err := h.registration.Resend(email)
	if err != nil {
		var cooldownErr *registration.CooldownError
		var notificationErr *registration.NotificationError
		switch {
		case errors.As(err, &cooldownErr):
			session.SetFlashError(c, cooldownErr.Error())
		case errors.Is(err, registration.ErrExpiredOrMissing):
			session.ClearPendingEmail(c)
			session.SetFlashError(c, "Your registration has expired. Please register again.")
			return c.Redirect(http.StatusFound, "/register")
		case errors.As(err, &notificationErr):
			session.SetFlashError(c, "We could not send your verification code. Please try again.")
		default:
			return h.fail(c, "/verify-otp", err)
		}
		return c.Redirect(http.StatusFound, "/verify-otp")
	}

	session.SetFlashSuccess(c, "A new verification code is on its way.")
	return c.Redirect(http.StatusFound, "/verify-otp")
}

func (h *Handlers) SubmitVerifyOTP(c echo.Context) error {
	email := session.GetPendingEmail(c)
	if email == "" {
		session.SetFlashError(c, "Please register first.")
		return c.Redirect(http.StatusFound, "/register")
	}

	u, err := h.registration.VerifyOTP(email, c.FormValue("otp"))
	if err != nil {
		var invalidErr *registration.InvalidCodeError
		switch {
		case errors.As(err, &invalidErr):
			session.SetFlashError(c, invalidErr.Error())
			return c.Redirect(http.StatusFound, "/verify-otp")
		case errors.Is(err, registration.ErrTooManyAttempts):
			session.ClearPendingEmail(c)
			session.SetFlashError(c, "Too many incorrect codes. Please register again.")
			return c.Redirect(http.StatusFound, "/register")
		case errors.Is(err, registration.ErrExpiredOrMissing):
			session.ClearPendingEmail(c)
			session.SetFlashError(c, "Your code has expired. Please register again.")
			return c.Redirect(http.StatusFound, "/register")
		default:
			return h.fail(c, "/verify-otp", err)
		}
	}

	session.ClearPendingEmail(c)

	if u.Status == user.StatusPendingAdminApproval {
		session.SetFlashInfo(c, "Email verified. Your account is awaiting admin approval.")
		return c.Redirect(http.StatusFound, "/login")
	}

	session.Login(c, u.ID)
	session.SetFlashSuccess(c, "Welcome to "+h.cfg.App.Name+"!")
	return c.Redirect(http.StatusFound, "/dashboard")
}
