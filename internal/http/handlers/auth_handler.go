package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"modiesel/internal/api"
	applog "modiesel/internal/log"
	"modiesel/internal/sale"
	"modiesel/internal/session"
	"modiesel/internal/validate"
)

type AuthHandler struct {
	API   *api.Client
	Gate  *session.Gate
	Flows *sale.Registry
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email, ok := validate.Email(c.FormValue("correo"))
	if !ok {
		applog.Security(c, "auth.login.fail", map[string]any{"reason": "bad_email_format"})
		c.Status(fiber.StatusUnauthorized)
		return render(c, "login", fiber.Map{"Err": "Credenciales inválidas"})
	}
	pass := c.FormValue("password")
	if !validate.Password(pass) {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		c.Status(fiber.StatusUnauthorized)
		return render(c, "login", fiber.Map{"Err": "Credenciales inválidas"})
	}

	token, user, err := h.API.Login(c.Context(), email, pass)
	if err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) {
			applog.Security(c, "auth.login.fail", map[string]any{"email": email})
			c.Status(fiber.StatusUnauthorized)
			return render(c, "login", fiber.Map{"Err": "Credenciales inválidas"})
		}
		applog.Error(c, "auth.login.backend", err, map[string]any{"email": email})
		c.Status(fiber.StatusBadGateway)
		return render(c, "login", fiber.Map{"Err": err.Error()})
	}

	if err := h.Gate.Establish(c.Context(), session.Session{Token: token, User: user}); err != nil {
		applog.Error(c, "auth.session.persist", err, nil)
		c.Status(fiber.StatusInternalServerError)
		return render(c, "login", fiber.Map{"Err": "No se pudo guardar la sesión"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
	applog.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/dashboard")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.Gate.Invalidate(c.Context())
	h.Flows.DropAll()
	c.Cookie(&fiber.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", nil)
	return c.Redirect("/login")
}
