package handlers

import (
	"crypto/subtle"

	applog "modiesel/internal/log"
	"modiesel/internal/session"

	"github.com/gofiber/fiber/v2"
)

// authCookie mirrors the session token so the admission check can run on the
// request alone; the gate remains the authority on whether it is still live.
const authCookie = "auth-storage"

// RequireSession denies protected areas to anonymous visitors.
func RequireSession(gate *session.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := c.Cookies(authCookie)
		if tok == "" || !tokenMatches(tok, gate.Token()) {
			applog.Security(c, "access.denied", map[string]any{"path": c.Path()})
			return c.Redirect("/login")
		}
		if s, ok := gate.Current(); ok {
			c.Locals("user", s.User)
			c.Locals("actor", s.User.Email)
		}
		return c.Next()
	}
}

// RedirectAuthenticated keeps a logged-in operator off the login page.
func RedirectAuthenticated(gate *session.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := c.Cookies(authCookie); tok != "" && tokenMatches(tok, gate.Token()) {
			return c.Redirect("/dashboard")
		}
		return c.Next()
	}
}

// tokenMatches compares the cookie against the live session token in
// constant time.
func tokenMatches(cookie, live string) bool {
	if live == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(live)) == 1
}
