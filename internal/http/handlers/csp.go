package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CSP attaches a Content-Security-Policy header with a fresh per-response
// nonce, plus no-store cache headers on the auth and dashboard pages.
func CSP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		nonce := newNonce()
		c.Locals("cspNonce", nonce)

		directives := []string{
			"default-src 'self'",
			"script-src 'self' 'nonce-" + nonce + "'",
			"style-src 'self'",
			"img-src 'self' data: https:",
			"font-src 'self' data:",
			"connect-src 'self'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
			"form-action 'self'",
			"object-src 'none'",
		}
		c.Set(fiber.HeaderContentSecurityPolicy, strings.Join(directives, "; "))
		c.Set("X-Nonce", nonce)

		p := c.Path()
		if strings.HasPrefix(p, "/login") || strings.HasPrefix(p, "/dashboard") {
			c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate, proxy-revalidate, max-age=0")
			c.Set("Pragma", "no-cache")
			c.Set("Expires", "0")
		}
		return c.Next()
	}
}

func newNonce() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}
