package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "modiesel/internal/log"
	"modiesel/internal/session"
)

// NewApp assembles the Fiber app: middleware stack, routes, error handling.
// main wires the dependencies and listens; tests drive the same app via
// app.Test.
func NewApp(deps *Deps, gate *session.Gate, views fiber.Views) *fiber.App {
	app := fiber.New(fiber.Config{
		Views: views,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Algo salió mal. Inténtalo de nuevo.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Algo salió mal. Inténtalo de nuevo.")
			}
			return nil
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(CSP())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		// JSON posts can't be forged by a cross-site form; the token rides
		// in the form field for everything else.
		Next: func(c *fiber.Ctx) bool {
			return c.Is("json")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "comprobación de seguridad fallida"})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Routes ----------
	app.Static("/static", "./web/static")

	app.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/dashboard") })

	// Login throttled separately from the global limiter
	app.Get("/login", RedirectAuthenticated(gate), deps.Auth.LoginForm)
	app.Post("/login", RedirectAuthenticated(gate), limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{
				"Err":       "Demasiados intentos. Inténtalo más tarde.",
				"CSRFToken": c.Locals("CSRFToken"),
			})
		},
	}), deps.Auth.Login)
	app.Post("/logout", deps.Auth.Logout)

	dash := app.Group("/dashboard", RequireSession(gate))
	dash.Get("/", deps.Dashboard.Home)

	// Sales: list, detail, and the compose flow
	dash.Get("/ventas", deps.Sales.List)
	dash.Get("/ventas/nueva", deps.Sales.ComposePage)
	dash.Post("/ventas/compose", deps.Sales.OpenFlow)
	dash.Get("/ventas/compose/:flow", deps.Sales.ViewFlow)
	dash.Post("/ventas/compose/:flow/client", deps.Sales.SetClient)
	dash.Post("/ventas/compose/:flow/lines", deps.Sales.AddLine)
	dash.Post("/ventas/compose/:flow/lines/:index/delete", deps.Sales.RemoveLine)
	dash.Post("/ventas/compose/:flow/submit", deps.Sales.Submit)
	dash.Post("/ventas/compose/:flow/cancel", deps.Sales.Cancel)
	dash.Get("/ventas/:id", deps.Sales.Detail)

	// Generic CRUD sections proxied to the backend
	dash.Get("/:section", deps.Resources.List)
	dash.Post("/:section", deps.Resources.Create)
	dash.Put("/:section/:id", deps.Resources.Update)
	dash.Post("/:section/:id/delete", deps.Resources.Delete)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Página no encontrada"})
	})

	return app
}
