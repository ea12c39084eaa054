package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"modiesel/internal/api"
	"modiesel/internal/domain"
	applog "modiesel/internal/log"
	"modiesel/internal/sale"
	"modiesel/internal/validate"
)

type SaleHandler struct {
	API   *api.Client
	Flows *sale.Registry
}

// List renders the sales table.
func (h *SaleHandler) List(c *fiber.Ctx) error {
	sales, err := h.API.Sales(c.Context())
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect("/login")
		}
		applog.Error(c, "sales.list", err, nil)
		return c.Status(fiber.StatusBadGateway).Render("notfound", fiber.Map{"Message": err.Error()})
	}
	return render(c, "ventas", fiber.Map{"Sales": sales})
}

// Detail renders one sale with its lines and invoice.
func (h *SaleHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Venta no encontrada"})
	}
	s, err := h.API.Sale(c.Context(), id)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect("/login")
		}
		applog.Error(c, "sales.detail", err, map[string]any{"id": id})
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Venta no encontrada"})
	}
	return render(c, "venta", fiber.Map{"Sale": s})
}

// OpenFlow starts a compose flow: one catalog load, then the flow id and
// catalog go back to the page. If either catalog fetch failed the flow does
// not open at all.
func (h *SaleHandler) OpenFlow(c *fiber.Ctx) error {
	actorID := 0
	if u, ok := c.Locals("user").(domain.User); ok {
		actorID = u.ID
	}
	id, composer, err := h.Flows.Open(c.Context(), h.API, h.API, actorID)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "sesión expirada"})
		}
		applog.Error(c, "sales.compose.open", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	applog.Info(c, "sales.compose.open", map[string]any{"flow": id})
	catalog := composer.Catalog()
	return c.JSON(fiber.Map{
		"flowId":    id,
		"clientes":  catalog.Clients,
		"productos": catalog.Products,
	})
}

// ComposePage renders the compose view shell; the page opens its flow via
// OpenFlow.
func (h *SaleHandler) ComposePage(c *fiber.Ctx) error {
	return render(c, "venta_nueva", nil)
}

func (h *SaleHandler) flow(c *fiber.Ctx) (*sale.Composer, error) {
	composer, ok := h.Flows.Get(c.Params("flow"))
	if !ok {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "flujo de venta no encontrado"})
	}
	return composer, nil
}

func (h *SaleHandler) SetClient(c *fiber.Ctx) error {
	composer, err := h.flow(c)
	if composer == nil {
		return err
	}
	id, ok := validate.ID(c.FormValue("clienteId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cliente inválido"})
	}
	if err := composer.SetClient(id); err != nil {
		return h.composeErr(c, err)
	}
	return c.JSON(composer.View())
}

func (h *SaleHandler) AddLine(c *fiber.Ctx) error {
	composer, err := h.flow(c)
	if composer == nil {
		return err
	}
	productID, ok := validate.ID(c.FormValue("productoId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "producto inválido"})
	}
	qty := validate.Qty(c.FormValue("cantidad"))
	if err := composer.AddLine(productID, qty); err != nil {
		return h.composeErr(c, err)
	}
	return c.JSON(composer.View())
}

func (h *SaleHandler) RemoveLine(c *fiber.Ctx) error {
	composer, err := h.flow(c)
	if composer == nil {
		return err
	}
	index, ok := validate.Index(c.Params("index"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "índice inválido"})
	}
	if err := composer.RemoveLine(index); err != nil {
		return h.composeErr(c, err)
	}
	return c.JSON(composer.View())
}

func (h *SaleHandler) ViewFlow(c *fiber.Ctx) error {
	composer, err := h.flow(c)
	if composer == nil {
		return err
	}
	return c.JSON(composer.View())
}

func (h *SaleHandler) Submit(c *fiber.Ctx) error {
	composer, err := h.flow(c)
	if composer == nil {
		return err
	}
	conf, err := composer.Submit(c.Context())
	if err != nil {
		return h.composeErr(c, err)
	}
	h.Flows.Drop(c.Params("flow"))
	applog.Audit(c, "sales.compose.submit", map[string]any{
		"sale_id": conf.SaleID,
		"invoice": conf.Invoice,
		"total":   conf.Total,
	})
	return c.JSON(conf)
}

func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	h.Flows.Drop(c.Params("flow"))
	applog.Info(c, "sales.compose.cancel", map[string]any{"flow": c.Params("flow")})
	return c.SendStatus(fiber.StatusNoContent)
}

// composeErr maps the sale taxonomy onto HTTP statuses. Backend messages
// travel verbatim; validation failures keep the draft intact on the other
// side, so 4xx responses are retryable edits.
func (h *SaleHandler) composeErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "sesión expirada"})
	case errors.Is(err, sale.ErrFlowClosed):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, sale.ErrSubmitInFlight):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, sale.ErrUnknownProduct),
		errors.Is(err, sale.ErrInvalidQuantity),
		errors.Is(err, sale.ErrInsufficientStock),
		errors.Is(err, sale.ErrNoSuchLine),
		errors.Is(err, sale.ErrMissingClient),
		errors.Is(err, sale.ErrEmptyOrder):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	var subErr *sale.SubmissionError
	if errors.As(err, &subErr) {
		applog.Security(c, "sales.compose.rejected", map[string]any{"reason": subErr.Reason})
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": subErr.Error()})
	}
	applog.Error(c, "sales.compose", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
