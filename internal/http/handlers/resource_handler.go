package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"modiesel/internal/api"
	applog "modiesel/internal/log"
	"modiesel/internal/validate"
)

// section describes one dashboard list page backed by a remote collection.
// Rows projects the typed API response into table cells; the first cell is
// always the resource id so the template can build delete forms.
type section struct {
	Title   string
	Path    string
	Headers []string
	Rows    func(ctx context.Context, cl *api.Client) ([][]string, error)
}

type ResourceHandler struct {
	API      *api.Client
	sections map[string]section
}

func NewResourceHandler(cl *api.Client) *ResourceHandler {
	h := &ResourceHandler{API: cl}
	h.sections = map[string]section{
		"clientes": {
			Title:   "Clientes",
			Path:    "/clientes",
			Headers: []string{"ID", "RUC", "Razón Social", "Correo", "Teléfono", "Estado"},
			Rows: func(ctx context.Context, cl *api.Client) ([][]string, error) {
				items, err := cl.Clients(ctx)
				if err != nil {
					return nil, err
				}
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					state := "Inactivo"
					if it.Active {
						state = "Activo"
					}
					rows = append(rows, []string{itoa(it.ID), it.RUC, it.BusinessName, it.Email, it.Phone, state})
				}
				return rows, nil
			},
		},
		"vehiculos": {
			Title:   "Vehículos",
			Path:    "/vehiculos",
			Headers: []string{"ID", "Placa", "Marca", "Modelo", "Año", "Cliente"},
			Rows: func(ctx context.Context, cl *api.Client) ([][]string, error) {
				items, err := cl.Vehicles(ctx)
				if err != nil {
					return nil, err
				}
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{itoa(it.ID), it.Plate, it.Make, it.Model, itoa(it.Year), optID(it.ClientID)})
				}
				return rows, nil
			},
		},
		"proveedores": {
			Title:   "Proveedores",
			Path:    "/proveedores",
			Headers: []string{"ID", "RUC", "Nombre", "Correo", "Teléfono", "Dirección"},
			Rows: func(ctx context.Context, cl *api.Client) ([][]string, error) {
				items, err := cl.Suppliers(ctx)
				if err != nil {
					return nil, err
				}
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{itoa(it.ID), it.RUC, it.Name, it.Email, it.Phone, it.Address})
				}
				return rows, nil
			},
		},
		"productos": {
			Title:   "Productos",
			Path:    "/productos",
			Headers: []string{"ID", "Nombre", "Marca", "Precio", "Stock", "Proveedor"},
			Rows: func(ctx context.Context, cl *api.Client) ([][]string, error) {
				items, err := cl.Products(ctx)
				if err != nil {
					return nil, err
				}
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{itoa(it.ID), it.Name, it.Make, money(it.UnitPrice), itoa(it.Stock), optID(it.SupplierID)})
				}
				return rows, nil
			},
		},
		"repuestos": {
			Title:   "Repuestos",
			Path:    "/repuestos",
			Headers: []string{"ID", "Nombre", "Marca", "Precio", "Stock", "Proveedor", "Vehículo"},
			Rows: func(ctx context.Context, cl *api.Client) ([][]string, error) {
				items, err := cl.SpareParts(ctx)
				if err != nil {
					return nil, err
				}
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{itoa(it.ID), it.Name, it.Make, money(it.UnitPrice), itoa(it.Stock), optID(it.SupplierID), optID(it.VehicleID)})
				}
				return rows, nil
			},
		},
		"inventario": {
			Title:   "Inventario",
			Path:    "/inventario",
			Headers: []string{"ID", "Código", "Nombre", "Cantidad", "Precio Unitario", "Movimiento", "Descripción"},
			Rows: func(ctx context.Context, cl *api.Client) ([][]string, error) {
				items, err := cl.Movements(ctx)
				if err != nil {
					return nil, err
				}
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{itoa(it.ID), it.Code, it.Name, itoa(it.Quantity), money(it.UnitPrice), it.Kind, it.Description})
				}
				return rows, nil
			},
		},
		"imagenes": {
			Title:   "Imágenes",
			Path:    "/imagenes",
			Headers: []string{"ID", "Nombre", "URL", "Tipo", "Fecha"},
			Rows: func(ctx context.Context, cl *api.Client) ([][]string, error) {
				items, err := cl.Images(ctx)
				if err != nil {
					return nil, err
				}
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{itoa(it.ID), it.Name, it.URL, it.Kind, it.UploadedAt})
				}
				return rows, nil
			},
		},
		"usuarios": {
			Title:   "Usuarios",
			Path:    "/usuarios",
			Headers: []string{"ID", "Nombre", "Correo", "Rol"},
			Rows: func(ctx context.Context, cl *api.Client) ([][]string, error) {
				items, err := cl.Users(ctx)
				if err != nil {
					return nil, err
				}
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{itoa(it.ID), it.Name, it.Email, it.Role})
				}
				return rows, nil
			},
		},
	}
	return h
}

func (h *ResourceHandler) lookup(c *fiber.Ctx) (section, bool) {
	s, ok := h.sections[c.Params("section")]
	return s, ok
}

func (h *ResourceHandler) List(c *fiber.Ctx) error {
	s, ok := h.lookup(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Sección no encontrada"})
	}
	rows, err := s.Rows(c.Context(), h.API)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect("/login")
		}
		applog.Error(c, "resource.list", err, map[string]any{"section": c.Params("section")})
		return c.Status(fiber.StatusBadGateway).Render("notfound", fiber.Map{"Message": err.Error()})
	}
	return render(c, "resource", fiber.Map{
		"Title":   s.Title,
		"Section": c.Params("section"),
		"Headers": s.Headers,
		"Rows":    rows,
	})
}

func (h *ResourceHandler) Delete(c *fiber.Ctx) error {
	s, ok := h.lookup(c)
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid id")
	}
	if err := h.API.Delete(c.Context(), fmt.Sprintf("%s/%d", s.Path, id)); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return c.Redirect("/login")
		}
		applog.Error(c, "resource.delete", err, map[string]any{"section": c.Params("section"), "id": id})
		return c.Status(fiber.StatusBadGateway).SendString(err.Error())
	}
	applog.Audit(c, "resource.delete", map[string]any{"section": c.Params("section"), "id": id})
	return c.Redirect("/dashboard/" + c.Params("section"))
}

// Create and Update forward the JSON body untouched; the backend owns field
// validation for every CRUD section.

func (h *ResourceHandler) Create(c *fiber.Ctx) error {
	s, ok := h.lookup(c)
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	body, err := rawJSON(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid JSON body")
	}
	var created json.RawMessage
	if err := h.API.Post(c.Context(), s.Path, body, &created); err != nil {
		return h.passthroughErr(c, "resource.create", err)
	}
	applog.Audit(c, "resource.create", map[string]any{"section": c.Params("section")})
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusCreated).Send(created)
}

func (h *ResourceHandler) Update(c *fiber.Ctx) error {
	s, ok := h.lookup(c)
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid id")
	}
	body, err := rawJSON(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid JSON body")
	}
	var updated json.RawMessage
	if err := h.API.Put(c.Context(), fmt.Sprintf("%s/%d", s.Path, id), body, &updated); err != nil {
		return h.passthroughErr(c, "resource.update", err)
	}
	applog.Audit(c, "resource.update", map[string]any{"section": c.Params("section"), "id": id})
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(updated)
}

func (h *ResourceHandler) passthroughErr(c *fiber.Ctx, action string, err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "sesión expirada"})
	}
	applog.Error(c, action, err, map[string]any{"section": c.Params("section")})
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Status).JSON(fiber.Map{"error": apiErr.Error()})
	}
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
}

func rawJSON(c *fiber.Ctx) (json.RawMessage, error) {
	body := c.Body()
	if !json.Valid(body) {
		return nil, errors.New("invalid json")
	}
	return json.RawMessage(body), nil
}

func itoa(n int) string { return strconv.Itoa(n) }

func money(v float64) string { return fmt.Sprintf("S/ %.2f", v) }

func optID(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}
