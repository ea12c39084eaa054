package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"modiesel/internal/api"
	"modiesel/internal/domain"
	applog "modiesel/internal/log"
)

type DashboardHandler struct {
	API *api.Client
}

type dashboardStats struct {
	Clients    int
	Vehicles   int
	Products   int
	Sales      int
	SpareParts int
	Suppliers  int
	Movements  int
	SalesMonth int
}

// Home renders the overview cards. Each count degrades to zero on a fetch
// error so one broken endpoint does not blank the whole page; a 401 on any
// of them has already torn the session down and the redirect happens on the
// next navigation.
func (h *DashboardHandler) Home(c *fiber.Ctx) error {
	ctx := c.Context()
	var stats dashboardStats

	if clients, err := h.API.Clients(ctx); err == nil {
		stats.Clients = len(clients)
	} else {
		applog.Error(c, "dashboard.clients", err, nil)
	}
	if vehicles, err := h.API.Vehicles(ctx); err == nil {
		stats.Vehicles = len(vehicles)
	} else {
		applog.Error(c, "dashboard.vehicles", err, nil)
	}
	if products, err := h.API.Products(ctx); err == nil {
		stats.Products = len(products)
	} else {
		applog.Error(c, "dashboard.products", err, nil)
	}
	if parts, err := h.API.SpareParts(ctx); err == nil {
		stats.SpareParts = len(parts)
	} else {
		applog.Error(c, "dashboard.spareparts", err, nil)
	}
	if suppliers, err := h.API.Suppliers(ctx); err == nil {
		stats.Suppliers = len(suppliers)
	} else {
		applog.Error(c, "dashboard.suppliers", err, nil)
	}
	if movements, err := h.API.Movements(ctx); err == nil {
		stats.Movements = len(movements)
	} else {
		applog.Error(c, "dashboard.movements", err, nil)
	}
	if sales, err := h.API.Sales(ctx); err == nil {
		stats.Sales = len(sales)
		stats.SalesMonth = salesThisMonth(sales, time.Now())
	} else {
		applog.Error(c, "dashboard.sales", err, nil)
	}

	return render(c, "dashboard", fiber.Map{"Stats": stats})
}

// salesThisMonth counts sales dated in the same month AND year as now.
func salesThisMonth(sales []domain.Sale, now time.Time) int {
	n := 0
	for _, s := range sales {
		t, err := parseSaleDate(s.Date)
		if err != nil {
			continue
		}
		if t.Month() == now.Month() && t.Year() == now.Year() {
			n++
		}
	}
	return n
}

func parseSaleDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
