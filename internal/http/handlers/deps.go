package handlers

import (
	"modiesel/internal/api"
	"modiesel/internal/sale"
	"modiesel/internal/session"
)

type Deps struct {
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Resources *ResourceHandler
	Sales     *SaleHandler
}

func NewDeps(cl *api.Client, gate *session.Gate, flows *sale.Registry) *Deps {
	return &Deps{
		Auth:      &AuthHandler{API: cl, Gate: gate, Flows: flows},
		Dashboard: &DashboardHandler{API: cl},
		Resources: NewResourceHandler(cl),
		Sales:     &SaleHandler{API: cl, Flows: flows},
	}
}
