package services

import (
	"campus_portal/internal/auth"
	"campus_portal/internal/cart"
	"campus_portal/internal/clients"
	"campus_portal/internal/pending"
)

// Portal binds the shared pieces to one client on demand.
type Portal struct {
	Authenticator *auth.Authenticator
	TaxRate       float64
	Pending       pending.Options
}

func (p *Portal) Gate(c *clients.Client) *auth.Gate {
	return p.Authenticator.Gate(c.Scopes, c.Bus)
}

func (p *Portal) Cart(c *clients.Client) *cart.Engine {
	return cart.NewEngine(c.Scopes.Local, c.Bus, p.TaxRate)
}

// SubmitResult is either a login redirect or the created record.
type SubmitResult[T any] struct {
	Redirect *auth.Redirect `json:"redirect,omitempty"`
	Order    *T             `json:"order,omitempty"`
}

// ResumeOutcome describes what happened to a pending action after login.
type ResumeOutcome struct {
	Context  auth.ServiceContext `json:"context,omitempty"`
	Mode     pending.Mode        `json:"mode,omitempty"`
	Replayed bool                `json:"replayed"`
	Prefill  *pending.RepairForm `json:"prefill,omitempty"`
	Result   interface{}         `json:"result,omitempty"`
	Error    string              `json:"error,omitempty"`
	Redirect string              `json:"redirect"`
}
