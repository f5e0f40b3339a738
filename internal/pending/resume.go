package pending

import (
	"context"

	"campus_portal/internal/auth"
	"campus_portal/internal/storage"
)

type Mode string

const (
	// ModePrefill hands the payload back as form defaults; the user submits.
	ModePrefill Mode = "prefill"
	// ModeReplay re-runs the action without asking.
	ModeReplay Mode = "replay"
)

// Action is a resumable intent found for a page.
type Action interface {
	Mode() Mode
	Context() auth.ServiceContext
}

type Prefill struct {
	Form        RepairForm `json:"form"`
	RedirectURL string     `json:"redirect_url"`
}

func (Prefill) Mode() Mode                   { return ModePrefill }
func (Prefill) Context() auth.ServiceContext { return auth.ContextRepair }

type ReplayCart struct {
	Intent      CartIntent `json:"intent"`
	RedirectURL string     `json:"redirect_url"`
}

func (ReplayCart) Mode() Mode                   { return ModeReplay }
func (ReplayCart) Context() auth.ServiceContext { return auth.ContextFood }

type ReplayLostFound struct {
	Report      LostFoundReport `json:"report"`
	RedirectURL string          `json:"redirect_url"`
}

func (ReplayLostFound) Mode() Mode                   { return ModeReplay }
func (ReplayLostFound) Context() auth.ServiceContext { return auth.ContextLostFound }

// Resume looks for a pending action meant for page. It only reads (and
// discards stale entries); completing the action is the caller's job.
func Resume(ctx context.Context, scopes storage.Scopes, page Page, opts Options) (Action, error) {
	switch page.Context {
	case auth.ContextRepair:
		env, err := RepairSlot(scopes.Session, opts).Load(ctx, page)
		if err != nil || env == nil {
			return nil, err
		}
		return Prefill{Form: env.Payload, RedirectURL: env.RedirectURL}, nil
	case auth.ContextFood:
		env, err := CartSlot(scopes.Session, opts).Load(ctx, page)
		if err != nil || env == nil {
			return nil, err
		}
		return ReplayCart{Intent: env.Payload, RedirectURL: env.RedirectURL}, nil
	case auth.ContextLostFound:
		env, err := LostFoundSlot(scopes.Session, opts).Load(ctx, page)
		if err != nil || env == nil {
			return nil, err
		}
		return ReplayLostFound{Report: env.Payload, RedirectURL: env.RedirectURL}, nil
	}
	return nil, nil
}
