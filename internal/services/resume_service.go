package services

import (
	"context"
	"log"

	"campus_portal/internal/auth"
	"campus_portal/internal/clients"
	"campus_portal/internal/pending"
)

type ResumeService interface {
	// AfterLogin sends the user back to where login interrupted them and
	// resumes the pending action for that flow, if any.
	AfterLogin(ctx context.Context, c *clients.Client) (*ResumeOutcome, error)
}

type resumeService struct {
	portal    *Portal
	checkout  CheckoutService
	lostFound LostFoundService
}

func NewResumeService(portal *Portal, checkout CheckoutService, lostFound LostFoundService) ResumeService {
	return &resumeService{portal: portal, checkout: checkout, lostFound: lostFound}
}

func (s *resumeService) AfterLogin(ctx context.Context, c *clients.Client) (*ResumeOutcome, error) {
	gate := s.portal.Gate(c)
	if !gate.IsAuthenticated(ctx) {
		return nil, auth.ErrAuthRequired
	}

	returnURL, svc, ok := gate.ConsumeReturn(ctx)
	if !ok {
		return &ResumeOutcome{Redirect: "/"}, nil
	}

	var (
		outcome *ResumeOutcome
		err     error
	)
	switch svc {
	case auth.ContextRepair:
		outcome = &ResumeOutcome{Context: svc, Mode: pending.ModePrefill}
		var action pending.Action
		action, err = pending.Resume(ctx, c.Scopes, pending.Page{Context: auth.ContextRepair}, s.portal.Pending)
		if p, ok := action.(pending.Prefill); ok {
			outcome.Prefill = &p.Form
		}
	case auth.ContextFood:
		outcome, err = s.checkout.ResumePending(ctx, c)
	case auth.ContextLostFound:
		outcome, err = s.lostFound.ResumePending(ctx, c)
	default:
		outcome = &ResumeOutcome{}
	}

	if outcome == nil {
		outcome = &ResumeOutcome{Context: svc}
	}
	outcome.Redirect = returnURL
	if err != nil {
		// login itself succeeded; the payload stays for the page to retry
		log.Printf("services: resuming %s for client %s failed: %v", svc, c.ID, err)
		outcome.Error = err.Error()
	}
	return outcome, nil
}
