package services

import (
	"context"

	"campus_portal/internal/auth"
	"campus_portal/internal/clients"
	"campus_portal/internal/forms"
	"campus_portal/internal/models"
	"campus_portal/internal/orders"
	"campus_portal/internal/pending"
	"campus_portal/internal/repository"
)

type LostFoundService interface {
	Submit(ctx context.Context, c *clients.Client, report pending.LostFoundReport, returnURL string) (*SubmitResult[models.LostFoundItem], error)
	ResumePending(ctx context.Context, c *clients.Client) (*ResumeOutcome, error)
	ListOpen(ctx context.Context) ([]models.LostFoundItem, error)
}

type lostFoundService struct {
	portal    *Portal
	lostFound repository.LostFoundRepository
	adapter   *orders.Adapter
}

func NewLostFoundService(portal *Portal, lostFound repository.LostFoundRepository, adapter *orders.Adapter) LostFoundService {
	return &lostFoundService{portal: portal, lostFound: lostFound, adapter: adapter}
}

func (s *lostFoundService) Submit(ctx context.Context, c *clients.Client, report pending.LostFoundReport, returnURL string) (*SubmitResult[models.LostFoundItem], error) {
	if err := forms.Validate(report); err != nil {
		return nil, err
	}

	gate := s.portal.Gate(c)
	result := &SubmitResult[models.LostFoundItem]{}
	redirect, err := gate.RequireAuth(ctx, returnURL, auth.ContextLostFound, func(ctx context.Context) error {
		item, err := s.file(ctx, gate, report)
		result.Order = item
		return err
	})
	redirect, err = relogin(ctx, gate, returnURL, auth.ContextLostFound, redirect, err)
	if err != nil {
		return nil, err
	}
	if redirect != nil {
		slot := pending.LostFoundSlot(c.Scopes.Session, s.portal.Pending)
		if err := slot.Save(ctx, report, returnURL); err != nil {
			return nil, err
		}
		result.Redirect = redirect
	}
	return result, nil
}

// ResumePending files a report saved before login without asking again.
func (s *lostFoundService) ResumePending(ctx context.Context, c *clients.Client) (*ResumeOutcome, error) {
	outcome := &ResumeOutcome{Context: auth.ContextLostFound, Mode: pending.ModeReplay}
	gate := s.portal.Gate(c)
	slot := pending.LostFoundSlot(c.Scopes.Session, s.portal.Pending)

	ran, err := pending.Run(ctx, slot, pending.Page{Context: auth.ContextLostFound}, func(ctx context.Context, report pending.LostFoundReport) error {
		item, err := s.file(ctx, gate, report)
		if err != nil {
			return err
		}
		outcome.Result = item
		return nil
	})
	outcome.Replayed = ran
	return outcome, err
}

func (s *lostFoundService) ListOpen(ctx context.Context) ([]models.LostFoundItem, error) {
	return s.lostFound.GetOpen(ctx)
}

func (s *lostFoundService) file(ctx context.Context, gate *auth.Gate, report pending.LostFoundReport) (*models.LostFoundItem, error) {
	user, err := currentUser(ctx, gate)
	if err != nil {
		return nil, err
	}
	res := s.adapter.SubmitLostFoundReport(ctx, user.ID, report)
	if !res.Success {
		return nil, &SubmissionError{Message: res.Error}
	}
	return res.Data, nil
}
