package services

import (
	"context"
	"errors"

	"campus_portal/internal/auth"
	"campus_portal/internal/clients"
	"campus_portal/internal/forms"
	"campus_portal/internal/models"
	"campus_portal/internal/orders"
	"campus_portal/internal/pending"
	"campus_portal/internal/repository"
)

type RepairService interface {
	// Prefill returns form defaults for serviceType: a pending form saved
	// before login wins over the signed-in user's profile.
	Prefill(ctx context.Context, c *clients.Client, serviceType string) (*pending.RepairForm, error)
	Submit(ctx context.Context, c *clients.Client, form pending.RepairForm, returnURL string) (*SubmitResult[models.RepairOrder], error)
	ListMine(ctx context.Context, c *clients.Client) ([]models.RepairOrder, error)
}

type repairService struct {
	portal       *Portal
	serviceTypes repository.ServiceTypeRepository
	repairOrders repository.RepairOrderRepository
	adapter      *orders.Adapter
}

func NewRepairService(portal *Portal, serviceTypes repository.ServiceTypeRepository, repairOrders repository.RepairOrderRepository, adapter *orders.Adapter) RepairService {
	return &repairService{
		portal:       portal,
		serviceTypes: serviceTypes,
		repairOrders: repairOrders,
		adapter:      adapter,
	}
}

func (s *repairService) Prefill(ctx context.Context, c *clients.Client, serviceType string) (*pending.RepairForm, error) {
	if err := s.checkServiceType(ctx, serviceType); err != nil {
		return nil, err
	}
	form := &pending.RepairForm{ServiceType: serviceType}

	user := s.portal.Gate(c).CurrentUserSync(ctx)
	if user == nil {
		return form, nil
	}

	action, err := pending.Resume(ctx, c.Scopes, pending.Page{Context: auth.ContextRepair, ServiceType: serviceType}, s.portal.Pending)
	if err != nil {
		return nil, err
	}
	if p, ok := action.(pending.Prefill); ok {
		return &p.Form, nil
	}

	form.FirstName = user.FirstName
	form.LastName = user.LastName
	form.Email = user.Email
	form.Phone = user.Phone
	return form, nil
}

func (s *repairService) Submit(ctx context.Context, c *clients.Client, form pending.RepairForm, returnURL string) (*SubmitResult[models.RepairOrder], error) {
	if err := s.checkServiceType(ctx, form.ServiceType); err != nil {
		return nil, err
	}
	if err := forms.Validate(form); err != nil {
		return nil, err
	}

	gate := s.portal.Gate(c)
	slot := pending.RepairSlot(c.Scopes.Session, s.portal.Pending)
	result := &SubmitResult[models.RepairOrder]{}

	redirect, err := gate.RequireAuth(ctx, returnURL, auth.ContextRepair, func(ctx context.Context) error {
		user, err := currentUser(ctx, gate)
		if err != nil {
			return err
		}
		stored, err := slot.Load(ctx, pending.Page{Context: auth.ContextRepair, ServiceType: form.ServiceType})
		if err != nil {
			return err
		}

		res := s.adapter.SubmitRepairOrder(ctx, user.ID, form)
		if !res.Success {
			if stored != nil {
				stored.Payload = form
				if err := slot.Fail(ctx, stored); err != nil {
					return err
				}
			}
			return &SubmissionError{Message: res.Error}
		}
		result.Order = res.Data
		return slot.Complete(ctx)
	})
	redirect, err = relogin(ctx, gate, returnURL, auth.ContextRepair, redirect, err)
	if err != nil {
		return nil, err
	}
	if redirect != nil {
		if err := slot.Save(ctx, form, returnURL); err != nil {
			return nil, err
		}
		result.Redirect = redirect
	}
	return result, nil
}

func (s *repairService) ListMine(ctx context.Context, c *clients.Client) ([]models.RepairOrder, error) {
	user, err := currentUser(ctx, s.portal.Gate(c))
	if err != nil {
		return nil, err
	}
	return s.repairOrders.GetByUserID(ctx, user.ID)
}

func (s *repairService) checkServiceType(ctx context.Context, name string) error {
	st, err := s.serviceTypes.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !st.IsActive) {
		return ErrUnknownServiceType
	}
	return err
}
