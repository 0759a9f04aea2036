package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kaju0475/samduk/internal/domain"
	"github.com/kaju0475/samduk/internal/ports"
)

// FactoryLocation is the holder recorded for cylinders that are on site
// rather than out at a customer.
const FactoryLocation = "FACTORY"

// CreateCylinder registers a new cylinder and appends its CREATE marker to
// the ledger. Duplicate serial numbers among non-deleted cylinders are
// rejected with domain.ErrConflict before anything is written.
func (s *Service) CreateCylinder(ctx context.Context, actor Actor, in CreateCylinderInput) (domain.Cylinder, error) {
	in.SerialNumber = strings.TrimSpace(in.SerialNumber)
	if in.SerialNumber == "" {
		return domain.Cylinder{}, fmt.Errorf("%w: serial number is required", domain.ErrInvalidRequest)
	}
	status := domain.StatusEmpty
	if in.Status != "" {
		status = domain.Status(in.Status)
		if !domain.ValidStatus(status) {
			return domain.Cylinder{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidRequest, in.Status)
		}
		// Registration captures bottles on the factory floor. DELIVERED needs a
		// customer binding that only the delivery action records, and DISPOSED
		// or UNDER_INSPECTION rows would enter the lifecycle with no event
		// explaining how they left; all three are reachable only through work
		// actions.
		switch status {
		case domain.StatusEmpty, domain.StatusCharging, domain.StatusFull:
		default:
			return domain.Cylinder{}, fmt.Errorf("%w: cylinders cannot be registered as %s", domain.ErrInvalidRequest, status)
		}
	}
	if in.ContainerType == "" {
		in.ContainerType = "CYLINDER"
	}
	if in.Location == "" {
		in.Location = FactoryLocation
	}

	now := s.nowFn()
	row := domain.Cylinder{
		ID:            "cyl_" + uuid.NewString(),
		SerialNumber:  in.SerialNumber,
		GasType:       strings.TrimSpace(in.GasType),
		ContainerType: in.ContainerType,
		Capacity:      strings.TrimSpace(in.Capacity),
		Location:      in.Location,
		Status:        status,
		Memo:          in.Memo,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	mu := s.lockCylinder(row.ID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.commits.CommitCreate(ctx, row, domain.Event{
		ID:              "evt_" + uuid.NewString(),
		CylinderID:      row.ID,
		Action:          domain.ActionCreate,
		Timestamp:       now,
		WorkerID:        actor.UserID,
		ResultingStatus: row.Status,
	}); err != nil {
		return domain.Cylinder{}, err
	}
	return row, nil
}

// UpdateCylinder applies a field-level patch. The patch cannot touch status;
// that path belongs to the transition engine alone.
func (s *Service) UpdateCylinder(ctx context.Context, actor Actor, in UpdateCylinderInput) (domain.Cylinder, error) {
	if strings.TrimSpace(in.ID) == "" {
		return domain.Cylinder{}, fmt.Errorf("%w: id is required", domain.ErrInvalidRequest)
	}
	if in.Patch.SerialNumber != nil && strings.TrimSpace(*in.Patch.SerialNumber) == "" {
		return domain.Cylinder{}, fmt.Errorf("%w: serial number cannot be empty", domain.ErrInvalidRequest)
	}

	mu := s.lockCylinder(in.ID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.cylinders.Get(ctx, in.ID)
	if err != nil {
		return domain.Cylinder{}, err
	}
	if current.Deleted {
		return domain.Cylinder{}, fmt.Errorf("%w: cylinder %s is deleted", domain.ErrGone, in.ID)
	}

	now := s.nowFn()
	updated, err := s.commits.CommitUpdate(ctx, in.ID, in.Patch, now, domain.Event{
		ID:              "evt_" + uuid.NewString(),
		CylinderID:      in.ID,
		Action:          domain.ActionUpdate,
		Timestamp:       now,
		WorkerID:        actor.UserID,
		ResultingStatus: current.Status,
	})
	if err != nil {
		return domain.Cylinder{}, err
	}
	return updated, nil
}

// DeleteCylinder soft-deletes: the row stays so history keeps a valid
// referent, but every later action on it is rejected with ErrGone.
func (s *Service) DeleteCylinder(ctx context.Context, actor Actor, id string) (domain.Cylinder, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Cylinder{}, fmt.Errorf("%w: id is required", domain.ErrInvalidRequest)
	}

	mu := s.lockCylinder(id)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.cylinders.Get(ctx, id)
	if err != nil {
		return domain.Cylinder{}, err
	}
	if current.Deleted {
		return domain.Cylinder{}, fmt.Errorf("%w: cylinder %s is already deleted", domain.ErrGone, id)
	}

	now := s.nowFn()
	deleted, err := s.commits.CommitDelete(ctx, id, now, domain.Event{
		ID:              "evt_" + uuid.NewString(),
		CylinderID:      id,
		Action:          domain.ActionDelete,
		Timestamp:       now,
		WorkerID:        actor.UserID,
		ResultingStatus: current.Status,
	})
	if err != nil {
		return domain.Cylinder{}, err
	}
	return deleted, nil
}

func (s *Service) GetCylinder(ctx context.Context, id string) (domain.Cylinder, error) {
	return s.cylinders.Get(ctx, id)
}

func (s *Service) ListCylinders(ctx context.Context, in ListCylindersInput) ([]domain.Cylinder, error) {
	filter := ports.CylinderFilter{
		GasType:        strings.TrimSpace(in.GasType),
		Serial:         strings.TrimSpace(in.Serial),
		CustomerID:     strings.TrimSpace(in.CustomerID),
		IncludeDeleted: in.IncludeDeleted,
	}
	if in.Status != "" {
		status := domain.Status(in.Status)
		if !domain.ValidStatus(status) {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidRequest, in.Status)
		}
		filter.Status = status
	}
	return s.cylinders.List(ctx, filter)
}

// CreateCustomer registers a delivery counterparty.
func (s *Service) CreateCustomer(ctx context.Context, in CreateCustomerInput) (domain.Customer, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.Customer{}, fmt.Errorf("%w: customer name is required", domain.ErrInvalidRequest)
	}
	row := domain.Customer{
		ID:        "cust_" + uuid.NewString(),
		Name:      in.Name,
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: s.nowFn(),
	}
	if err := s.customers.Create(ctx, row); err != nil {
		return domain.Customer{}, err
	}
	return row, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.customers.List(ctx)
}
