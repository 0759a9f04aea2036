package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kaju0475/samduk/internal/domain"
)

// InspectionAgencyLocation is the holder recorded while a cylinder is out for
// periodic inspection.
const InspectionAgencyLocation = "INSPECTION_AGENCY"

// ProcessWork fans one action out over a batch of cylinders. Request-level
// validation (unknown action, empty batch, duplicate ids, missing or unknown
// customer) fails wholesale before any mutation. After that each cylinder is
// attempted independently: a rejection is recorded per item and the batch
// carries on, with Processed=false signalling the caller to inspect the items.
func (s *Service) ProcessWork(ctx context.Context, actor Actor, in WorkInput) (BatchResult, error) {
	action, err := domain.ParseWorkAction(strings.TrimSpace(in.Action))
	if err != nil {
		return BatchResult{}, err
	}

	ids := make([]string, 0, len(in.CylinderIDs))
	seen := map[string]struct{}{}
	for _, raw := range in.CylinderIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			return BatchResult{}, fmt.Errorf("%w: duplicate cylinder id %s in batch", domain.ErrInvalidRequest, id)
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return BatchResult{}, fmt.Errorf("%w: no cylinder ids in batch", domain.ErrInvalidRequest)
	}

	customerID := strings.TrimSpace(in.CustomerID)
	switch action {
	case domain.ActionDelivery, domain.ActionCollection:
		if customerID == "" {
			return BatchResult{}, fmt.Errorf("%w: %s requires a customer", domain.ErrInvalidRequest, action)
		}
		customer, err := s.customers.Get(ctx, customerID)
		if err != nil {
			return BatchResult{}, err
		}
		if customer.Deleted {
			return BatchResult{}, fmt.Errorf("%w: customer %s is deleted", domain.ErrGone, customerID)
		}
	default:
		customerID = ""
	}

	// Resolve everything to canonical ids before touching anything: an id and
	// a serial number naming the same cylinder is still a duplicate.
	items := make([]workItem, 0, len(ids))
	canonical := map[string]string{}
	for _, id := range ids {
		cylinder, err := s.resolveCylinder(ctx, id)
		if err != nil {
			items = append(items, workItem{raw: id, err: err})
			continue
		}
		if first, dup := canonical[cylinder.ID]; dup {
			return BatchResult{}, fmt.Errorf("%w: %s and %s name the same cylinder", domain.ErrInvalidRequest, first, id)
		}
		canonical[cylinder.ID] = id
		items = append(items, workItem{raw: id, cylinderID: cylinder.ID})
	}

	result := BatchResult{
		Processed:  true,
		Action:     action,
		CustomerID: customerID,
		Cylinders:  make([]WorkItemResult, 0, len(items)),
	}
	for _, it := range items {
		var item WorkItemResult
		if it.err != nil {
			item = workItemFailure(it.raw, it.err)
		} else {
			item = s.applyWork(ctx, actor, it.cylinderID, action, customerID)
		}
		if item.ErrorCode != "" {
			result.Processed = false
		}
		result.Cylinders = append(result.Cylinders, item)
	}
	return result, nil
}

// workItem is one batch entry after resolution: either a canonical cylinder
// id or the resolution failure to report for the raw input.
type workItem struct {
	raw        string
	cylinderID string
	err        error
}

// applyWork runs validate-and-commit for one cylinder under its lock. The
// status mutation and the ledger append go through the commit store as one
// unit, so neither survives without the other. On rejection neither occurs.
func (s *Service) applyWork(ctx context.Context, actor Actor, id string, action domain.Action, customerID string) WorkItemResult {
	mu := s.lockCylinder(id)
	mu.Lock()
	defer mu.Unlock()

	// Re-read inside the lock; resolution ran before it was held.
	cylinder, err := s.cylinders.Get(ctx, id)
	if err != nil {
		return workItemFailure(id, err)
	}

	newStatus, err := domain.Transition(cylinder, action, customerID)
	if err != nil {
		return workItemFailure(id, err)
	}

	holder := ""
	location := FactoryLocation
	switch newStatus {
	case domain.StatusDelivered:
		holder = customerID
		location = customerID
	case domain.StatusUnderInspection:
		location = InspectionAgencyLocation
	}

	now := s.nowFn()
	updated, err := s.commits.CommitTransition(ctx, id, newStatus, holder, location, now, domain.Event{
		ID:              "evt_" + uuid.NewString(),
		CylinderID:      cylinder.ID,
		Action:          action,
		Timestamp:       now,
		CustomerID:      customerID,
		WorkerID:        actor.UserID,
		ResultingStatus: newStatus,
	})
	if err != nil {
		return workItemFailure(id, err)
	}
	return WorkItemResult{CylinderID: updated.ID, Status: updated.Status}
}

// resolveCylinder accepts either the internal id or the printed serial
// number, since field workers scan whichever label the bottle carries.
func (s *Service) resolveCylinder(ctx context.Context, id string) (domain.Cylinder, error) {
	cylinder, err := s.cylinders.Get(ctx, id)
	if err == nil {
		return cylinder, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Cylinder{}, err
	}
	return s.cylinders.GetBySerial(ctx, id)
}

func workItemFailure(id string, err error) WorkItemResult {
	return WorkItemResult{CylinderID: id, ErrorCode: workErrorCode(err), Message: err.Error()}
}

func workErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrGone):
		return "GONE"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrInvalidRequest):
		return "INVALID_REQUEST"
	default:
		return "INTERNAL"
	}
}
