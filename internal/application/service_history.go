package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/kaju0475/samduk/internal/domain"
	"github.com/kaju0475/samduk/internal/ports"
)

// QueryHistory reads the ledger, ordered by timestamp ascending. Cylinder
// filters accept serial numbers as well as ids.
func (s *Service) QueryHistory(ctx context.Context, in HistoryQueryInput) ([]domain.Event, error) {
	filter := ports.HistoryFilter{From: in.From, To: in.To}
	if in.Action != "" {
		action, err := domain.ParseWorkAction(strings.TrimSpace(in.Action))
		if err != nil {
			switch domain.Action(in.Action) {
			case domain.ActionCreate, domain.ActionUpdate, domain.ActionDelete:
				action = domain.Action(in.Action)
			default:
				return nil, err
			}
		}
		filter.Action = action
	}
	for _, raw := range in.CylinderIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		cylinder, err := s.resolveCylinder(ctx, id)
		if err != nil {
			return nil, err
		}
		filter.CylinderIDs = append(filter.CylinderIDs, cylinder.ID)
	}
	return s.history.Query(ctx, filter)
}

// VerifyLedger replays one cylinder's events and checks the outcome against
// the stored row. A mismatch means the projection and the ledger diverged,
// which the atomic commit unit is supposed to make impossible.
func (s *Service) VerifyLedger(ctx context.Context, cylinderID string) error {
	cylinder, err := s.cylinders.Get(ctx, cylinderID)
	if err != nil {
		return err
	}
	events, err := s.history.Query(ctx, ports.HistoryFilter{CylinderIDs: []string{cylinder.ID}})
	if err != nil {
		return err
	}
	replayed, ok := domain.ReplayStatus(events)
	if !ok {
		return fmt.Errorf("cylinder %s has no status-bearing events", cylinder.ID)
	}
	if replayed != cylinder.Status {
		return fmt.Errorf("cylinder %s: ledger replays to %s but store holds %s", cylinder.ID, replayed, cylinder.Status)
	}
	return nil
}
