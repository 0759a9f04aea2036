package application

import (
	"context"

	"github.com/kaju0475/samduk/internal/domain"
	"github.com/kaju0475/samduk/internal/ports"
)

// LongTermReport rolls current status totals and all-time action totals into
// one read-only view. It holds no state and performs no writes.
func (s *Service) LongTermReport(ctx context.Context) (LongTermReport, error) {
	cylinders, err := s.cylinders.List(ctx, ports.CylinderFilter{})
	if err != nil {
		return LongTermReport{}, err
	}
	byStatus := map[domain.Status]int{}
	for _, c := range cylinders {
		byStatus[c.Status]++
	}

	byAction, err := s.history.CountByAction(ctx)
	if err != nil {
		return LongTermReport{}, err
	}

	return LongTermReport{
		TotalsByStatus: byStatus,
		TotalsByAction: byAction,
		TotalCylinders: len(cylinders),
		AsOf:           s.nowFn(),
	}, nil
}

// DashboardStats counts the operational buckets the factory wallboard shows.
func (s *Service) DashboardStats(ctx context.Context) (DashboardStats, error) {
	cylinders, err := s.cylinders.List(ctx, ports.CylinderFilter{})
	if err != nil {
		return DashboardStats{}, err
	}
	stats := DashboardStats{Total: len(cylinders)}
	for _, c := range cylinders {
		switch c.Status {
		case domain.StatusEmpty:
			stats.Standby++
		case domain.StatusCharging:
			stats.Charging++
		case domain.StatusFull:
			stats.Full++
		case domain.StatusDelivered:
			stats.Delivered++
		}
	}
	return stats, nil
}
