package memory

import (
	"context"
	"time"

	"github.com/kaju0475/samduk/internal/domain"
	"github.com/kaju0475/samduk/internal/ports"
)

// Committer binds the cylinder store and the ledger into one commit unit.
// The ledger is behind the port so the append can be made to fail; a failed
// append rolls the cylinder mutation back, leaving neither half visible.
type Committer struct {
	cylinders *CylinderRepository
	history   ports.HistoryRepository
}

func NewCommitter(cylinders *CylinderRepository, history ports.HistoryRepository) *Committer {
	return &Committer{cylinders: cylinders, history: history}
}

func (c *Committer) CommitCreate(ctx context.Context, row domain.Cylinder, ev domain.Event) error {
	if err := c.cylinders.Create(ctx, row); err != nil {
		return err
	}
	if err := c.history.Append(ctx, ev); err != nil {
		c.cylinders.undoCreate(row.ID)
		return err
	}
	return nil
}

func (c *Committer) CommitUpdate(ctx context.Context, id string, patch ports.CylinderPatch, updatedAt time.Time, ev domain.Event) (domain.Cylinder, error) {
	prev, err := c.cylinders.Get(ctx, id)
	if err != nil {
		return domain.Cylinder{}, err
	}
	updated, err := c.cylinders.Update(ctx, id, patch, updatedAt)
	if err != nil {
		return domain.Cylinder{}, err
	}
	if err := c.history.Append(ctx, ev); err != nil {
		c.cylinders.restore(prev)
		return domain.Cylinder{}, err
	}
	return updated, nil
}

func (c *Committer) CommitDelete(ctx context.Context, id string, at time.Time, ev domain.Event) (domain.Cylinder, error) {
	prev, err := c.cylinders.Get(ctx, id)
	if err != nil {
		return domain.Cylinder{}, err
	}
	deleted, err := c.cylinders.SoftDelete(ctx, id, at)
	if err != nil {
		return domain.Cylinder{}, err
	}
	if err := c.history.Append(ctx, ev); err != nil {
		c.cylinders.restore(prev)
		return domain.Cylinder{}, err
	}
	return deleted, nil
}

func (c *Committer) CommitTransition(ctx context.Context, id string, status domain.Status, customerID, location string, updatedAt time.Time, ev domain.Event) (domain.Cylinder, error) {
	prev, err := c.cylinders.Get(ctx, id)
	if err != nil {
		return domain.Cylinder{}, err
	}
	updated, err := c.cylinders.SetStatus(ctx, id, status, customerID, location, updatedAt)
	if err != nil {
		return domain.Cylinder{}, err
	}
	if err := c.history.Append(ctx, ev); err != nil {
		c.cylinders.restore(prev)
		return domain.Cylinder{}, err
	}
	return updated, nil
}
