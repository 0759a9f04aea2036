// Package memory holds the default single-process store. Every repository is
// guarded by its own mutex; the application layer adds per-cylinder locks on
// top so one transition's status write and ledger append commit as a unit.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kaju0475/samduk/internal/domain"
	"github.com/kaju0475/samduk/internal/ports"
)

type Repositories struct {
	Cylinders *CylinderRepository
	History   *HistoryRepository
	Customers *CustomerRepository
	Users     *UserRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Cylinders: &CylinderRepository{byID: map[string]domain.Cylinder{}, bySerial: map[string]string{}},
		History:   &HistoryRepository{},
		Customers: &CustomerRepository{byID: map[string]domain.Customer{}},
		Users:     &UserRepository{byID: map[string]domain.User{}, byUsername: map[string]string{}},
	}
}

type CylinderRepository struct {
	mu       sync.Mutex
	byID     map[string]domain.Cylinder
	bySerial map[string]string // serial -> id, non-deleted cylinders only
	order    []string          // creation order, for stable listings
}

func (r *CylinderRepository) Get(_ context.Context, id string) (domain.Cylinder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[id]
	if !ok {
		return domain.Cylinder{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *CylinderRepository) GetBySerial(_ context.Context, serial string) (domain.Cylinder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.bySerial[serial]
	if !ok {
		return domain.Cylinder{}, domain.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *CylinderRepository) List(_ context.Context, filter ports.CylinderFilter) ([]domain.Cylinder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Cylinder, 0, len(r.order))
	for _, id := range r.order {
		row := r.byID[id]
		if row.Deleted && !filter.IncludeDeleted {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.GasType != "" && row.GasType != filter.GasType {
			continue
		}
		if filter.CustomerID != "" && row.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Serial != "" && !strings.Contains(row.SerialNumber, filter.Serial) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *CylinderRepository) Create(_ context.Context, row domain.Cylinder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[row.ID]; ok {
		return domain.ErrConflict
	}
	if _, ok := r.bySerial[row.SerialNumber]; ok {
		return domain.ErrConflict
	}
	r.byID[row.ID] = row
	r.bySerial[row.SerialNumber] = row.ID
	r.order = append(r.order, row.ID)
	return nil
}

func (r *CylinderRepository) Update(_ context.Context, id string, patch ports.CylinderPatch, updatedAt time.Time) (domain.Cylinder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[id]
	if !ok {
		return domain.Cylinder{}, domain.ErrNotFound
	}
	if patch.SerialNumber != nil && *patch.SerialNumber != row.SerialNumber {
		if _, taken := r.bySerial[*patch.SerialNumber]; taken {
			return domain.Cylinder{}, domain.ErrConflict
		}
		delete(r.bySerial, row.SerialNumber)
		row.SerialNumber = *patch.SerialNumber
		r.bySerial[row.SerialNumber] = id
	}
	if patch.GasType != nil {
		row.GasType = *patch.GasType
	}
	if patch.ContainerType != nil {
		row.ContainerType = *patch.ContainerType
	}
	if patch.Capacity != nil {
		row.Capacity = *patch.Capacity
	}
	if patch.Location != nil {
		row.Location = *patch.Location
	}
	if patch.Memo != nil {
		row.Memo = *patch.Memo
	}
	row.UpdatedAt = updatedAt
	r.byID[id] = row
	return row, nil
}

func (r *CylinderRepository) SetStatus(_ context.Context, id string, status domain.Status, customerID, location string, updatedAt time.Time) (domain.Cylinder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[id]
	if !ok {
		return domain.Cylinder{}, domain.ErrNotFound
	}
	row.Status = status
	row.CustomerID = customerID
	row.Location = location
	row.UpdatedAt = updatedAt
	r.byID[id] = row
	return row, nil
}

func (r *CylinderRepository) SoftDelete(_ context.Context, id string, at time.Time) (domain.Cylinder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[id]
	if !ok {
		return domain.Cylinder{}, domain.ErrNotFound
	}
	if !row.Deleted {
		row.Deleted = true
		deletedAt := at
		row.DeletedAt = &deletedAt
		row.UpdatedAt = at
		// Frees the serial for reuse by a future cylinder.
		delete(r.bySerial, row.SerialNumber)
		r.byID[id] = row
	}
	return row, nil
}

// undoCreate removes a row whose commit failed after the insert.
func (r *CylinderRepository) undoCreate(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	delete(r.bySerial, row.SerialNumber)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// restore writes a previously read row back, reversing a mutation whose
// commit failed before the ledger append landed.
func (r *CylinderRepository) restore(row domain.Cylinder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[row.ID]
	if ok && !cur.Deleted {
		delete(r.bySerial, cur.SerialNumber)
	}
	r.byID[row.ID] = row
	if !row.Deleted {
		r.bySerial[row.SerialNumber] = row.ID
	}
}

// HistoryRepository is the append-only ledger. Rows are kept in append order;
// timestamps are clamped to be non-decreasing so replay order and insertion
// order never disagree.
type HistoryRepository struct {
	mu     sync.Mutex
	rows   []domain.Event
	lastTS time.Time
}

func (r *HistoryRepository) Append(_ context.Context, ev domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev.Timestamp.Before(r.lastTS) {
		ev.Timestamp = r.lastTS
	}
	r.lastTS = ev.Timestamp
	r.rows = append(r.rows, ev)
	return nil
}

func (r *HistoryRepository) Query(_ context.Context, filter ports.HistoryFilter) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var wanted map[string]struct{}
	if len(filter.CylinderIDs) > 0 {
		wanted = make(map[string]struct{}, len(filter.CylinderIDs))
		for _, id := range filter.CylinderIDs {
			wanted[id] = struct{}{}
		}
	}
	out := make([]domain.Event, 0, len(r.rows))
	for _, ev := range r.rows {
		if wanted != nil {
			if _, ok := wanted[ev.CylinderID]; !ok {
				continue
			}
		}
		if filter.Action != "" && ev.Action != filter.Action {
			continue
		}
		if !filter.From.IsZero() && ev.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && ev.Timestamp.After(filter.To) {
			continue
		}
		out = append(out, ev)
	}
	// Append order already matches timestamp order; the stable sort is a
	// contract guarantee for callers, not a reordering.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *HistoryRepository) CountByAction(_ context.Context) (map[domain.Action]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.Action]int{}
	for _, ev := range r.rows {
		out[ev.Action]++
	}
	return out, nil
}

type CustomerRepository struct {
	mu    sync.Mutex
	byID  map[string]domain.Customer
	order []string
}

func (r *CustomerRepository) Get(_ context.Context, id string) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[id]
	if !ok {
		return domain.Customer{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *CustomerRepository) List(_ context.Context) ([]domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Customer, 0, len(r.order))
	for _, id := range r.order {
		row := r.byID[id]
		if row.Deleted {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *CustomerRepository) Create(_ context.Context, row domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[row.ID]; ok {
		return domain.ErrConflict
	}
	r.byID[row.ID] = row
	r.order = append(r.order, row.ID)
	return nil
}

type UserRepository struct {
	mu         sync.Mutex
	byID       map[string]domain.User
	byUsername map[string]string
}

func (r *UserRepository) Get(_ context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byUsername[username]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *UserRepository) Create(_ context.Context, row domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUsername[row.Username]; ok {
		return domain.ErrConflict
	}
	r.byID[row.ID] = row
	r.byUsername[row.Username] = row.ID
	return nil
}
