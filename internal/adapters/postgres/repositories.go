package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/kaju0475/samduk/internal/domain"
	"github.com/kaju0475/samduk/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Cylinders *CylinderRepository
	History   *HistoryRepository
	Commits   *Committer
	Customers *CustomerRepository
	Users     *UserRepository
	Sessions  *SessionRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Cylinders: &CylinderRepository{db: db},
		History:   &HistoryRepository{db: db},
		Commits:   &Committer{db: db},
		Customers: &CustomerRepository{db: db},
		Users:     &UserRepository{db: db},
		Sessions:  &SessionRepository{db: db},
	}
}

type CylinderRepository struct {
	db *gorm.DB
}

func (r *CylinderRepository) Get(ctx context.Context, id string) (domain.Cylinder, error) {
	var m cylinderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Cylinder{}, domain.ErrNotFound
		}
		return domain.Cylinder{}, err
	}
	return fromCylinderModel(m), nil
}

func (r *CylinderRepository) GetBySerial(ctx context.Context, serial string) (domain.Cylinder, error) {
	var m cylinderModel
	err := r.db.WithContext(ctx).
		Where("serial_number = ? AND deleted = false", serial).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Cylinder{}, domain.ErrNotFound
		}
		return domain.Cylinder{}, err
	}
	return fromCylinderModel(m), nil
}

func (r *CylinderRepository) List(ctx context.Context, filter ports.CylinderFilter) ([]domain.Cylinder, error) {
	q := r.db.WithContext(ctx).Model(&cylinderModel{}).Order("created_at ASC")
	if !filter.IncludeDeleted {
		q = q.Where("deleted = false")
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.GasType != "" {
		q = q.Where("gas_type = ?", filter.GasType)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Serial != "" {
		q = q.Where("serial_number LIKE ?", "%"+filter.Serial+"%")
	}
	var ms []cylinderModel
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Cylinder, 0, len(ms))
	for _, m := range ms {
		out = append(out, fromCylinderModel(m))
	}
	return out, nil
}

// Committer is the write path: every cylinder mutation and its ledger event
// land in one database transaction, so a failed event insert rolls the
// mutation back.
type Committer struct {
	db *gorm.DB
}

func (c *Committer) CommitCreate(ctx context.Context, row domain.Cylinder, ev domain.Event) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&cylinderModel{}).
			Where("serial_number = ? AND deleted = false", row.SerialNumber).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrConflict
		}
		if err := tx.Create(toCylinderModel(row)).Error; err != nil {
			return err
		}
		return tx.Create(toEventModel(ev)).Error
	})
}

func (c *Committer) CommitUpdate(ctx context.Context, id string, patch ports.CylinderPatch, updatedAt time.Time, ev domain.Event) (domain.Cylinder, error) {
	var out domain.Cylinder
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m cylinderModel
		if err := tx.Where("id = ?", id).Take(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		updates := map[string]any{"updated_at": updatedAt}
		if patch.SerialNumber != nil && *patch.SerialNumber != m.SerialNumber {
			var count int64
			if err := tx.Model(&cylinderModel{}).
				Where("serial_number = ? AND deleted = false AND id <> ?", *patch.SerialNumber, id).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return domain.ErrConflict
			}
			updates["serial_number"] = *patch.SerialNumber
		}
		if patch.GasType != nil {
			updates["gas_type"] = *patch.GasType
		}
		if patch.ContainerType != nil {
			updates["container_type"] = *patch.ContainerType
		}
		if patch.Capacity != nil {
			updates["capacity"] = *patch.Capacity
		}
		if patch.Location != nil {
			updates["location"] = *patch.Location
		}
		if patch.Memo != nil {
			updates["memo"] = *patch.Memo
		}
		if err := tx.Model(&cylinderModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Create(toEventModel(ev)).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Take(&m).Error; err != nil {
			return err
		}
		out = fromCylinderModel(m)
		return nil
	})
	return out, err
}

func (c *Committer) CommitDelete(ctx context.Context, id string, at time.Time, ev domain.Event) (domain.Cylinder, error) {
	return c.commitStatusWrite(ctx, id, map[string]any{
		"deleted":    true,
		"deleted_at": at,
		"updated_at": at,
	}, ev)
}

func (c *Committer) CommitTransition(ctx context.Context, id string, status domain.Status, customerID, location string, updatedAt time.Time, ev domain.Event) (domain.Cylinder, error) {
	return c.commitStatusWrite(ctx, id, map[string]any{
		"status":      string(status),
		"customer_id": customerID,
		"location":    location,
		"updated_at":  updatedAt,
	}, ev)
}

func (c *Committer) commitStatusWrite(ctx context.Context, id string, updates map[string]any, ev domain.Event) (domain.Cylinder, error) {
	var out domain.Cylinder
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&cylinderModel{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		if err := tx.Create(toEventModel(ev)).Error; err != nil {
			return err
		}
		var m cylinderModel
		if err := tx.Where("id = ?", id).Take(&m).Error; err != nil {
			return err
		}
		out = fromCylinderModel(m)
		return nil
	})
	return out, err
}

// HistoryRepository persists ledger rows. The schema carries no update or
// delete path for history_events; the append-only contract holds at the
// adapter surface.
type HistoryRepository struct {
	db *gorm.DB
}

func (r *HistoryRepository) Append(ctx context.Context, ev domain.Event) error {
	return r.db.WithContext(ctx).Create(toEventModel(ev)).Error
}

func (r *HistoryRepository) Query(ctx context.Context, filter ports.HistoryFilter) ([]domain.Event, error) {
	q := r.db.WithContext(ctx).Model(&historyEventModel{}).Order("timestamp ASC, seq ASC")
	if len(filter.CylinderIDs) > 0 {
		q = q.Where("cylinder_id IN ?", filter.CylinderIDs)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", string(filter.Action))
	}
	if !filter.From.IsZero() {
		q = q.Where("timestamp >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("timestamp <= ?", filter.To)
	}
	var ms []historyEventModel
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Event, 0, len(ms))
	for _, m := range ms {
		out = append(out, fromEventModel(m))
	}
	return out, nil
}

func (r *HistoryRepository) CountByAction(ctx context.Context) (map[domain.Action]int, error) {
	var rows []struct {
		Action string
		N      int
	}
	err := r.db.WithContext(ctx).Model(&historyEventModel{}).
		Select("action, count(*) as n").
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.Action]int, len(rows))
	for _, row := range rows {
		out[domain.Action(row.Action)] = row.N
	}
	return out, nil
}

type CustomerRepository struct {
	db *gorm.DB
}

func (r *CustomerRepository) Get(ctx context.Context, id string) (domain.Customer, error) {
	var m customerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Customer{}, domain.ErrNotFound
		}
		return domain.Customer{}, err
	}
	return domain.Customer{
		ID: m.ID, Name: m.Name, Phone: m.Phone, Address: m.Address,
		Deleted: m.Deleted, DeletedAt: m.DeletedAt, CreatedAt: m.CreatedAt,
	}, nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	var ms []customerModel
	if err := r.db.WithContext(ctx).Where("deleted = false").Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Customer, 0, len(ms))
	for _, m := range ms {
		out = append(out, domain.Customer{
			ID: m.ID, Name: m.Name, Phone: m.Phone, Address: m.Address,
			Deleted: m.Deleted, DeletedAt: m.DeletedAt, CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

func (r *CustomerRepository) Create(ctx context.Context, row domain.Customer) error {
	return r.db.WithContext(ctx).Create(&customerModel{
		ID: row.ID, Name: row.Name, Phone: row.Phone, Address: row.Address,
		Deleted: row.Deleted, DeletedAt: row.DeletedAt, CreatedAt: row.CreatedAt,
	}).Error
}

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) Get(ctx context.Context, id string) (domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return domain.User{ID: m.ID, Username: m.Username, Name: m.Name, Role: m.Role, PasswordHash: m.PasswordHash, CreatedAt: m.CreatedAt}, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return domain.User{ID: m.ID, Username: m.Username, Name: m.Name, Role: m.Role, PasswordHash: m.PasswordHash, CreatedAt: m.CreatedAt}, nil
}

func (r *UserRepository) Create(ctx context.Context, row domain.User) error {
	err := r.db.WithContext(ctx).Create(&userModel{
		ID: row.ID, Username: row.Username, Name: row.Name, Role: row.Role,
		PasswordHash: row.PasswordHash, CreatedAt: row.CreatedAt,
	}).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

// SessionRepository is the durable session store used when redis is not
// configured but postgres is.
type SessionRepository struct {
	db *gorm.DB
}

func (r *SessionRepository) Put(ctx context.Context, s domain.Session) error {
	return r.db.WithContext(ctx).Create(&sessionModel{
		ID: s.ID, UserID: s.UserID, ExpiresAt: s.ExpiresAt, Revoked: s.Revoked,
	}).Error
}

func (r *SessionRepository) Get(ctx context.Context, id string) (domain.Session, error) {
	var m sessionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Session{}, domain.ErrNotFound
		}
		return domain.Session{}, err
	}
	return domain.Session{ID: m.ID, UserID: m.UserID, ExpiresAt: m.ExpiresAt, Revoked: m.Revoked}, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&sessionModel{}).
		Where("id = ?", id).
		Update("revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
