package postgres

import (
	"time"

	"github.com/kaju0475/samduk/internal/domain"
)

type cylinderModel struct {
	ID            string `gorm:"primaryKey;column:id"`
	SerialNumber  string `gorm:"column:serial_number;index"`
	GasType       string `gorm:"column:gas_type;index"`
	ContainerType string `gorm:"column:container_type"`
	Capacity      string `gorm:"column:capacity"`
	Location      string `gorm:"column:location"`
	Status        string `gorm:"column:status;index"`
	CustomerID    string `gorm:"column:customer_id;index"`
	Memo          string `gorm:"column:memo"`
	Deleted       bool   `gorm:"column:deleted;index"`
	DeletedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (cylinderModel) TableName() string { return "cylinders" }

type historyEventModel struct {
	ID              string    `gorm:"primaryKey;column:id"`
	CylinderID      string    `gorm:"column:cylinder_id;index"`
	Action          string    `gorm:"column:action;index"`
	Timestamp       time.Time `gorm:"column:timestamp;index"`
	Seq             int64     `gorm:"column:seq;autoIncrement"`
	CustomerID      string    `gorm:"column:customer_id"`
	WorkerID        string    `gorm:"column:worker_id"`
	ResultingStatus string    `gorm:"column:resulting_status"`
	Memo            string    `gorm:"column:memo"`
}

func (historyEventModel) TableName() string { return "history_events" }

type customerModel struct {
	ID        string `gorm:"primaryKey;column:id"`
	Name      string `gorm:"column:name"`
	Phone     string `gorm:"column:phone"`
	Address   string `gorm:"column:address"`
	Deleted   bool   `gorm:"column:deleted"`
	DeletedAt *time.Time
	CreatedAt time.Time
}

func (customerModel) TableName() string { return "customers" }

type userModel struct {
	ID           string `gorm:"primaryKey;column:id"`
	Username     string `gorm:"column:username;uniqueIndex"`
	Name         string `gorm:"column:name"`
	Role         string `gorm:"column:role"`
	PasswordHash string `gorm:"column:password_hash"`
	CreatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

type sessionModel struct {
	ID        string `gorm:"primaryKey;column:id"`
	UserID    string `gorm:"column:user_id;index"`
	ExpiresAt time.Time
	Revoked   bool `gorm:"column:revoked"`
}

func (sessionModel) TableName() string { return "sessions" }

func toCylinderModel(c domain.Cylinder) cylinderModel {
	return cylinderModel{
		ID:            c.ID,
		SerialNumber:  c.SerialNumber,
		GasType:       c.GasType,
		ContainerType: c.ContainerType,
		Capacity:      c.Capacity,
		Location:      c.Location,
		Status:        string(c.Status),
		CustomerID:    c.CustomerID,
		Memo:          c.Memo,
		Deleted:       c.Deleted,
		DeletedAt:     c.DeletedAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func fromCylinderModel(m cylinderModel) domain.Cylinder {
	return domain.Cylinder{
		ID:            m.ID,
		SerialNumber:  m.SerialNumber,
		GasType:       m.GasType,
		ContainerType: m.ContainerType,
		Capacity:      m.Capacity,
		Location:      m.Location,
		Status:        domain.Status(m.Status),
		CustomerID:    m.CustomerID,
		Memo:          m.Memo,
		Deleted:       m.Deleted,
		DeletedAt:     m.DeletedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toEventModel(ev domain.Event) historyEventModel {
	return historyEventModel{
		ID:              ev.ID,
		CylinderID:      ev.CylinderID,
		Action:          string(ev.Action),
		Timestamp:       ev.Timestamp,
		CustomerID:      ev.CustomerID,
		WorkerID:        ev.WorkerID,
		ResultingStatus: string(ev.ResultingStatus),
		Memo:            ev.Memo,
	}
}

func fromEventModel(m historyEventModel) domain.Event {
	return domain.Event{
		ID:              m.ID,
		CylinderID:      m.CylinderID,
		Action:          domain.Action(m.Action),
		Timestamp:       m.Timestamp,
		CustomerID:      m.CustomerID,
		WorkerID:        m.WorkerID,
		ResultingStatus: domain.Status(m.ResultingStatus),
		Memo:            m.Memo,
	}
}
