package ports

import (
	"context"
	"time"

	"github.com/kaju0475/samduk/internal/domain"
)

// CylinderFilter narrows List results. Zero values mean "no constraint".
type CylinderFilter struct {
	Status         domain.Status
	GasType        string
	Serial         string
	CustomerID     string
	IncludeDeleted bool
}

// CylinderPatch is a field-level update; nil pointers leave the field as is.
// Status is deliberately absent: status only changes through the transition
// path (SetStatus).
type CylinderPatch struct {
	SerialNumber  *string
	GasType       *string
	ContainerType *string
	Capacity      *string
	Location      *string
	Memo          *string
}

// CylinderRepository reads cylinder state. All writes go through CommitStore
// so every mutation lands together with its ledger event.
type CylinderRepository interface {
	Get(ctx context.Context, id string) (domain.Cylinder, error)
	// GetBySerial resolves a non-deleted cylinder by its serial number.
	GetBySerial(ctx context.Context, serial string) (domain.Cylinder, error)
	List(ctx context.Context, filter CylinderFilter) ([]domain.Cylinder, error)
}

// CommitStore persists a cylinder mutation and its ledger event as one unit:
// both are durable or neither is. It is the only write path to the cylinder
// store and, besides the contract methods on HistoryRepository, to the ledger.
type CommitStore interface {
	// CommitCreate persists a new cylinder with its CREATE marker; returns
	// domain.ErrConflict when the serial number collides with another
	// non-deleted cylinder.
	CommitCreate(ctx context.Context, row domain.Cylinder, ev domain.Event) error
	CommitUpdate(ctx context.Context, id string, patch CylinderPatch, updatedAt time.Time, ev domain.Event) (domain.Cylinder, error)
	CommitDelete(ctx context.Context, id string, at time.Time, ev domain.Event) (domain.Cylinder, error)
	// CommitTransition is the transition engine's commit point. CustomerID
	// carries the holder for DELIVERED, empty otherwise.
	CommitTransition(ctx context.Context, id string, status domain.Status, customerID, location string, updatedAt time.Time, ev domain.Event) (domain.Cylinder, error)
}

// HistoryFilter narrows ledger queries. Results are always ordered by
// timestamp ascending.
type HistoryFilter struct {
	CylinderIDs []string
	Action      domain.Action
	From, To    time.Time
}

// HistoryRepository is the append-only ledger. No update or delete operation
// exists by contract.
type HistoryRepository interface {
	Append(ctx context.Context, ev domain.Event) error
	Query(ctx context.Context, filter HistoryFilter) ([]domain.Event, error)
	// CountByAction feeds the long-term report.
	CountByAction(ctx context.Context) (map[domain.Action]int, error)
}

type CustomerRepository interface {
	Get(ctx context.Context, id string) (domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	Create(ctx context.Context, row domain.Customer) error
}

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	Get(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, row domain.User) error
}

// SessionStore tracks live sessions. Backed by redis in deployed runs and by
// memory locally; both honor the expiry.
type SessionStore interface {
	Put(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	Revoke(ctx context.Context, id string) error
}

// QRTokenStore holds short-lived one-shot QR login codes.
type QRTokenStore interface {
	Issue(ctx context.Context, code, userID string, expiresAt time.Time) error
	// Consume resolves and invalidates the code in one step so a QR code can
	// never log in twice.
	Consume(ctx context.Context, code string) (string, error)
}
