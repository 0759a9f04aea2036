package domain

import "time"

// Status is the closed set of cylinder lifecycle states. The original paper
// ledger tracked these as 공병/충전중/실병/납품; the canonical English
// vocabulary here is the one documented in DESIGN.md.
type Status string

const (
	// StatusEmpty: discharged and back at the factory, ready for charging.
	StatusEmpty Status = "EMPTY"
	// StatusCharging: on the charging rack between START and COMPLETE.
	StatusCharging Status = "CHARGING"
	// StatusFull: charged and ready for delivery.
	StatusFull Status = "FULL"
	// StatusDelivered: out at a customer site.
	StatusDelivered Status = "DELIVERED"
	// StatusUnderInspection: sent out for periodic pressure inspection.
	StatusUnderInspection Status = "UNDER_INSPECTION"
	// StatusDisposed: scrapped; accepts no further work action.
	StatusDisposed Status = "DISPOSED"
)

// ValidStatus reports whether s belongs to the closed status set.
func ValidStatus(s Status) bool {
	switch s {
	case StatusEmpty, StatusCharging, StatusFull, StatusDelivered,
		StatusUnderInspection, StatusDisposed:
		return true
	}
	return false
}

// Cylinder is a tracked physical gas-cylinder asset. Status is never mutated
// except through Transition; deletion is a flag, never a row removal, so the
// history ledger keeps referential integrity.
type Cylinder struct {
	ID            string     `json:"id"`
	SerialNumber  string     `json:"serialNumber"`
	GasType       string     `json:"gasType"`
	ContainerType string     `json:"containerType"`
	Capacity      string     `json:"capacity"`
	Location      string     `json:"location"`
	Status        Status     `json:"status"`
	CustomerID    string     `json:"customerId,omitempty"`
	Memo          string     `json:"memo,omitempty"`
	Deleted       bool       `json:"deleted"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Customer is a delivery counterparty referenced by DELIVERY/COLLECTION work.
type Customer struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone,omitempty"`
	Address   string     `json:"address,omitempty"`
	Deleted   bool       `json:"deleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// User is an operator account. Passwords are stored only as bcrypt hashes.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

const (
	RoleAdmin  = "admin"
	RoleWorker = "worker"
)

// Session is a logged-in credential. Logout marks it revoked; tokens carrying
// a revoked session id are rejected by the auth middleware.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	Revoked   bool
}
