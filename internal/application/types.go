package application

import (
	"time"

	"github.com/kaju0475/samduk/internal/domain"
	"github.com/kaju0475/samduk/internal/ports"
)

// Config carries auth-related tuning resolved by bootstrap.
type Config struct {
	TokenTTL   time.Duration
	SessionTTL time.Duration
	QRTokenTTL time.Duration
}

// Dependencies wires repositories and security adapters into the service.
type Dependencies struct {
	Config    Config
	Cylinders ports.CylinderRepository
	History   ports.HistoryRepository
	Commits   ports.CommitStore
	Customers ports.CustomerRepository
	Users     ports.UserRepository
	Sessions  ports.SessionStore
	QRTokens  ports.QRTokenStore
	Hasher    ports.PasswordHasher
	Signer    ports.TokenSigner
}

// Actor identifies the authenticated operator behind a request.
type Actor struct {
	UserID    string
	Username  string
	Role      string
	SessionID string
}

type CreateCylinderInput struct {
	SerialNumber  string
	GasType       string
	ContainerType string
	Capacity      string
	Location      string
	Status        string
	Memo          string
}

type UpdateCylinderInput struct {
	ID    string
	Patch ports.CylinderPatch
}

type ListCylindersInput struct {
	Status         string
	GasType        string
	Serial         string
	CustomerID     string
	IncludeDeleted bool
}

type CreateCustomerInput struct {
	Name    string
	Phone   string
	Address string
}

// WorkInput is one batch work request: one action fanned out over a set of
// cylinder ids, optionally bound to a customer.
type WorkInput struct {
	Action      string
	CylinderIDs []string
	CustomerID  string
}

// WorkItemResult records the independent outcome of one cylinder in a batch.
// Exactly one of Status / ErrorCode is set.
type WorkItemResult struct {
	CylinderID string        `json:"cylinderId"`
	Status     domain.Status `json:"status,omitempty"`
	ErrorCode  string        `json:"error,omitempty"`
	Message    string        `json:"message,omitempty"`
}

// BatchResult is the aggregate work outcome. Processed is true only when
// every item in the batch succeeded; per-item failures stay visible in Cylinders.
type BatchResult struct {
	Processed  bool             `json:"processed"`
	Action     domain.Action    `json:"action"`
	CustomerID string           `json:"customerId,omitempty"`
	Cylinders  []WorkItemResult `json:"cylinders"`
}

type HistoryQueryInput struct {
	CylinderIDs []string
	Action      string
	From, To    time.Time
}

// LongTermReport is a derived, read-only rollup over the entity store and the
// full ledger. Recomputing it with no intervening writes yields identical
// output.
type LongTermReport struct {
	TotalsByStatus map[domain.Status]int `json:"totalsByStatus"`
	TotalsByAction map[domain.Action]int `json:"totalsByAction"`
	TotalCylinders int                   `json:"totalCylinders"`
	AsOf           time.Time             `json:"asOf"`
}

// DashboardStats mirrors the factory wallboard: how many cylinders sit in
// each operational bucket right now.
type DashboardStats struct {
	Standby   int `json:"standby"`
	Charging  int `json:"charging"`
	Full      int `json:"full"`
	Delivered int `json:"delivered"`
	Total     int `json:"total"`
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

type QRTokenResult struct {
	QRCode    string    `json:"qrCode"`
	ExpiresAt time.Time `json:"expiresAt"`
}
