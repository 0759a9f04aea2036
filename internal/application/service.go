package application

import (
	"sync"
	"time"

	"github.com/kaju0475/samduk/internal/ports"
)

// Service implements every use case: master CRUD, the batch work processor,
// history queries, reports, and the session boundary. All writers to the
// cylinder store and the ledger go through here.
type Service struct {
	cfg       Config
	cylinders ports.CylinderRepository
	history   ports.HistoryRepository
	commits   ports.CommitStore
	customers ports.CustomerRepository
	users     ports.UserRepository
	sessions  ports.SessionStore
	qrTokens  ports.QRTokenStore
	hasher    ports.PasswordHasher
	signer    ports.TokenSigner

	// locks serializes validate-and-commit per cylinder id, so the status
	// mutation and the ledger append of one accepted transition are observed
	// as a single unit. Different cylinder ids proceed in parallel.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	nowFn func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * 24 * time.Hour
	}
	if cfg.QRTokenTTL <= 0 {
		cfg.QRTokenTTL = 5 * time.Minute
	}
	return &Service{
		cfg:       cfg,
		cylinders: deps.Cylinders,
		history:   deps.History,
		commits:   deps.Commits,
		customers: deps.Customers,
		users:     deps.Users,
		sessions:  deps.Sessions,
		qrTokens:  deps.QRTokens,
		hasher:    deps.Hasher,
		signer:    deps.Signer,
		locks:     map[string]*sync.Mutex{},
		nowFn:     time.Now,
	}
}

// WithNow overrides the service clock. Test hook.
func (s *Service) WithNow(fn func() time.Time) *Service {
	s.nowFn = fn
	return s
}

// lockCylinder returns the per-id mutex, creating it on first use. The lock
// set only grows; entries are a mutex each, cheap relative to cylinder count.
func (s *Service) lockCylinder(id string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	return mu
}
