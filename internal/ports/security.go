package ports

import "time"

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AuthClaims is the token payload exchanged between the application layer and
// the signer adapter.
type AuthClaims struct {
	UserID    string
	Username  string
	Role      string
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenSigner interface {
	Sign(claims AuthClaims) (string, error)
	ParseAndValidate(token string) (AuthClaims, error)
}
