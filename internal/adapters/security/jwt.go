package security

import (
	"crypto/rand"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kaju0475/samduk/internal/ports"
)

// JWTSigner signs and validates HS256 session tokens. The key is held at
// adapter level so the application layer stays crypto-library agnostic.
type JWTSigner struct {
	secret []byte
}

// NewJWTSigner builds a signer from the configured secret. An empty secret
// falls back to a random ephemeral key, which unblocks local runs but makes
// tokens invalid across restarts.
func NewJWTSigner(secret string) (*JWTSigner, error) {
	if secret != "" {
		return &JWTSigner{secret: []byte(secret)}, nil
	}
	slog.Default().Warn("jwt secret not configured, using ephemeral key")
	ephemeral := make([]byte, 32)
	if _, err := rand.Read(ephemeral); err != nil {
		return nil, err
	}
	return &JWTSigner{secret: ephemeral}, nil
}

type sessionClaims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

func (s *JWTSigner) Sign(claims ports.AuthClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
		SessionID: claims.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	return token.SignedString(s.secret)
}

func (s *JWTSigner) ParseAndValidate(raw string) (ports.AuthClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ports.AuthClaims{}, errors.New("invalid token")
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok {
		return ports.AuthClaims{}, errors.New("invalid claims")
	}
	out := ports.AuthClaims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
		SessionID: claims.SessionID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	} else {
		return ports.AuthClaims{}, errors.New("token missing expiry")
	}
	if !out.ExpiresAt.After(time.Now()) {
		return ports.AuthClaims{}, errors.New("token expired")
	}
	return out, nil
}
