package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kaju0475/samduk/internal/domain"
	"github.com/kaju0475/samduk/internal/ports"
)

// Login verifies the password and issues a bearer token bound to a fresh
// session. Unknown username and wrong password fail identically.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return LoginResult{}, fmt.Errorf("%w: username and password are required", domain.ErrInvalidRequest)
	}
	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return LoginResult{}, domain.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	return s.openSession(ctx, user)
}

// Logout revokes the caller's session. Tokens carrying the session id stop
// working immediately even though the JWT itself is still unexpired.
func (s *Service) Logout(ctx context.Context, actor Actor) error {
	if actor.SessionID == "" {
		return domain.ErrUnauthorized
	}
	return s.sessions.Revoke(ctx, actor.SessionID)
}

// IssueQRToken produces a short-lived one-shot code the caller can print as
// a QR label; QRLogin exchanges it for a regular session.
func (s *Service) IssueQRToken(ctx context.Context, actor Actor) (QRTokenResult, error) {
	if actor.UserID == "" {
		return QRTokenResult{}, domain.ErrUnauthorized
	}
	code := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	expiresAt := s.nowFn().Add(s.cfg.QRTokenTTL)
	if err := s.qrTokens.Issue(ctx, code, actor.UserID, expiresAt); err != nil {
		return QRTokenResult{}, err
	}
	return QRTokenResult{QRCode: code, ExpiresAt: expiresAt}, nil
}

// QRLogin consumes a QR code and opens a session for its owner. A code can
// log in at most once.
func (s *Service) QRLogin(ctx context.Context, qrCode string) (LoginResult, error) {
	qrCode = strings.TrimSpace(qrCode)
	if qrCode == "" {
		return LoginResult{}, fmt.Errorf("%w: qr code is required", domain.ErrInvalidRequest)
	}
	userID, err := s.qrTokens.Consume(ctx, qrCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return LoginResult{}, domain.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return LoginResult{}, err
	}
	return s.openSession(ctx, user)
}

func (s *Service) openSession(ctx context.Context, user domain.User) (LoginResult, error) {
	now := s.nowFn()
	session := domain.Session{
		ID:        "sess_" + uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return LoginResult{}, err
	}
	expiresAt := now.Add(s.cfg.TokenTTL)
	token, err := s.signer.Sign(ports.AuthClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		SessionID: session.ID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate resolves a bearer token into an Actor, rejecting revoked and
// expired sessions. The http auth middleware is its only caller.
func (s *Service) Authenticate(ctx context.Context, token string) (Actor, error) {
	claims, err := s.signer.ParseAndValidate(token)
	if err != nil {
		return Actor{}, domain.ErrUnauthorized
	}
	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Actor{}, domain.ErrSessionRevoked
		}
		return Actor{}, err
	}
	if session.Revoked {
		return Actor{}, domain.ErrSessionRevoked
	}
	if !session.ExpiresAt.After(s.nowFn()) {
		return Actor{}, domain.ErrSessionExpired
	}
	return Actor{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
		SessionID: claims.SessionID,
	}, nil
}

// EnsureUser creates an operator account if the username is free. Bootstrap
// uses it to seed the admin account from config; a conflict means the account
// already exists and is not an error.
func (s *Service) EnsureUser(ctx context.Context, username, name, role, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", domain.ErrInvalidRequest)
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	if role == "" {
		role = domain.RoleWorker
	}
	user := domain.User{
		ID:           "user_" + uuid.NewString(),
		Username:     username,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    s.nowFn(),
	}
	err = s.users.Create(ctx, user)
	if errors.Is(err, domain.ErrConflict) {
		return nil
	}
	return err
}
