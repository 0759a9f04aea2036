package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kaju0475/samduk/internal/application"
	"github.com/kaju0475/samduk/internal/domain"
)

func seedAdmin(t *testing.T, f *fixture) {
	t.Helper()
	if err := f.svc.EnsureUser(context.Background(), "admin", "관리자", domain.RoleAdmin, "secret-pw"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	seedAdmin(t, f)

	result, err := f.svc.Login(context.Background(), application.LoginInput{Username: "admin", Password: "secret-pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" || result.User.Username != "admin" {
		t.Fatalf("login result incomplete: %+v", result)
	}

	actor, err := f.svc.Authenticate(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if actor.Username != "admin" || actor.Role != domain.RoleAdmin || actor.SessionID == "" {
		t.Fatalf("actor incomplete: %+v", actor)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	seedAdmin(t, f)

	if _, err := f.svc.Login(context.Background(), application.LoginInput{Username: "admin", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.svc.Login(context.Background(), application.LoginInput{Username: "ghost", Password: "secret-pw"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user must fail the same way, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture(t)
	seedAdmin(t, f)

	result, err := f.svc.Login(context.Background(), application.LoginInput{Username: "admin", Password: "secret-pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	actor, err := f.svc.Authenticate(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := f.svc.Logout(context.Background(), actor); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := f.svc.Authenticate(context.Background(), result.Token); !errors.Is(err, domain.ErrSessionRevoked) {
		t.Fatalf("revoked session must be rejected, got %v", err)
	}
}

func TestQRLoginIsOneShot(t *testing.T) {
	f := newFixture(t)
	seedAdmin(t, f)

	login, err := f.svc.Login(context.Background(), application.LoginInput{Username: "admin", Password: "secret-pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	actor, err := f.svc.Authenticate(context.Background(), login.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	qr, err := f.svc.IssueQRToken(context.Background(), actor)
	if err != nil {
		t.Fatalf("issue qr: %v", err)
	}
	first, err := f.svc.QRLogin(context.Background(), qr.QRCode)
	if err != nil {
		t.Fatalf("qr login: %v", err)
	}
	if first.User.Username != "admin" {
		t.Fatalf("qr login wrong user: %+v", first.User)
	}
	if _, err := f.svc.QRLogin(context.Background(), qr.QRCode); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("qr code must be one-shot, got %v", err)
	}
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Authenticate(context.Background(), "not-a-jwt"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}
