package provider

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"authpages/internal/auth"
	"authpages/internal/config"
	"authpages/internal/model"

	"golang.org/x/crypto/bcrypt"
)

func newLocal(t *testing.T) (*Local, *auth.Manager) {
	t.Helper()
	repo, err := model.InitRepository(&config.Config{DBType: model.DBTypeSQLite, DBPath: filepath.Join(t.TempDir(), "auth.db")})
	if err != nil {
		t.Fatalf("unexpected error initialising repository: %v", err)
	}
	tokens, err := auth.NewManager("test-secret", "test", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}
	return NewLocal(repo, auth.NewHasher(bcrypt.MinCost), tokens), tokens
}

func TestLocalSignUpThenSignIn(t *testing.T) {
	p, tokens := newLocal(t)
	ctx := context.Background()

	sess, err := p.SignUp(ctx, "User@Example.com", "Abcdef1!", "someone")
	if err != nil {
		t.Fatalf("unexpected error signing up: %v", err)
	}
	if sess.AccessToken == "" {
		t.Fatal("expected access token after sign up")
	}
	if sess.User.Email != "user@example.com" || sess.User.DisplayName != "someone" {
		t.Fatalf("unexpected user %+v", sess.User)
	}

	sess, err = p.SignIn(ctx, "user@example.com", "Abcdef1!")
	if err != nil {
		t.Fatalf("unexpected error signing in: %v", err)
	}
	claims, err := tokens.ParseToken(sess.AccessToken)
	if err != nil {
		t.Fatalf("unexpected error parsing issued token: %v", err)
	}
	if claims.Summary().DisplayName != "someone" {
		t.Fatalf("expected display name in token, got %+v", claims.Summary())
	}
}

func TestLocalSignInFailures(t *testing.T) {
	p, _ := newLocal(t)
	ctx := context.Background()
	if _, err := p.SignUp(ctx, "user@example.com", "Abcdef1!", "u"); err != nil {
		t.Fatalf("unexpected error signing up: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "UnknownEmail", email: "nobody@example.com", password: "Abcdef1!"},
		{name: "WrongPassword", email: "user@example.com", password: "wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.SignIn(ctx, tt.email, tt.password)
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("expected provider error, got %v", err)
			}
			if perr.Message != MsgInvalidCredentials || perr.Code != CodeInvalidCredentials {
				t.Fatalf("unexpected error %+v", perr)
			}
		})
	}
}

func TestLocalSignUpDuplicate(t *testing.T) {
	p, _ := newLocal(t)
	ctx := context.Background()
	if _, err := p.SignUp(ctx, "user@example.com", "Abcdef1!", "u"); err != nil {
		t.Fatalf("unexpected error signing up: %v", err)
	}
	_, err := p.SignUp(ctx, "USER@example.com", "Abcdef1!", "u")
	if !IsCode(err, CodeUserExists) {
		t.Fatalf("expected %s, got %v", CodeUserExists, err)
	}
	if err.Error() != MsgUserExists {
		t.Fatalf("expected message %q, got %q", MsgUserExists, err.Error())
	}
}

func TestLocalSignUpPasswordTooLong(t *testing.T) {
	p, _ := newLocal(t)
	ctx := context.Background()

	password := "Abcdef1!" + strings.Repeat("a", 70)
	_, err := p.SignUp(ctx, "long@example.com", password, "u")
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if perr.Status != http.StatusUnprocessableEntity || perr.Code != CodeWeakPassword || perr.Message != MsgPasswordTooLong {
		t.Fatalf("unexpected error %+v", perr)
	}

	if _, err := p.SignIn(ctx, "long@example.com", password); !IsCode(err, CodeInvalidCredentials) {
		t.Fatalf("expected no account to be created, got %v", err)
	}
}

func TestLocalUserLookup(t *testing.T) {
	p, _ := newLocal(t)
	ctx := context.Background()
	sess, err := p.SignUp(ctx, "user@example.com", "Abcdef1!", "someone")
	if err != nil {
		t.Fatalf("unexpected error signing up: %v", err)
	}

	user, err := p.User(ctx, sess.User.ID)
	if err != nil {
		t.Fatalf("unexpected error loading user: %v", err)
	}
	if user.Email != "user@example.com" || user.DisplayName != "someone" {
		t.Fatalf("unexpected user %+v", user)
	}

	for _, id := range []string{"", "0", "abc", "999"} {
		if _, err := p.User(ctx, id); !errors.Is(err, ErrUnknownUser) {
			t.Errorf("id %q: expected ErrUnknownUser, got %v", id, err)
		}
	}
}

func TestNewSelectsBackend(t *testing.T) {
	tokens, _ := auth.NewManager("s", "", time.Hour)

	if _, err := New(config.Config{AuthBackend: config.AuthBackendLocal}, nil, tokens); err == nil {
		t.Fatal("expected error for local backend without repository")
	}
	if _, err := New(config.Config{AuthBackend: "ldap"}, nil, tokens); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	p, err := New(config.Config{AuthBackend: config.AuthBackendGoTrue, GoTrueURL: "http://localhost:9999"}, nil, tokens)
	if err != nil {
		t.Fatalf("unexpected error building gotrue backend: %v", err)
	}
	if _, ok := p.(*GoTrue); !ok {
		t.Fatalf("expected *GoTrue, got %T", p)
	}
}

func TestErrorText(t *testing.T) {
	if got := (&Error{Status: 500}).Error(); got == "" {
		t.Fatal("expected fallback text for error without message")
	}
	if got := (&Error{Message: "boom"}).Error(); got != "boom" {
		t.Fatalf("expected boom, got %q", got)
	}
}
