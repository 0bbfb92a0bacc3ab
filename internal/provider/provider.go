// Package provider holds the auth backends that verify credentials and
// create accounts on behalf of the login and signup forms.
package provider

import (
	"context"
	"errors"
	"fmt"

	"authpages/internal/auth"
	"authpages/internal/config"
	"authpages/internal/entity/dto"
	"authpages/internal/model"
)

// Messages mirror the wording GoTrue uses, so the pages read the same whichever backend is active.
const (
	MsgInvalidCredentials = "Invalid login credentials"
	MsgUserExists         = "User already registered"
	MsgUserDisabled       = "User is disabled"
	MsgPasswordTooLong    = "Password should be at most 72 characters"
)

// Provider verifies credentials and creates accounts.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*dto.Session, error)
	SignUp(ctx context.Context, email, password, displayName string) (*dto.Session, error)
}

// ErrUnknownUser is returned by UserLookup when a session refers to an account
// that no longer exists or has been disabled.
var ErrUnknownUser = errors.New("provider: unknown user")

// UserLookup is implemented by backends that can reload the account behind a session.
type UserLookup interface {
	User(ctx context.Context, id string) (*dto.UserSummary, error)
}

// Error is a failure reported by an auth backend. Message is meant for end users.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("auth backend error (status %d, code %q)", e.Status, e.Code)
}

// IsCode reports whether err is a provider Error with the given code.
func IsCode(err error, code string) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Code == code
}

// New builds the backend selected by cfg.AuthBackend.
func New(cfg config.Config, repo model.Repository, tokens *auth.Manager) (Provider, error) {
	switch cfg.AuthBackend {
	case config.AuthBackendLocal, "":
		if repo == nil {
			return nil, errors.New("local auth backend requires a database")
		}
		return NewLocal(repo, auth.NewHasher(0), tokens), nil
	case config.AuthBackendGoTrue:
		return NewGoTrue(GoTrueOptions{
			BaseURL: cfg.GoTrueURL,
			APIKey:  cfg.GoTrueAPIKey,
			Timeout: secondsOrDefault(cfg.GoTrueTimeoutSeconds),
		})
	default:
		return nil, fmt.Errorf("unsupported auth backend: %s", cfg.AuthBackend)
	}
}
