package provider

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"authpages/internal/auth"
	"authpages/internal/entity/converter"
	"authpages/internal/entity/db"
	"authpages/internal/entity/dto"
	"authpages/internal/model"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	CodeInvalidCredentials = "invalid_credentials"
	CodeUserExists         = "user_already_exists"
	CodeUserDisabled       = "user_banned"
	CodeWeakPassword       = "weak_password"
)

// Local keeps accounts in the configured SQL database and issues its own JWTs.
type Local struct {
	repo   model.Repository
	hasher *auth.Hasher
	tokens *auth.Manager
}

// NewLocal creates a database-backed provider.
func NewLocal(repo model.Repository, hasher *auth.Hasher, tokens *auth.Manager) *Local {
	return &Local{repo: repo, hasher: hasher, tokens: tokens}
}

func invalidCredentials() *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeInvalidCredentials, Message: MsgInvalidCredentials}
}

// SignIn checks the password against the stored hash.
func (p *Local) SignIn(ctx context.Context, email, password string) (*dto.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := p.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithField("email", email).Warn("login attempt for unknown email")
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if err := p.hasher.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			logrus.WithField("email", email).Warn("password verification failed")
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, &Error{Status: http.StatusForbidden, Code: CodeUserDisabled, Message: MsgUserDisabled}
	}

	return p.session(user)
}

// SignUp creates an active account and signs it in immediately.
func (p *Local) SignUp(ctx context.Context, email, password, displayName string) (*dto.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := p.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, userExists()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := p.hasher.Hash(password)
	if err != nil {
		// bcrypt 只接受 72 字节以内的密码
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, &Error{Status: http.StatusUnprocessableEntity, Code: CodeWeakPassword, Message: MsgPasswordTooLong}
		}
		return nil, err
	}

	user := &db.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
		IsActive:     true,
	}
	if err := p.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, userExists()
		}
		return nil, err
	}

	logrus.WithField("user_id", user.ID).Info("user registered")
	return p.session(user)
}

// User reloads the account behind a session so profile changes show up without a new login.
func (p *Local) User(ctx context.Context, id string) (*dto.UserSummary, error) {
	userID, err := strconv.ParseUint(id, 10, 64)
	if err != nil || userID == 0 {
		return nil, ErrUnknownUser
	}
	user, err := p.repo.GetUserByID(ctx, uint(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUnknownUser
	}
	summary := converter.UserToSummary(user)
	return &summary, nil
}

func userExists() *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Code: CodeUserExists, Message: MsgUserExists}
}

func (p *Local) session(user *db.User) (*dto.Session, error) {
	summary := converter.UserToSummary(user)
	token, expiresAt, err := p.tokens.GenerateToken(summary)
	if err != nil {
		return nil, err
	}
	return &dto.Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        summary,
	}, nil
}
