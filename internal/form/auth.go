package form

import (
	"context"

	"authpages/internal/entity/dto"
	"authpages/internal/provider"
	"authpages/internal/schema"
)

// NewLogin returns a login form that signs in through p.
func NewLogin(p provider.Provider, opts Options) *Controller {
	return New(schema.Login(), func(ctx context.Context, values map[string]any) (*dto.Session, error) {
		payload := schema.LoginFrom(values)
		return p.SignIn(ctx, payload.Email, payload.Password)
	}, opts)
}

// NewSignup returns a signup form that creates the account through p,
// using the username as display name.
func NewSignup(p provider.Provider, opts Options) *Controller {
	return New(schema.Signup(), func(ctx context.Context, values map[string]any) (*dto.Session, error) {
		payload := schema.SignupFrom(values)
		return p.SignUp(ctx, payload.Email, payload.Password, payload.Username)
	}, opts)
}
