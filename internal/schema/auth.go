package schema

import (
	"fmt"
	"sync"
)

// Field names shared by the login and signup forms.
const (
	FieldEmail           = "email"
	FieldUsername        = "username"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

// UsernameMaxLength is the enforced upper bound on username length, in characters.
const UsernameMaxLength = 20

const (
	MsgEmailEmpty        = "Please enter your email!"
	MsgEmailInvalid      = "Enter your valid email!"
	MsgUsernameEmpty     = "Please enter your username!"
	MsgUsernameTooLong   = "Username must be at most 20 characters!"
	MsgPasswordEmpty     = "Please enter your password!"
	MsgPasswordTooShort  = "Password must be at least 8 characters!"
	MsgPasswordNoUpper   = "Password must contain at least one uppercase letter!"
	MsgPasswordNoDigit   = "Password must contain at least one number!"
	MsgPasswordNoSpecial = "Password must contain at least one special character!"
	MsgPasswordMismatch  = "Your password don't match!"
)

// LoginPayload is a validated login submission.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupPayload is a validated signup submission.
type SignupPayload struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Values converts the payload into a schema candidate.
func (p LoginPayload) Values() map[string]any {
	return map[string]any{
		FieldEmail:    p.Email,
		FieldPassword: p.Password,
	}
}

// Values converts the payload into a schema candidate.
func (p SignupPayload) Values() map[string]any {
	return map[string]any{
		FieldEmail:           p.Email,
		FieldUsername:        p.Username,
		FieldPassword:        p.Password,
		FieldConfirmPassword: p.ConfirmPassword,
	}
}

// LoginFrom reads a login payload out of a candidate. Non-string values read as empty.
func LoginFrom(values map[string]any) LoginPayload {
	return LoginPayload{
		Email:    stringValue(values, FieldEmail),
		Password: stringValue(values, FieldPassword),
	}
}

// SignupFrom reads a signup payload out of a candidate. Non-string values read as empty.
func SignupFrom(values map[string]any) SignupPayload {
	return SignupPayload{
		Email:           stringValue(values, FieldEmail),
		Username:        stringValue(values, FieldUsername),
		Password:        stringValue(values, FieldPassword),
		ConfirmPassword: stringValue(values, FieldConfirmPassword),
	}
}

func stringValue(values map[string]any, key string) string {
	s, _ := values[key].(string)
	return s
}

var (
	buildOnce    sync.Once
	loginSchema  *Schema
	signupSchema *Schema
)

// Login returns the login schema: a valid email and a non-empty password.
func Login() *Schema {
	buildOnce.Do(build)
	return loginSchema
}

// Signup returns the signup schema including the password confirmation refinement.
func Signup() *Schema {
	buildOnce.Do(build)
	return signupSchema
}

func build() {
	v := NewValidator()
	emailRule := FieldRule{
		Field:  FieldEmail,
		Empty:  MsgEmailEmpty,
		Checks: []Check{{Tag: "email", Message: MsgEmailInvalid}},
	}

	loginSchema = New("login", v, []FieldRule{
		emailRule,
		{Field: FieldPassword, Empty: MsgPasswordEmpty},
	})

	signupSchema = New("signup", v, []FieldRule{
		emailRule,
		{
			Field:  FieldUsername,
			Empty:  MsgUsernameEmpty,
			Checks: []Check{{Tag: fmt.Sprintf("max=%d", UsernameMaxLength), Message: MsgUsernameTooLong}},
		},
		{
			Field: FieldPassword,
			Checks: []Check{
				{Tag: "min=8", Message: MsgPasswordTooShort},
				{Tag: TagHasUpper, Message: MsgPasswordNoUpper},
				{Tag: TagHasDigit, Message: MsgPasswordNoDigit},
				{Tag: TagHasSpecial, Message: MsgPasswordNoSpecial},
			},
		},
		{Field: FieldConfirmPassword},
	}, Refinement{
		Requires: []string{FieldPassword, FieldConfirmPassword},
		Target:   FieldConfirmPassword,
		Message:  MsgPasswordMismatch,
		Valid: func(values map[string]string) bool {
			return values[FieldPassword] == values[FieldConfirmPassword]
		},
	})
}
