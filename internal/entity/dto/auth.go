package dto

import "time"

// Session is what an auth backend hands back after a successful sign in or sign up.
// AccessToken may be empty when the backend requires email confirmation first.
type Session struct {
	AccessToken string      `json:"access_token,omitempty"`
	TokenType   string      `json:"token_type,omitempty"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        UserSummary `json:"user"`
}

// AuthResponse is returned by the JSON API after a successful submission.
type AuthResponse struct {
	Token     string      `json:"token,omitempty"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserSummary `json:"user"`
	Redirect  string      `json:"redirect"`
}
