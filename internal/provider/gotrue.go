package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"authpages/internal/auth"
	"authpages/internal/entity/dto"

	"github.com/sirupsen/logrus"
)

const defaultGoTrueTimeout = 10 * time.Second

// GoTrueOptions configures the remote backend. BaseURL includes any path
// prefix, e.g. https://<project>.supabase.co/auth/v1.
type GoTrueOptions struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Client  *http.Client
}

// GoTrue delegates sign in and sign up to a GoTrue-compatible auth service.
type GoTrue struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGoTrue validates opts and returns a client.
func NewGoTrue(opts GoTrueOptions) (*GoTrue, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("gotrue base url must not be empty")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid gotrue base url: %w", err)
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultGoTrueTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &GoTrue{baseURL: base, apiKey: opts.APIKey, client: client}, nil
}

func secondsOrDefault(seconds int) time.Duration {
	if seconds <= 0 {
		return defaultGoTrueTimeout
	}
	return time.Duration(seconds) * time.Second
}

type gotruePasswordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type gotrueSignUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

type gotrueUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	CreatedAt    time.Time      `json:"created_at"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type gotrueSession struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	ExpiresAt   int64       `json:"expires_at"`
	User        *gotrueUser `json:"user"`
}

// gotrueError covers both the current {code,error_code,msg} layout and the
// older OAuth-style {error,error_description} one.
type gotrueError struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorName        string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// SignIn uses the password grant of /token.
func (g *GoTrue) SignIn(ctx context.Context, email, password string) (*dto.Session, error) {
	body, err := g.post(ctx, "/token?grant_type=password", gotruePasswordGrant{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	var sess gotrueSession
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, fmt.Errorf("decode gotrue session: %w", err)
	}
	return sess.toDTO(), nil
}

// SignUp registers the account with the display name in user metadata. When
// the project requires email confirmation the returned session has no token.
func (g *GoTrue) SignUp(ctx context.Context, email, password, displayName string) (*dto.Session, error) {
	req := gotrueSignUpRequest{
		Email:    email,
		Password: password,
		Data:     map[string]any{auth.MetadataDisplayName: displayName},
	}
	body, err := g.post(ctx, "/signup", req)
	if err != nil {
		return nil, err
	}

	var sess gotrueSession
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, fmt.Errorf("decode gotrue signup: %w", err)
	}
	if sess.User == nil {
		var user gotrueUser
		if err := json.Unmarshal(body, &user); err != nil {
			return nil, fmt.Errorf("decode gotrue user: %w", err)
		}
		sess.User = &user
	}
	return sess.toDTO(), nil
}

func (g *GoTrue) post(ctx context.Context, path string, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		req.Header.Set("apikey", g.apiKey)
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Error("gotrue request failed")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gotrue response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		perr := decodeGoTrueError(resp.StatusCode, body)
		logrus.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
			"code":   perr.Code,
		}).Warn("gotrue rejected request")
		return nil, perr
	}
	return body, nil
}

func decodeGoTrueError(status int, body []byte) *Error {
	perr := &Error{Status: status}
	var payload gotrueError
	if err := json.Unmarshal(body, &payload); err != nil {
		return perr
	}
	perr.Code = firstNonEmpty(payload.ErrorCode, payload.ErrorName)
	perr.Message = firstNonEmpty(payload.Msg, payload.ErrorDescription, payload.Message)
	return perr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (s *gotrueSession) toDTO() *dto.Session {
	out := &dto.Session{
		AccessToken: s.AccessToken,
		TokenType:   s.TokenType,
	}
	switch {
	case s.ExpiresAt > 0:
		out.ExpiresAt = time.Unix(s.ExpiresAt, 0).UTC()
	case s.ExpiresIn > 0:
		out.ExpiresAt = time.Now().UTC().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	if s.User != nil {
		name, _ := s.User.UserMetadata[auth.MetadataDisplayName].(string)
		out.User = dto.UserSummary{
			ID:          s.User.ID,
			Email:       s.User.Email,
			DisplayName: name,
			CreatedAt:   s.User.CreatedAt,
		}
	}
	return out
}
