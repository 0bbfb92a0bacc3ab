package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newGoTrueServer(t *testing.T, handler http.HandlerFunc) *GoTrue {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g, err := NewGoTrue(GoTrueOptions{BaseURL: srv.URL + "/auth/v1/", APIKey: "anon-key"})
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}
	return g
}

func TestGoTrueSignIn(t *testing.T) {
	expires := time.Now().Add(time.Hour).Unix()
	g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		if r.Header.Get("apikey") != "anon-key" {
			t.Errorf("expected apikey header, got %q", r.Header.Get("apikey"))
		}
		var body gotruePasswordGrant
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Email != "user@example.com" || body.Password != "x" {
			t.Errorf("unexpected credentials %+v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok",
			"token_type":   "bearer",
			"expires_at":   expires,
			"user": map[string]any{
				"id":            "uuid-1",
				"email":         "user@example.com",
				"user_metadata": map[string]any{"display_name": "someone"},
			},
		})
	})

	sess, err := g.SignIn(context.Background(), "user@example.com", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.AccessToken != "tok" || sess.User.ID != "uuid-1" || sess.User.DisplayName != "someone" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if sess.ExpiresAt.Unix() != expires {
		t.Fatalf("expected expiry %d, got %d", expires, sess.ExpiresAt.Unix())
	}
}

func TestGoTrueSignInRejected(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{
			name:     "CurrentLayout",
			status:   http.StatusBadRequest,
			body:     `{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`,
			expected: "Invalid login credentials",
		},
		{
			name:     "OAuthLayout",
			status:   http.StatusBadRequest,
			body:     `{"error":"invalid_grant","error_description":"Invalid login credentials"}`,
			expected: "Invalid login credentials",
		},
		{
			name:     "NotJSON",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := g.SignIn(context.Background(), "user@example.com", "x")
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("expected provider error, got %v", err)
			}
			if perr.Status != tt.status || perr.Message != tt.expected {
				t.Fatalf("unexpected error %+v", perr)
			}
		})
	}
}

func TestGoTrueSignUpWithoutSession(t *testing.T) {
	g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/signup" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body gotrueSignUpRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Data["display_name"] != "newbie" {
			t.Errorf("expected display_name metadata, got %v", body.Data)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "uuid-2",
			"email":         body.Email,
			"user_metadata": body.Data,
		})
	})

	sess, err := g.SignUp(context.Background(), "new@example.com", "Abcdef1!", "newbie")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.AccessToken != "" {
		t.Fatalf("expected no token before confirmation, got %q", sess.AccessToken)
	}
	if sess.User.ID != "uuid-2" || sess.User.DisplayName != "newbie" {
		t.Fatalf("unexpected user %+v", sess.User)
	}
}

func TestGoTrueSignUpDuplicate(t *testing.T) {
	g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`))
	})
	_, err := g.SignUp(context.Background(), "dup@example.com", "Abcdef1!", "dup")
	if !IsCode(err, CodeUserExists) {
		t.Fatalf("expected %s, got %v", CodeUserExists, err)
	}
}

func TestNewGoTrueValidation(t *testing.T) {
	if _, err := NewGoTrue(GoTrueOptions{}); err == nil {
		t.Fatal("expected error for empty base url")
	}
	if _, err := NewGoTrue(GoTrueOptions{BaseURL: "not a url"}); err == nil {
		t.Fatal("expected error for malformed base url")
	}
}
