package converter

import (
	"testing"
	"time"

	"authpages/internal/entity/db"
)

func TestUserToSummary(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	summary := UserToSummary(&db.User{ID: 42, Email: "user@example.com", DisplayName: "user", CreatedAt: created})
	if summary.ID != "42" {
		t.Fatalf("expected id 42, got %q", summary.ID)
	}
	if summary.Email != "user@example.com" || summary.DisplayName != "user" {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !summary.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at %v, got %v", created, summary.CreatedAt)
	}
}

func TestUserToSummaryNil(t *testing.T) {
	if got := UserToSummary(nil); got.ID != "" {
		t.Fatalf("expected empty summary, got %+v", got)
	}
}
