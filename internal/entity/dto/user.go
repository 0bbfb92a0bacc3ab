package dto

import "time"

// UserSummary is a lightweight user description returned to clients.
// ID is a string so that remote backends using UUIDs fit as well.
type UserSummary struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
