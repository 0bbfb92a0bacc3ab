package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"authpages/internal/entity/dto"

	"github.com/golang-jwt/jwt/v5"
)

// MetadataDisplayName is the user_metadata key carrying the display name.
const MetadataDisplayName = "display_name"

// Claims mirrors the access-token layout GoTrue issues, so tokens from the
// local backend and from a remote GoTrue project parse the same way.
type Claims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// Summary extracts the user description carried by the token.
func (c *Claims) Summary() dto.UserSummary {
	if c == nil {
		return dto.UserSummary{}
	}
	name, _ := c.UserMetadata[MetadataDisplayName].(string)
	return dto.UserSummary{
		ID:          c.Subject,
		Email:       c.Email,
		DisplayName: name,
	}
}

// Manager encapsulates JWT generation and validation.
type Manager struct {
	secret []byte
	issuer string
	expiry time.Duration
}

// NewManager creates a new JWT manager.
func NewManager(secret, issuer string, expiry time.Duration) (*Manager, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if expiry <= 0 {
		expiry = time.Hour * 24
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "authpages"
	}
	return &Manager{
		secret: []byte(trimmed),
		issuer: issuer,
		expiry: expiry,
	}, nil
}

// GenerateToken issues a signed JWT for the provided user.
func (m *Manager) GenerateToken(user dto.UserSummary) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("jwt manager is nil")
	}
	if strings.TrimSpace(user.ID) == "" {
		return "", time.Time{}, errors.New("invalid user for token generation")
	}
	now := time.Now().UTC()
	expiry := now.Add(m.expiry)

	claims := Claims{
		Email:        user.Email,
		UserMetadata: map[string]any{MetadataDisplayName: user.DisplayName},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// ErrUnsupportedSigningMethod is returned for tokens signed with anything but
// HS256, e.g. a GoTrue project that uses asymmetric signing keys.
var ErrUnsupportedSigningMethod = errors.New("unsupported token signing method")

// ParseToken validates the token and returns claims. Only HS256 tokens signed
// with the configured secret are accepted.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	if m == nil {
		return nil, errors.New("jwt manager is nil")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if token != nil && token.Method != nil && token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedSigningMethod, token.Method.Alg())
		}
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
