package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleOwner    = "owner"
	RoleReadonly = "readonly"
)

type Service interface {
	List(ctx context.Context) ([]Response, error)
	Create(ctx context.Context, req CreateRequest) (*SecretResponse, error)
	// CreateForOwner provisions a key without a request context owner, for operators.
	CreateForOwner(ctx context.Context, ownerID snowflake.ID, req CreateRequest) (*SecretResponse, error)
	Rotate(ctx context.Context, keyID string) (*SecretResponse, error)
	Revoke(ctx context.Context, keyID string) error
	Authenticate(ctx context.Context, raw string) (*Principal, error)
}

type CreateRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type Response struct {
	KeyID            string     `json:"key_id"`
	Name             string     `json:"name"`
	Role             string     `json:"role"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	LastUsedAt       *time.Time `json:"last_used_at"`
	ExpiresAt        *time.Time `json:"expires_at"`
	RotatedFromKeyID *string    `json:"rotated_from_key_id"`
}

type SecretResponse struct {
	KeyID  string `json:"key_id"`
	Role   string `json:"role"`
	APIKey string `json:"api_key"`
}

// Principal is the identity behind an authenticated request.
type Principal struct {
	OwnerID snowflake.ID
	KeyID   string
	Role    string
}

// NormalizeRole defaults an empty role to owner and rejects unknown ones.
func NormalizeRole(role string) (string, error) {
	switch r := strings.ToLower(strings.TrimSpace(role)); r {
	case "":
		return RoleOwner, nil
	case RoleOwner, RoleReadonly:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

var (
	ErrInvalidOwner = errors.New("invalid_owner")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidRole  = errors.New("invalid_role")
	ErrInvalidKeyID = errors.New("invalid_key_id")
	ErrNotFound     = errors.New("not_found")
	ErrUnauthorized = errors.New("unauthorized")
)
