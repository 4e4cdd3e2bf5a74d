package authorization

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Subject is the authenticated caller being checked.
type Subject struct {
	OwnerID snowflake.ID
	KeyID   string
	Role    string
}

type Service interface {
	Authorize(ctx context.Context, subject Subject, object string, action string) error
}

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidOwner  = errors.New("invalid_owner")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)
