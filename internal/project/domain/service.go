package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type ProjectInput struct {
	ClientID    string `json:"client_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

type ListProjectRequest struct {
	ClientID string
	Status   string
}

type ListProjectFilter struct {
	ClientID snowflake.ID
	Status   Status
}

type Service interface {
	Create(ctx context.Context, input ProjectInput) (Project, error)
	Update(ctx context.Context, id string, input ProjectInput) (Project, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Project, error)
	List(ctx context.Context, req ListProjectRequest) ([]Project, error)
}

var (
	ErrInvalidOwner  = errors.New("invalid_owner")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidClient = errors.New("invalid_client")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("project_not_found")
)
