package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/invoicedesk/internal/postal"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
)

type ClientInput struct {
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name"`
	Company          string         `json:"company"`
	Email            string         `json:"email"`
	Phone            string         `json:"phone"`
	PhoneCountryCode string         `json:"phone_country_code"`
	Address          postal.Address `json:"address"`
	TaxID            string         `json:"tax_id"`
	Status           Status         `json:"status"`
	AvatarColor      string         `json:"avatar_color"`
}

type ListClientRequest struct {
	PageToken string
	PageSize  int
	Status    string
	Search    string
}

type ListClientFilter struct {
	Status Status
	Search string
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

type Service interface {
	Create(ctx context.Context, input ClientInput) (Client, error)
	Update(ctx context.Context, id string, input ClientInput) (Client, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Client, error)
	List(ctx context.Context, req ListClientRequest) (ListClientResponse, error)
}

var (
	ErrInvalidOwner  = errors.New("invalid_owner")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("client_not_found")
)
