package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/invoice/calc"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
)

// LineItemInput is a line item as typed by the user. Malformed numbers
// decode to zero; an omitted amount is derived from quantity × rate.
type LineItemInput struct {
	Description string      `json:"description"`
	Quantity    calc.Number `json:"quantity"`
	Rate        calc.Number `json:"rate"`
	Amount      calc.Number `json:"amount"`
}

// InvoiceInput fully replaces the editable parts of an invoice.
type InvoiceInput struct {
	ClientID           string          `json:"client_id"`
	ProjectID          string          `json:"project_id"`
	IssueDate          string          `json:"issue_date"`
	DueDate            string          `json:"due_date"`
	LineItems          []LineItemInput `json:"line_items"`
	TaxRate            *calc.Number    `json:"tax_rate"`
	TaxName            *string         `json:"tax_name"`
	ShowItemColumn     *bool           `json:"show_item_column"`
	ShowQuantityColumn *bool           `json:"show_quantity_column"`
	ShowRateColumn     *bool           `json:"show_rate_column"`
	Notes              *string         `json:"notes"`
	PaymentTerms       *string         `json:"payment_terms"`
}

type ListInvoiceRequest struct {
	PageToken string
	PageSize  int
	Status    string
	ClientID  string
}

type ListInvoiceFilter struct {
	Status   InvoiceStatus
	ClientID snowflake.ID
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	Create(ctx context.Context, input InvoiceInput) (Invoice, error)
	Update(ctx context.Context, id string, input InvoiceInput) (Invoice, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	TransitionStatus(ctx context.Context, id string, next InvoiceStatus) (Invoice, error)
}

// DeliveryService emails invoices and reminders.
type DeliveryService interface {
	Send(ctx context.Context, id string) (Invoice, error)
	Remind(ctx context.Context, id string) (Invoice, error)
	// SweepOverdue marks sent invoices past their due date as overdue and
	// reminds overdue invoices whose last reminder is older than cadence.
	SweepOverdue(ctx context.Context, now time.Time, cadence time.Duration) (SweepResult, error)
}

type SweepResult struct {
	MarkedOverdue int `json:"marked_overdue"`
	Reminded      int `json:"reminded"`
	Failed        int `json:"failed"`
}

var (
	ErrInvalidOwner      = errors.New("invalid_owner")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidClient     = errors.New("invalid_client")
	ErrInvalidProject    = errors.New("invalid_project")
	ErrInvalidDate       = errors.New("invalid_date")
	ErrInvalidLineItem   = errors.New("invalid_line_item")
	ErrInvalidTaxRate    = errors.New("invalid_tax_rate")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrNotEditable       = errors.New("invoice_not_editable")
	ErrDuplicateNumber   = errors.New("duplicate_invoice_number")
	ErrMissingRecipient  = errors.New("client_email_missing")
	ErrNotRemindable     = errors.New("invoice_not_remindable")
	ErrNotFound          = errors.New("invoice_not_found")
)
