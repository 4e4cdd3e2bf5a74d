// Package domain contains persistence models for invoicing.
package domain

import (
	"slices"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

var transitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:     {InvoiceStatusSent, InvoiceStatusCancelled},
	InvoiceStatusSent:      {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusOverdue:   {InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPaid:      nil,
	InvoiceStatusCancelled: nil,
}

// CanTransition reports whether an invoice may move from s to next.
func (s InvoiceStatus) CanTransition(next InvoiceStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// EditableStatuses are the statuses whose content may still be replaced.
var EditableStatuses = []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent}

// Editable reports whether line items and dates may still be replaced.
func (s InvoiceStatus) Editable() bool {
	return slices.Contains(EditableStatuses, s)
}

// LineItem is one billable row. Amount is stored as entered and is never
// re-derived from Quantity × Rate afterwards.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

func (l LineItem) LineAmount() decimal.Decimal { return l.Amount }

// Invoice represents an issued or draft invoice.
type Invoice struct {
	ID                 snowflake.ID                  `gorm:"primaryKey" json:"id"`
	OwnerID            snowflake.ID                  `gorm:"not null;index;uniqueIndex:ux_invoices_owner_number,priority:1" json:"owner_id"`
	InvoiceNumber      string                        `gorm:"type:text;not null;uniqueIndex:ux_invoices_owner_number,priority:2" json:"invoice_number"`
	Status             InvoiceStatus                 `gorm:"type:text;not null;index" json:"status"`
	IssueDate          datatypes.Date                `gorm:"not null" json:"issue_date"`
	DueDate            datatypes.Date                `gorm:"not null;index" json:"due_date"`
	ClientID           snowflake.ID                  `gorm:"not null;index" json:"client_id"`
	ProjectID          *snowflake.ID                 `gorm:"index" json:"project_id,omitempty"`
	LineItems          datatypes.JSONSlice[LineItem] `gorm:"not null" json:"line_items"`
	Subtotal           decimal.Decimal               `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	TaxRate            decimal.Decimal               `gorm:"type:numeric(6,3);not null" json:"tax_rate"`
	TaxName            string                        `gorm:"type:text" json:"tax_name"`
	TaxAmount          decimal.Decimal               `gorm:"type:numeric(14,2);not null" json:"tax_amount"`
	Total              decimal.Decimal               `gorm:"type:numeric(14,2);not null" json:"total"`
	ShowItemColumn     bool                          `gorm:"not null" json:"show_item_column"`
	ShowQuantityColumn bool                          `gorm:"not null" json:"show_quantity_column"`
	ShowRateColumn     bool                          `gorm:"not null" json:"show_rate_column"`
	Notes              string                        `gorm:"type:text" json:"notes"`
	PaymentTerms       string                        `gorm:"type:text" json:"payment_terms"`
	PublicToken        string                        `gorm:"type:text;not null;uniqueIndex" json:"public_token"`
	PublicURL          string                        `gorm:"type:text;not null" json:"public_url"`
	LastReminderSent   *time.Time                    `json:"last_reminder_sent,omitempty"`
	ReminderCount      int                           `gorm:"not null" json:"reminder_count"`
	SentAt             *time.Time                    `json:"sent_at,omitempty"`
	PaidAt             *time.Time                    `json:"paid_at,omitempty"`
	CreatedAt          time.Time                     `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time                     `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Items returns the line items as a plain slice.
func (i Invoice) Items() []LineItem { return []LineItem(i.LineItems) }
