package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/postal"
	"gorm.io/gorm"
)

const DefaultNumberTemplate = "INV-{SEQ6}"

type ProfileInput struct {
	CompanyName      string         `json:"company_name"`
	LogoURL          string         `json:"logo_url"`
	Email            string         `json:"email"`
	Phone            string         `json:"phone"`
	PhoneCountryCode string         `json:"phone_country_code"`
	Website          string         `json:"website"`
	TaxID            string         `json:"tax_id"`
	Address          postal.Address `json:"address"`
	Currency         string         `json:"currency"`
}

type SettingsInput struct {
	BusinessName        string          `json:"business_name"`
	LogoURL             string          `json:"logo_url"`
	BusinessEmail       string          `json:"business_email"`
	BusinessPhone       string          `json:"business_phone"`
	BusinessAddress     string          `json:"business_address"`
	NumberTemplate      string          `json:"number_template"`
	DefaultDueDays      int             `json:"default_due_days"`
	DefaultPaymentTerms string          `json:"default_payment_terms"`
	DefaultNotes        string          `json:"default_notes"`
	FooterText          string          `json:"footer_text"`
	DefaultTaxRate      decimal.Decimal `json:"default_tax_rate"`
	DefaultTaxName      string          `json:"default_tax_name"`
}

// Sender bundles what documents need from the owner's company records.
type Sender struct {
	BusinessInfo   BusinessInfo
	CurrencyCode   string
	CurrencySymbol string
	FooterText     string
}

type Repository interface {
	FindProfile(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (*CompanyProfile, error)
	UpsertProfile(ctx context.Context, db *gorm.DB, profile *CompanyProfile) error
	FindSettings(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (*InvoiceSettings, error)
	UpsertSettings(ctx context.Context, db *gorm.DB, settings *InvoiceSettings) error
	// NextSequence reserves the next invoice sequence for the owner. It must
	// run inside a transaction.
	NextSequence(ctx context.Context, tx *gorm.DB, ownerID snowflake.ID, newID func() snowflake.ID) (int64, *InvoiceSettings, error)
}

type Service interface {
	GetProfile(ctx context.Context) (CompanyProfile, error)
	UpsertProfile(ctx context.Context, input ProfileInput) (CompanyProfile, error)
	GetSettings(ctx context.Context) (InvoiceSettings, error)
	UpsertSettings(ctx context.Context, input SettingsInput) (InvoiceSettings, error)
	// ResolveSender loads both records for ownerID and resolves the sender identity.
	ResolveSender(ctx context.Context, ownerID snowflake.ID) (Sender, error)
}

var (
	ErrInvalidOwner    = errors.New("invalid_owner")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvalidTemplate = errors.New("invalid_number_template")
	ErrInvalidTaxRate  = errors.New("invalid_tax_rate")
	ErrNotFound        = errors.New("company_profile_not_found")
)
