package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/postal"
)

// CompanyProfile is the authoritative sender identity of an owner.
type CompanyProfile struct {
	ID               snowflake.ID   `gorm:"primaryKey" json:"id"`
	OwnerID          snowflake.ID   `gorm:"not null;uniqueIndex" json:"owner_id"`
	CompanyName      string         `gorm:"type:text" json:"company_name"`
	LogoURL          string         `gorm:"type:text" json:"logo_url"`
	Email            string         `gorm:"type:text" json:"email"`
	Phone            string         `gorm:"type:text" json:"phone"`
	PhoneCountryCode string         `gorm:"type:text" json:"phone_country_code"`
	Website          string         `gorm:"type:text" json:"website"`
	TaxID            string         `gorm:"type:text" json:"tax_id"`
	Address          postal.Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Currency         string         `gorm:"type:text" json:"currency"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (CompanyProfile) TableName() string { return "company_profiles" }

// InvoiceSettings is the older per-owner settings record. Its business
// fields are only a fallback for CompanyProfile.
type InvoiceSettings struct {
	ID                  snowflake.ID    `gorm:"primaryKey" json:"id"`
	OwnerID             snowflake.ID    `gorm:"not null;uniqueIndex" json:"owner_id"`
	BusinessName        string          `gorm:"type:text" json:"business_name"`
	LogoURL             string          `gorm:"type:text" json:"logo_url"`
	BusinessEmail       string          `gorm:"type:text" json:"business_email"`
	BusinessPhone       string          `gorm:"type:text" json:"business_phone"`
	BusinessAddress     string          `gorm:"type:text" json:"business_address"`
	NumberTemplate      string          `gorm:"type:text" json:"number_template"`
	NextSequence        int64           `gorm:"not null" json:"next_sequence"`
	DefaultDueDays      int             `gorm:"not null" json:"default_due_days"`
	DefaultPaymentTerms string          `gorm:"type:text" json:"default_payment_terms"`
	DefaultNotes        string          `gorm:"type:text" json:"default_notes"`
	FooterText          string          `gorm:"type:text" json:"footer_text"`
	DefaultTaxRate      decimal.Decimal `gorm:"type:numeric(6,3);not null" json:"default_tax_rate"`
	DefaultTaxName      string          `gorm:"type:text" json:"default_tax_name"`
	CreatedAt           time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null" json:"updated_at"`
}

func (InvoiceSettings) TableName() string { return "invoice_settings" }

// BusinessInfo is the resolved sender identity printed on documents.
type BusinessInfo struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}
