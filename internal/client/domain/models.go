package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/postal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusLead     Status = "lead"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusLead:
		return true
	}
	return false
}

const unnamedClient = "Unnamed Client"

type Client struct {
	ID               snowflake.ID   `gorm:"primaryKey" json:"id"`
	OwnerID          snowflake.ID   `gorm:"not null;index" json:"owner_id"`
	FirstName        string         `gorm:"type:text" json:"first_name"`
	LastName         string         `gorm:"type:text" json:"last_name"`
	Company          string         `gorm:"type:text" json:"company"`
	Email            string         `gorm:"type:text" json:"email"`
	Phone            string         `gorm:"type:text" json:"phone"`
	PhoneCountryCode string         `gorm:"type:text" json:"phone_country_code"`
	Address          postal.Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	TaxID            string         `gorm:"type:text" json:"tax_id"`
	Status           Status         `gorm:"type:text;not null" json:"status"`
	AvatarColor      string         `gorm:"type:text" json:"avatar_color"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }

// DisplayName joins the non-empty name parts, falling back to the company
// and then to "Unnamed Client".
func (c Client) DisplayName() string {
	parts := make([]string, 0, 2)
	for _, part := range []string{c.FirstName, c.LastName} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if company := strings.TrimSpace(c.Company); company != "" {
		return company
	}
	return unnamedClient
}

// AvatarPalette is the set of colors assigned to new clients.
var AvatarPalette = []string{"#6366F1", "#0EA5E9", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#EC4899"}

func AvatarColorFor(id snowflake.ID) string {
	return AvatarPalette[int(uint64(id)%uint64(len(AvatarPalette)))]
}
