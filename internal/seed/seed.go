// Package seed provisions demo records for a fresh owner so a local
// deployment has something to render.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/invoicedesk/internal/client/domain"
	companydomain "github.com/smallbiznis/invoicedesk/internal/company/domain"
	"github.com/smallbiznis/invoicedesk/internal/postal"
	projectdomain "github.com/smallbiznis/invoicedesk/internal/project/domain"
	"gorm.io/gorm"
)

const (
	demoCompanyName = "Northwind Studio"
	demoClientEmail = "billing@acme.example"
	demoProjectName = "Website redesign"
)

// Result lists the ids of the seeded records, existing or new.
type Result struct {
	ProfileID  snowflake.ID
	SettingsID snowflake.ID
	ClientID   snowflake.ID
	ProjectID  snowflake.ID
}

// EnsureDemoData seeds a company profile, invoice settings, one client and
// one project for ownerID. Records already present are left untouched.
func EnsureDemoData(ctx context.Context, db *gorm.DB, node *snowflake.Node, ownerID snowflake.ID, now time.Time) (Result, error) {
	if db == nil || node == nil {
		return Result{}, errors.New("seed database handle and id node are required")
	}
	if ownerID == 0 {
		return Result{}, errors.New("seed owner id is required")
	}

	var result Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := ensureProfileTx(ctx, tx, node, ownerID, now)
		if err != nil {
			return err
		}
		settings, err := ensureSettingsTx(ctx, tx, node, ownerID, now)
		if err != nil {
			return err
		}
		client, err := ensureClientTx(ctx, tx, node, ownerID, now)
		if err != nil {
			return err
		}
		project, err := ensureProjectTx(ctx, tx, node, ownerID, client.ID, now)
		if err != nil {
			return err
		}
		result = Result{
			ProfileID:  profile.ID,
			SettingsID: settings.ID,
			ClientID:   client.ID,
			ProjectID:  project.ID,
		}
		return nil
	})
	return result, err
}

func ensureProfileTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, ownerID snowflake.ID, now time.Time) (companydomain.CompanyProfile, error) {
	var profile companydomain.CompanyProfile
	err := tx.WithContext(ctx).Where("owner_id = ?", ownerID).First(&profile).Error
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return profile, err
	}

	profile = companydomain.CompanyProfile{
		ID:               node.Generate(),
		OwnerID:          ownerID,
		CompanyName:      demoCompanyName,
		Email:            "hello@northwind.example",
		Phone:            "555 0100",
		PhoneCountryCode: "+1",
		Address: postal.Address{
			Street:  "12 Harbour Road",
			City:    "Portland",
			State:   "OR",
			Zip:     "97201",
			Country: "US",
		},
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}
	return profile, tx.WithContext(ctx).Create(&profile).Error
}

func ensureSettingsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, ownerID snowflake.ID, now time.Time) (companydomain.InvoiceSettings, error) {
	var settings companydomain.InvoiceSettings
	err := tx.WithContext(ctx).Where("owner_id = ?", ownerID).First(&settings).Error
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return settings, err
	}

	settings = companydomain.InvoiceSettings{
		ID:                  node.Generate(),
		OwnerID:             ownerID,
		NumberTemplate:      companydomain.DefaultNumberTemplate,
		NextSequence:        1,
		DefaultDueDays:      30,
		DefaultPaymentTerms: "Net 30",
		FooterText:          "Thank you for your business.",
		DefaultTaxRate:      decimal.NewFromInt(8),
		DefaultTaxName:      "VAT",
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	return settings, tx.WithContext(ctx).Create(&settings).Error
}

func ensureClientTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, ownerID snowflake.ID, now time.Time) (clientdomain.Client, error) {
	var client clientdomain.Client
	err := tx.WithContext(ctx).
		Where("owner_id = ? AND email = ?", ownerID, demoClientEmail).
		First(&client).Error
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return client, err
	}

	client = clientdomain.Client{
		ID:        node.Generate(),
		OwnerID:   ownerID,
		FirstName: "Jane",
		LastName:  "Doe",
		Company:   "Acme Corp",
		Email:     demoClientEmail,
		Address: postal.Address{
			Street:  "1 Main St",
			City:    "Springfield",
			Zip:     "12345",
			Country: "US",
		},
		Status:    clientdomain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return client, tx.WithContext(ctx).Create(&client).Error
}

func ensureProjectTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, ownerID, clientID snowflake.ID, now time.Time) (projectdomain.Project, error) {
	var project projectdomain.Project
	err := tx.WithContext(ctx).
		Where("owner_id = ? AND client_id = ? AND name = ?", ownerID, clientID, demoProjectName).
		First(&project).Error
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return project, err
	}

	project = projectdomain.Project{
		ID:        node.Generate(),
		OwnerID:   ownerID,
		ClientID:  clientID,
		Name:      demoProjectName,
		Status:    projectdomain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return project, tx.WithContext(ctx).Create(&project).Error
}
