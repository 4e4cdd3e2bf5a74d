package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/company/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindProfile(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (*domain.CompanyProfile, error) {
	var profile domain.CompanyProfile
	err := db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repo) UpsertProfile(ctx context.Context, db *gorm.DB, profile *domain.CompanyProfile) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"company_name", "logo_url", "email", "phone", "phone_country_code", "website", "tax_id",
			"address_street", "address_street2", "address_city", "address_state", "address_zip", "address_country",
			"currency", "updated_at",
		}),
	}).Create(profile).Error
}

func (r *repo) FindSettings(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (*domain.InvoiceSettings, error) {
	var settings domain.InvoiceSettings
	err := db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpsertSettings never touches next_sequence on conflict.
func (r *repo) UpsertSettings(ctx context.Context, db *gorm.DB, settings *domain.InvoiceSettings) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"business_name", "logo_url", "business_email", "business_phone", "business_address",
			"number_template", "default_due_days", "default_payment_terms", "default_notes",
			"footer_text", "default_tax_rate", "default_tax_name", "updated_at",
		}),
	}).Create(settings).Error
}

func (r *repo) NextSequence(ctx context.Context, tx *gorm.DB, ownerID snowflake.ID, newID func() snowflake.ID) (int64, *domain.InvoiceSettings, error) {
	tx = tx.WithContext(ctx)

	var settings domain.InvoiceSettings
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ?", ownerID).
		First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = domain.InvoiceSettings{
			ID:             newID(),
			OwnerID:        ownerID,
			NumberTemplate: domain.DefaultNumberTemplate,
			NextSequence:   1,
			DefaultDueDays: 30,
		}
		if err := tx.Create(&settings).Error; err != nil {
			return 0, nil, err
		}
	} else if err != nil {
		return 0, nil, err
	}

	seq := settings.NextSequence
	if seq <= 0 {
		seq = 1
	}
	if err := tx.Model(&domain.InvoiceSettings{}).
		Where("id = ?", settings.ID).
		Update("next_sequence", seq+1).Error; err != nil {
		return 0, nil, err
	}
	settings.NextSequence = seq + 1
	return seq, &settings, nil
}
