package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/company/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/format"
	"github.com/smallbiznis/invoicedesk/internal/ownercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("company.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) GetProfile(ctx context.Context) (domain.CompanyProfile, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.CompanyProfile{}, domain.ErrInvalidOwner
	}
	profile, err := s.repo.FindProfile(ctx, s.db, ownerID)
	if err != nil {
		return domain.CompanyProfile{}, err
	}
	if profile == nil {
		return domain.CompanyProfile{}, domain.ErrNotFound
	}
	return *profile, nil
}

func (s *Service) UpsertProfile(ctx context.Context, input domain.ProfileInput) (domain.CompanyProfile, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.CompanyProfile{}, domain.ErrInvalidOwner
	}

	email := strings.TrimSpace(input.Email)
	if email != "" && !strings.Contains(email, "@") {
		return domain.CompanyProfile{}, domain.ErrInvalidEmail
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency != "" && len(currency) != 3 {
		return domain.CompanyProfile{}, domain.ErrInvalidCurrency
	}

	now := s.clock.Now().UTC()
	profile := domain.CompanyProfile{
		ID:               s.genID.Generate(),
		OwnerID:          ownerID,
		CompanyName:      strings.TrimSpace(input.CompanyName),
		LogoURL:          strings.TrimSpace(input.LogoURL),
		Email:            email,
		Phone:            strings.TrimSpace(input.Phone),
		PhoneCountryCode: strings.TrimSpace(input.PhoneCountryCode),
		Website:          strings.TrimSpace(input.Website),
		TaxID:            strings.TrimSpace(input.TaxID),
		Address:          input.Address.Normalize(),
		Currency:         currency,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.UpsertProfile(ctx, s.db, &profile); err != nil {
		return domain.CompanyProfile{}, err
	}
	return s.GetProfile(ctx)
}

// GetSettings returns the stored settings, or defaults when none exist yet.
func (s *Service) GetSettings(ctx context.Context) (domain.InvoiceSettings, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.InvoiceSettings{}, domain.ErrInvalidOwner
	}
	settings, err := s.repo.FindSettings(ctx, s.db, ownerID)
	if err != nil {
		return domain.InvoiceSettings{}, err
	}
	if settings == nil {
		return domain.InvoiceSettings{
			OwnerID:        ownerID,
			NumberTemplate: domain.DefaultNumberTemplate,
			NextSequence:   1,
			DefaultDueDays: 30,
		}, nil
	}
	return *settings, nil
}

func (s *Service) UpsertSettings(ctx context.Context, input domain.SettingsInput) (domain.InvoiceSettings, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.InvoiceSettings{}, domain.ErrInvalidOwner
	}

	template := strings.TrimSpace(input.NumberTemplate)
	if template == "" {
		template = domain.DefaultNumberTemplate
	}
	if _, err := format.FormatInvoiceNumber(template, s.clock.Now(), 1); err != nil {
		return domain.InvoiceSettings{}, fmt.Errorf("%w: %v", domain.ErrInvalidTemplate, err)
	}
	if input.DefaultTaxRate.IsNegative() || input.DefaultTaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return domain.InvoiceSettings{}, domain.ErrInvalidTaxRate
	}
	email := strings.TrimSpace(input.BusinessEmail)
	if email != "" && !strings.Contains(email, "@") {
		return domain.InvoiceSettings{}, domain.ErrInvalidEmail
	}
	dueDays := input.DefaultDueDays
	if dueDays <= 0 {
		dueDays = 30
	}

	now := s.clock.Now().UTC()
	settings := domain.InvoiceSettings{
		ID:                  s.genID.Generate(),
		OwnerID:             ownerID,
		BusinessName:        strings.TrimSpace(input.BusinessName),
		LogoURL:             strings.TrimSpace(input.LogoURL),
		BusinessEmail:       email,
		BusinessPhone:       strings.TrimSpace(input.BusinessPhone),
		BusinessAddress:     strings.TrimSpace(input.BusinessAddress),
		NumberTemplate:      template,
		NextSequence:        1,
		DefaultDueDays:      dueDays,
		DefaultPaymentTerms: strings.TrimSpace(input.DefaultPaymentTerms),
		DefaultNotes:        strings.TrimSpace(input.DefaultNotes),
		FooterText:          strings.TrimSpace(input.FooterText),
		DefaultTaxRate:      input.DefaultTaxRate,
		DefaultTaxName:      strings.TrimSpace(input.DefaultTaxName),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.UpsertSettings(ctx, s.db, &settings); err != nil {
		return domain.InvoiceSettings{}, err
	}
	return s.GetSettings(ctx)
}

func (s *Service) ResolveSender(ctx context.Context, ownerID snowflake.ID) (domain.Sender, error) {
	profile, err := s.repo.FindProfile(ctx, s.db, ownerID)
	if err != nil {
		return domain.Sender{}, fmt.Errorf("load company profile: %w", err)
	}
	settings, err := s.repo.FindSettings(ctx, s.db, ownerID)
	if err != nil {
		return domain.Sender{}, fmt.Errorf("load invoice settings: %w", err)
	}

	sender := domain.Sender{
		BusinessInfo:   domain.ResolveBusinessInfo(profile, settings),
		CurrencySymbol: domain.CurrencySymbol(""),
	}
	if profile != nil {
		sender.CurrencyCode = profile.Currency
		sender.CurrencySymbol = domain.CurrencySymbol(profile.Currency)
	}
	if settings != nil {
		sender.FooterText = settings.FooterText
	}
	return sender, nil
}
