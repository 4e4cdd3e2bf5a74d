package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/invoicedesk/internal/audit/domain"
	clientdomain "github.com/smallbiznis/invoicedesk/internal/client/domain"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	companydomain "github.com/smallbiznis/invoicedesk/internal/company/domain"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/invoice/calc"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/format"
	"github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"github.com/smallbiznis/invoicedesk/internal/ownercontext"
	projectdomain "github.com/smallbiznis/invoicedesk/internal/project/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	dateLayout       = "2006-01-02"
	publicTokenBytes = 32
	publicPath       = "/public/invoices/"
	auditTarget      = "invoice"
)

var hundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Config      config.Config
	Repo        domain.Repository
	ClientRepo  clientdomain.Repository
	ProjectRepo projectdomain.Repository
	CompanyRepo companydomain.Repository
	AuditSvc    auditdomain.Service
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	publicBaseURL string
	repo          domain.Repository
	clientRepo    clientdomain.Repository
	projectRepo   projectdomain.Repository
	companyRepo   companydomain.Repository
	auditSvc      auditdomain.Service
	metrics       *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: p.Clock,

		publicBaseURL: strings.TrimRight(p.Config.PublicBaseURL, "/"),
		repo:          p.Repo,
		clientRepo:    p.ClientRepo,
		projectRepo:   p.ProjectRepo,
		companyRepo:   p.CompanyRepo,
		auditSvc:      p.AuditSvc,
		metrics:       p.Metrics,
	}
}

// Create stores a draft. The number comes from the owner's template and
// sequence, reserved in the same transaction as the insert.
func (s *Service) Create(ctx context.Context, input domain.InvoiceInput) (domain.Invoice, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.Invoice{}, domain.ErrInvalidOwner
	}

	token, err := newPublicToken()
	if err != nil {
		return domain.Invoice{}, err
	}

	now := s.clock.Now().UTC()
	invoice := domain.Invoice{
		ID:                 s.genID.Generate(),
		OwnerID:            ownerID,
		Status:             domain.InvoiceStatusDraft,
		ShowItemColumn:     true,
		ShowQuantityColumn: true,
		ShowRateColumn:     true,
		PublicToken:        token,
		PublicURL:          s.publicBaseURL + publicPath + token,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, settings, err := s.companyRepo.NextSequence(ctx, tx, ownerID, s.genID.Generate)
		if err != nil {
			return fmt.Errorf("reserve invoice sequence: %w", err)
		}
		invoice.TaxRate = settings.DefaultTaxRate
		invoice.TaxName = settings.DefaultTaxName
		invoice.Notes = settings.DefaultNotes
		invoice.PaymentTerms = settings.DefaultPaymentTerms

		if err := s.apply(ctx, tx, &invoice, input, settings.DefaultDueDays); err != nil {
			return err
		}

		template := settings.NumberTemplate
		if strings.TrimSpace(template) == "" {
			template = format.DefaultInvoiceNumberTemplate
		}
		number, err := format.FormatInvoiceNumber(template, time.Time(invoice.IssueDate), seq)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number

		return s.repo.Insert(ctx, tx, &invoice)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrDuplicateNumber
		}
		return domain.Invoice{}, err
	}

	s.audit(ctx, invoice, "invoice.created", map[string]any{"invoice_number": invoice.InvoiceNumber})
	return invoice, nil
}

// Update replaces line items, dates and settings and recomputes totals.
// Only draft and sent invoices can be edited.
func (s *Service) Update(ctx context.Context, id string, input domain.InvoiceInput) (domain.Invoice, error) {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if !invoice.Status.Editable() {
		return domain.Invoice{}, domain.ErrNotEditable
	}

	if err := s.apply(ctx, s.db, &invoice, input, 0); err != nil {
		return domain.Invoice{}, err
	}
	invoice.UpdatedAt = s.clock.Now().UTC()

	updated, err := s.repo.Update(ctx, s.db, &invoice)
	if err != nil {
		return domain.Invoice{}, err
	}
	if !updated {
		return domain.Invoice{}, domain.ErrNotEditable
	}

	s.audit(ctx, invoice, "invoice.updated", map[string]any{"total": invoice.Total.StringFixed(2)})
	return invoice, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidOwner
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, s.db, ownerID, invoiceID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.audit(ctx, domain.Invoice{ID: invoiceID, OwnerID: ownerID}, "invoice.deleted", nil)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.Invoice{}, domain.ErrInvalidOwner
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return domain.Invoice{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, ownerID, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if item == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidOwner
	}

	var filter domain.ListInvoiceFilter
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = domain.InvoiceStatus(strings.ToLower(status))
		if !filter.Status.Valid() {
			return domain.ListInvoiceResponse{}, domain.ErrInvalidStatus
		}
	}
	if clientID := strings.TrimSpace(req.ClientID); clientID != "" {
		id, err := parseID(clientID)
		if err != nil {
			return domain.ListInvoiceResponse{}, domain.ErrInvalidClient
		}
		filter.ClientID = id
	}

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	items, err := s.repo.List(ctx, s.db, ownerID, filter, page)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, page.Limit(), func(i *domain.Invoice) string {
		return i.ID.String()
	})
	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		invoices = append(invoices, *item)
	}
	return domain.ListInvoiceResponse{PageInfo: pageInfo, Invoices: invoices}, nil
}

// TransitionStatus applies an explicit lifecycle change. Moving to sent is
// reserved for email delivery.
func (s *Service) TransitionStatus(ctx context.Context, id string, next domain.InvoiceStatus) (domain.Invoice, error) {
	next = domain.InvoiceStatus(strings.ToLower(strings.TrimSpace(string(next))))
	if !next.Valid() {
		return domain.Invoice{}, domain.ErrInvalidStatus
	}
	if next == domain.InvoiceStatusSent {
		return domain.Invoice{}, domain.ErrInvalidTransition
	}

	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	from := invoice.Status
	if !from.CanTransition(next) {
		return domain.Invoice{}, domain.ErrInvalidTransition
	}

	now := s.clock.Now().UTC()
	invoice.Status = next
	invoice.UpdatedAt = now
	if next == domain.InvoiceStatusPaid {
		invoice.PaidAt = &now
	}

	updated, err := s.repo.UpdateStatus(ctx, s.db, &invoice, from)
	if err != nil {
		return domain.Invoice{}, err
	}
	if !updated {
		// Someone else moved the invoice first.
		return domain.Invoice{}, domain.ErrInvalidTransition
	}

	s.metrics.RecordStatusChange(ctx, string(from), string(next))
	s.audit(ctx, invoice, "invoice.status_changed", map[string]any{"from": string(from), "to": string(next)})
	return invoice, nil
}

// apply validates input and writes it over invoice. Nil pointer fields keep
// the current value. defaultDueDays only matters when no due date exists yet.
func (s *Service) apply(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice, input domain.InvoiceInput, defaultDueDays int) error {
	clientID, err := parseID(input.ClientID)
	if err != nil {
		return domain.ErrInvalidClient
	}
	client, err := s.clientRepo.FindByID(ctx, tx, invoice.OwnerID, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return domain.ErrInvalidClient
	}
	invoice.ClientID = clientID

	invoice.ProjectID = nil
	if strings.TrimSpace(input.ProjectID) != "" {
		projectID, err := parseID(input.ProjectID)
		if err != nil {
			return domain.ErrInvalidProject
		}
		project, err := s.projectRepo.FindByID(ctx, tx, invoice.OwnerID, projectID)
		if err != nil {
			return err
		}
		if project == nil || project.ClientID != clientID {
			return domain.ErrInvalidProject
		}
		invoice.ProjectID = &projectID
	}

	if err := s.applyDates(invoice, input, defaultDueDays); err != nil {
		return err
	}

	items, err := buildLineItems(input.LineItems)
	if err != nil {
		return err
	}
	invoice.LineItems = datatypes.NewJSONSlice(items)

	if input.TaxRate != nil {
		invoice.TaxRate = input.TaxRate.Decimal
	}
	if invoice.TaxRate.IsNegative() || invoice.TaxRate.GreaterThan(hundred) {
		return domain.ErrInvalidTaxRate
	}
	if input.TaxName != nil {
		invoice.TaxName = strings.TrimSpace(*input.TaxName)
	}
	if input.ShowItemColumn != nil {
		invoice.ShowItemColumn = *input.ShowItemColumn
	}
	if input.ShowQuantityColumn != nil {
		invoice.ShowQuantityColumn = *input.ShowQuantityColumn
	}
	if input.ShowRateColumn != nil {
		invoice.ShowRateColumn = *input.ShowRateColumn
	}
	if input.Notes != nil {
		invoice.Notes = strings.TrimSpace(*input.Notes)
	}
	if input.PaymentTerms != nil {
		invoice.PaymentTerms = strings.TrimSpace(*input.PaymentTerms)
	}

	totals := calc.Compute(items, invoice.TaxRate)
	invoice.Subtotal = totals.Subtotal
	invoice.TaxAmount = totals.TaxAmount
	invoice.Total = totals.Total
	return nil
}

func (s *Service) applyDates(invoice *domain.Invoice, input domain.InvoiceInput, defaultDueDays int) error {
	issue := time.Time(invoice.IssueDate)
	if raw := strings.TrimSpace(input.IssueDate); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return domain.ErrInvalidDate
		}
		issue = parsed
	} else if issue.IsZero() {
		now := s.clock.Now().UTC()
		issue = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	due := time.Time(invoice.DueDate)
	if raw := strings.TrimSpace(input.DueDate); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return domain.ErrInvalidDate
		}
		due = parsed
	} else if due.IsZero() {
		if defaultDueDays <= 0 {
			defaultDueDays = 30
		}
		due = issue.AddDate(0, 0, defaultDueDays)
	}

	if due.Before(issue) {
		return domain.ErrInvalidDate
	}
	invoice.IssueDate = datatypes.Date(issue)
	invoice.DueDate = datatypes.Date(due)
	return nil
}

// buildLineItems keeps the entered amount when one is given; otherwise
// the amount is quantity × rate.
func buildLineItems(inputs []domain.LineItemInput) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity.IsNegative() || in.Rate.IsNegative() {
			return nil, domain.ErrInvalidLineItem
		}
		amount := in.Amount.Decimal
		if !in.Amount.Set {
			amount = calc.LineAmount(in.Quantity.Decimal, in.Rate.Decimal)
		}
		items = append(items, domain.LineItem{
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity.Decimal,
			Rate:        in.Rate.Decimal,
			Amount:      amount,
		})
	}
	return items, nil
}

func (s *Service) audit(ctx context.Context, invoice domain.Invoice, action string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.Record(ctx, invoice.OwnerID, action, auditTarget, invoice.ID.String(), metadata); err != nil {
		s.log.Warn("failed to record audit log",
			zap.String("action", action),
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
	}
}

func newPublicToken() (string, error) {
	buf := make([]byte, publicTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate public token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
