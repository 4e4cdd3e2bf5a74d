package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/smallbiznis/invoicedesk/internal/client/domain"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	companydomain "github.com/smallbiznis/invoicedesk/internal/company/domain"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/format"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	obslogger "github.com/smallbiznis/invoicedesk/internal/observability/logger"
	"github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"github.com/smallbiznis/invoicedesk/internal/ownercontext"
	projectdomain "github.com/smallbiznis/invoicedesk/internal/project/domain"
	"github.com/smallbiznis/invoicedesk/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

const receiptFilenamePrefix = "receipt"

type DocumentParams struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Repo        domain.Repository
	ClientRepo  clientdomain.Repository
	ProjectRepo projectdomain.Repository
	CompanySvc  companydomain.Service
	Registry    *render.Registry
	Storage     storage.Storage
	DocConfig   *config.DocumentConfigHolder
	Metrics     *metrics.Metrics           `optional:"true"`
	Collector   *metrics.DocumentCollector `optional:"true"`
}

// DocumentService loads invoices with their related records and renders
// them through the backend registry.
type DocumentService struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock

	repo        domain.Repository
	clientRepo  clientdomain.Repository
	projectRepo projectdomain.Repository
	companySvc  companydomain.Service
	registry    *render.Registry
	storage     storage.Storage
	docConfig   *config.DocumentConfigHolder
	metrics     *metrics.Metrics
	collector   *metrics.DocumentCollector
}

func NewDocumentService(p DocumentParams) domain.DocumentService {
	return &DocumentService{
		db:    p.DB,
		log:   p.Log.Named("invoice.documents"),
		clock: p.Clock,

		repo:        p.Repo,
		clientRepo:  p.ClientRepo,
		projectRepo: p.ProjectRepo,
		companySvc:  p.CompanySvc,
		registry:    p.Registry,
		storage:     p.Storage,
		docConfig:   p.DocConfig,
		metrics:     p.Metrics,
		collector:   p.Collector,
	}
}

func (s *DocumentService) Load(ctx context.Context, id string) (domain.Bundle, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.Bundle{}, domain.ErrInvalidOwner
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return domain.Bundle{}, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, ownerID, invoiceID)
	if err != nil {
		return domain.Bundle{}, fmt.Errorf("load invoice: %w", err)
	}
	if invoice == nil {
		return domain.Bundle{}, domain.ErrNotFound
	}
	return s.loadRelated(ctx, *invoice)
}

func (s *DocumentService) LoadByToken(ctx context.Context, token string) (domain.Bundle, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Bundle{}, domain.ErrInvalidToken
	}

	invoice, err := s.repo.FindByPublicToken(ctx, s.db, token)
	if err != nil {
		return domain.Bundle{}, fmt.Errorf("load invoice: %w", err)
	}
	if invoice == nil {
		return domain.Bundle{}, domain.ErrNotFound
	}
	return s.loadRelated(ctx, *invoice)
}

// loadRelated reads client, project and sender one after another; the
// project lookup needs the invoice's project id.
func (s *DocumentService) loadRelated(ctx context.Context, invoice domain.Invoice) (domain.Bundle, error) {
	client, err := s.clientRepo.FindByID(ctx, s.db, invoice.OwnerID, invoice.ClientID)
	if err != nil {
		return domain.Bundle{}, fmt.Errorf("load client: %w", err)
	}
	if client == nil {
		return domain.Bundle{}, domain.ErrClientMissing
	}

	var project *projectdomain.Project
	if invoice.ProjectID != nil {
		project, err = s.projectRepo.FindByID(ctx, s.db, invoice.OwnerID, *invoice.ProjectID)
		if err != nil {
			return domain.Bundle{}, fmt.Errorf("load project: %w", err)
		}
		if project == nil {
			return domain.Bundle{}, domain.ErrProjectMissing
		}
	}

	sender, err := s.companySvc.ResolveSender(ctx, invoice.OwnerID)
	if err != nil {
		return domain.Bundle{}, err
	}

	return domain.Bundle{
		Invoice: invoice,
		Client:  *client,
		Project: project,
		Sender:  sender,
	}, nil
}

func (s *DocumentService) Render(ctx context.Context, bundle domain.Bundle, req domain.DocumentRequest) (domain.Document, error) {
	backend, err := s.registry.Lookup(req.Engine)
	if err != nil {
		return domain.Document{}, err
	}
	cfg := s.docConfig.Get()
	numberFormat, err := resolveNumberFormat(req.NumberFormat, cfg)
	if err != nil {
		return domain.Document{}, err
	}

	layout := render.Build(layoutInput(bundle, cfg, numberFormat))

	start := time.Now()
	body, err := backend.Render(ctx, layout)
	s.collector.ObserveRender(backend.Name(), time.Since(start), len(body), err)
	if err != nil {
		s.metrics.RecordDocumentRendered(ctx, backend.Name(), "error")
		s.invoiceLog(ctx, bundle.Invoice).Error("render failed",
			zap.String("backend", backend.Name()),
			zap.Error(err),
		)
		return domain.Document{}, err
	}
	s.metrics.RecordDocumentRendered(ctx, backend.Name(), "ok")

	prefix := cfg.FilenamePrefix
	if backend.Name() == render.BackendReceipt {
		prefix = receiptFilenamePrefix
	}
	return domain.Document{
		Filename:    format.Filename(prefix, bundle.Invoice.InvoiceNumber, backend.Extension()),
		ContentType: backend.ContentType(),
		Body:        body,
	}, nil
}

func (s *DocumentService) RenderInvoice(ctx context.Context, id string, req domain.DocumentRequest) (domain.Document, error) {
	bundle, err := s.Load(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}
	return s.Render(ctx, bundle, req)
}

func (s *DocumentService) Publish(ctx context.Context, bundle domain.Bundle, doc domain.Document) (string, error) {
	key := storage.InvoiceKey(bundle.Invoice.OwnerID, doc.Filename, s.clock.Now())
	url, err := s.storage.Upload(ctx, key, doc.Body, doc.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", doc.Filename, err)
	}
	s.metrics.RecordDocumentUploaded(ctx, s.storage.Driver())
	s.invoiceLog(ctx, bundle.Invoice).Info("document published", zap.String("key", key))
	return url, nil
}

func (s *DocumentService) PublicView(ctx context.Context, token, numberFormat string) (domain.PublicView, error) {
	bundle, err := s.LoadByToken(ctx, token)
	if err != nil {
		return domain.PublicView{}, err
	}
	numberFormat, err = resolveNumberFormat(numberFormat, s.docConfig.Get())
	if err != nil {
		return domain.PublicView{}, err
	}
	return domain.PublicView{
		Invoice:        bundle.Invoice,
		Client:         bundle.Client,
		Project:        bundle.Project,
		BusinessInfo:   bundle.Sender.BusinessInfo,
		CurrencySymbol: bundle.Sender.CurrencySymbol,
		NumberFormat:   numberFormat,
	}, nil
}

func layoutInput(bundle domain.Bundle, cfg config.DocumentConfig, numberFormat string) render.Input {
	footer := bundle.Sender.FooterText
	if strings.TrimSpace(footer) == "" {
		footer = cfg.DefaultFooter
	}
	return render.Input{
		Invoice:        bundle.Invoice,
		Client:         bundle.Client,
		Project:        bundle.Project,
		Business:       bundle.Sender.BusinessInfo,
		CurrencySymbol: bundle.Sender.CurrencySymbol,
		NumberFormat:   numberFormat,
		DateLayout:     cfg.DateLayout,
		Footer:         footer,
	}
}

func resolveNumberFormat(requested string, cfg config.DocumentConfig) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return cfg.NumberFormat, nil
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return "", domain.ErrInvalidNumberFormat
	}
	return tag.String(), nil
}

// ownerScope attaches ownerID so owner-scoped lookups work outside a request.
func ownerScope(ctx context.Context, ownerID snowflake.ID) context.Context {
	return ownercontext.WithOwnerID(ctx, ownerID)
}

func (s *DocumentService) invoiceLog(ctx context.Context, invoice domain.Invoice) *zap.Logger {
	return obslogger.WithInvoice(obslogger.WithContext(ctx, s.log), invoice.ID.String(), invoice.InvoiceNumber)
}
