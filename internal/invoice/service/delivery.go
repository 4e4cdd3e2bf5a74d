package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	auditdomain "github.com/smallbiznis/invoicedesk/internal/audit/domain"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	obslogger "github.com/smallbiznis/invoicedesk/internal/observability/logger"
	"github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"github.com/smallbiznis/invoicedesk/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sweepBatchSize = 500

	templateInvoiceSent     = "invoice_sent"
	templateInvoiceReminder = "invoice_reminder"

	triggerManual = "manual"
	triggerSweep  = "sweep"
)

type DeliveryParams struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Repo      domain.Repository
	Documents domain.DocumentService
	Email     email.Provider
	DocConfig *config.DocumentConfigHolder
	AuditSvc  auditdomain.Service
	Metrics   *metrics.Metrics `optional:"true"`
}

type DeliveryService struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock

	repo      domain.Repository
	documents domain.DocumentService
	email     email.Provider
	docConfig *config.DocumentConfigHolder
	auditSvc  auditdomain.Service
	metrics   *metrics.Metrics
}

func NewDeliveryService(p DeliveryParams) domain.DeliveryService {
	return &DeliveryService{
		db:    p.DB,
		log:   p.Log.Named("invoice.delivery"),
		clock: p.Clock,

		repo:      p.Repo,
		documents: p.Documents,
		email:     p.Email,
		docConfig: p.DocConfig,
		auditSvc:  p.AuditSvc,
		metrics:   p.Metrics,
	}
}

type messageData struct {
	ClientName    string
	BusinessName  string
	BusinessEmail string
	InvoiceNumber string
	Total         string
	DueDate       string
	PublicURL     string
}

// Send emails the invoice PDF with its public link. A draft becomes sent
// only after the email went out; sent invoices may be re-sent.
func (s *DeliveryService) Send(ctx context.Context, id string) (domain.Invoice, error) {
	bundle, err := s.documents.Load(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice := bundle.Invoice
	if invoice.Status != domain.InvoiceStatusDraft && invoice.Status != domain.InvoiceStatusSent {
		return domain.Invoice{}, domain.ErrInvalidTransition
	}

	subject := fmt.Sprintf("Invoice %s from %s", invoice.InvoiceNumber, senderName(bundle))
	if err := s.deliver(ctx, bundle, subject, templateInvoiceSent); err != nil {
		return domain.Invoice{}, err
	}
	s.metrics.RecordEmailSent(ctx, templateInvoiceSent)

	if invoice.Status == domain.InvoiceStatusDraft {
		now := s.clock.Now().UTC()
		invoice.Status = domain.InvoiceStatusSent
		invoice.SentAt = &now
		invoice.UpdatedAt = now
		updated, err := s.repo.UpdateStatus(ctx, s.db, &invoice, domain.InvoiceStatusDraft)
		if err != nil {
			return domain.Invoice{}, err
		}
		if !updated {
			return domain.Invoice{}, domain.ErrInvalidTransition
		}
		s.metrics.RecordStatusChange(ctx, string(domain.InvoiceStatusDraft), string(domain.InvoiceStatusSent))
	}

	s.audit(ctx, invoice, "invoice.sent", map[string]any{"recipient": bundle.Client.Email})
	return invoice, nil
}

// Remind emails a payment reminder for a sent or overdue invoice.
func (s *DeliveryService) Remind(ctx context.Context, id string) (domain.Invoice, error) {
	bundle, err := s.documents.Load(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	return s.remind(ctx, bundle, triggerManual)
}

func (s *DeliveryService) remind(ctx context.Context, bundle domain.Bundle, trigger string) (domain.Invoice, error) {
	invoice := bundle.Invoice
	if invoice.Status != domain.InvoiceStatusSent && invoice.Status != domain.InvoiceStatusOverdue {
		return domain.Invoice{}, domain.ErrNotRemindable
	}

	subject := fmt.Sprintf("Reminder: invoice %s from %s", invoice.InvoiceNumber, senderName(bundle))
	if err := s.deliver(ctx, bundle, subject, templateInvoiceReminder); err != nil {
		return domain.Invoice{}, err
	}

	now := s.clock.Now().UTC()
	if err := s.repo.RecordReminder(ctx, s.db, invoice.OwnerID, invoice.ID, now); err != nil {
		return domain.Invoice{}, err
	}
	invoice.LastReminderSent = &now
	invoice.ReminderCount++
	invoice.UpdatedAt = now

	s.metrics.RecordEmailSent(ctx, templateInvoiceReminder)
	s.metrics.RecordReminderSent(ctx, trigger)
	s.audit(ctx, invoice, "invoice.reminded", map[string]any{
		"trigger":        trigger,
		"reminder_count": invoice.ReminderCount,
	})
	return invoice, nil
}

// SweepOverdue walks one batch of invoices needing attention. Failures are
// counted and logged; the sweep carries on with the next invoice.
func (s *DeliveryService) SweepOverdue(ctx context.Context, now time.Time, cadence time.Duration) (domain.SweepResult, error) {
	var result domain.SweepResult
	remindBefore := now.Add(-cadence)

	invoices, err := s.repo.ListDueForSweep(ctx, s.db, now, remindBefore, sweepBatchSize)
	if err != nil {
		return result, fmt.Errorf("list invoices for sweep: %w", err)
	}

	for _, item := range invoices {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		invoice := *item
		ownerCtx := ownerScope(ctx, invoice.OwnerID)

		if invoice.Status == domain.InvoiceStatusSent {
			invoice.Status = domain.InvoiceStatusOverdue
			invoice.UpdatedAt = now.UTC()
			updated, err := s.repo.UpdateStatus(ownerCtx, s.db, &invoice, domain.InvoiceStatusSent)
			if err != nil {
				result.Failed++
				s.log.Warn("failed to mark invoice overdue", zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
				continue
			}
			if !updated {
				continue
			}
			result.MarkedOverdue++
			s.metrics.RecordStatusChange(ownerCtx, string(domain.InvoiceStatusSent), string(domain.InvoiceStatusOverdue))
			s.audit(ownerCtx, invoice, "invoice.status_changed", map[string]any{
				"from": string(domain.InvoiceStatusSent),
				"to":   string(domain.InvoiceStatusOverdue),
			})
		}

		if invoice.LastReminderSent != nil && !invoice.LastReminderSent.Before(remindBefore) {
			continue
		}

		bundle, err := s.documents.Load(ownerCtx, invoice.ID.String())
		if err == nil {
			bundle.Invoice = invoice
			_, err = s.remind(ownerCtx, bundle, triggerSweep)
		}
		if err != nil {
			result.Failed++
			level := s.log.Warn
			if errors.Is(err, domain.ErrMissingRecipient) {
				level = s.log.Info
			}
			level("reminder skipped", zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
			continue
		}
		result.Reminded++
	}

	s.log.Info("overdue sweep finished",
		zap.Int("marked_overdue", result.MarkedOverdue),
		zap.Int("reminded", result.Reminded),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// deliver renders the canvas PDF and emails it with templateName.
func (s *DeliveryService) deliver(ctx context.Context, bundle domain.Bundle, subject, templateName string) error {
	recipient := strings.TrimSpace(bundle.Client.Email)
	if recipient == "" {
		return domain.ErrMissingRecipient
	}

	doc, err := s.documents.Render(ctx, bundle, domain.DocumentRequest{Engine: render.BackendCanvas})
	if err != nil {
		return err
	}

	cfg := s.docConfig.Get()
	layout := render.Build(layoutInput(bundle, cfg, cfg.NumberFormat))
	data := messageData{
		ClientName:    bundle.Client.DisplayName(),
		BusinessName:  senderName(bundle),
		BusinessEmail: bundle.Sender.BusinessInfo.Email,
		InvoiceNumber: bundle.Invoice.InvoiceNumber,
		Total:         layout.Totals.Total.Value,
		DueDate:       layout.Dates.Due,
		PublicURL:     bundle.Invoice.PublicURL,
	}

	msg := email.Message{
		To:      []string{recipient},
		ReplyTo: bundle.Sender.BusinessInfo.Email,
		Subject: subject,
		Attachments: []email.Attachment{{
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Data:        doc.Body,
		}},
	}
	if err := s.email.SendTemplate(ctx, msg, templateName, data); err != nil {
		obslogger.WithInvoice(obslogger.WithContext(ctx, s.log), bundle.Invoice.ID.String(), bundle.Invoice.InvoiceNumber).Error("failed to send invoice email",
			zap.String("template", templateName),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (s *DeliveryService) audit(ctx context.Context, invoice domain.Invoice, action string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.Record(ctx, invoice.OwnerID, action, auditTarget, invoice.ID.String(), metadata); err != nil {
		s.log.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func senderName(bundle domain.Bundle) string {
	if name := strings.TrimSpace(bundle.Sender.BusinessInfo.Name); name != "" {
		return name
	}
	return "your supplier"
}
