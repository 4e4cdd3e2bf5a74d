package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

// Update replaces content only while the stored status is still editable.
func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("owner_id = ? AND id = ? AND status IN ?", invoice.OwnerID, invoice.ID, domain.EditableStatuses).
		Select(
			"client_id", "project_id", "issue_date", "due_date", "line_items",
			"subtotal", "tax_rate", "tax_name", "tax_amount", "total",
			"show_item_column", "show_quantity_column", "show_rate_column",
			"notes", "payment_terms", "updated_at",
		).
		Updates(invoice)
	return res.RowsAffected > 0, res.Error
}

// UpdateStatus applies a status change only if the stored status still equals from.
func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, from domain.InvoiceStatus) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("owner_id = ? AND id = ? AND status = ?", invoice.OwnerID, invoice.ID, from).
		Select("status", "sent_at", "paid_at", "updated_at").
		Updates(invoice)
	return res.RowsAffected > 0, res.Error
}

func (r *repo) RecordReminder(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Updates(map[string]any{
			"last_reminder_sent": at,
			"reminder_count":     gorm.Expr("reminder_count + 1"),
			"updated_at":         at,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&domain.Invoice{})
	return res.RowsAffected > 0, res.Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*domain.Invoice, error) {
	return first(db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, id))
}

func (r *repo) FindByPublicToken(ctx context.Context, db *gorm.DB, token string) (*domain.Invoice, error) {
	return first(db.WithContext(ctx).Where("public_token = ?", token))
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("owner_id = ?", ownerID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ClientID != 0 {
		stmt = stmt.Where("client_id = ?", filter.ClientID)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		if id, err := snowflake.ParseString(cursor.ID); err == nil {
			stmt = stmt.Where("id < ?", id)
		}
	}

	var invoices []*domain.Invoice
	err := stmt.
		Order("id desc").
		Limit(page.Limit() + 1).
		Find(&invoices).Error
	return invoices, err
}

// ListDueForSweep returns sent invoices past due and overdue invoices not
// reminded since remindBefore, across all owners.
func (r *repo) ListDueForSweep(ctx context.Context, db *gorm.DB, now time.Time, remindBefore time.Time, limit int) ([]*domain.Invoice, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var invoices []*domain.Invoice
	err := db.WithContext(ctx).
		Where(
			db.Where("status = ? AND due_date < ?", domain.InvoiceStatusSent, today).
				Or("status = ? AND (last_reminder_sent IS NULL OR last_reminder_sent < ?)", domain.InvoiceStatusOverdue, remindBefore),
		).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "due_date"}}).
		Order("id").
		Limit(limit).
		Find(&invoices).Error
	return invoices, err
}

func first(stmt *gorm.DB) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := stmt.First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}
