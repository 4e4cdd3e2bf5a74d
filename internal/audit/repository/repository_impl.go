package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/invoicedesk/internal/audit/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Create(entry).Error
}

// List returns newest entries first, fetching one extra row so the caller
// can tell whether another page exists.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	stmt := db.WithContext(ctx).
		Model(&domain.AuditLog{}).
		Scopes(ownedBy(filter), matching(filter), within(filter)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true})
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}
	if err := stmt.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func ownedBy(filter domain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("owner_id = ?", filter.OwnerID)
		if filter.BeforeID != 0 {
			db = db.Where("id < ?", filter.BeforeID)
		}
		return db
	}
}

func matching(filter domain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for column, value := range map[string]string{
			"action":      filter.Action,
			"target_type": filter.TargetType,
			"target_id":   filter.TargetID,
		} {
			if value = strings.TrimSpace(value); value != "" {
				db = db.Where(column+" = ?", value)
			}
		}
		return db
	}
}

func within(filter domain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.StartAt != nil {
			db = db.Where("created_at >= ?", filter.StartAt.UTC())
		}
		if filter.EndAt != nil {
			db = db.Where("created_at <= ?", filter.EndAt.UTC())
		}
		return db
	}
}
