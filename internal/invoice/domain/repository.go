package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	// Update writes the editable content of invoice; lifecycle columns are untouched.
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) (bool, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, invoice *Invoice, from InvoiceStatus) (bool, error)
	RecordReminder(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID, at time.Time) error
	Delete(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Invoice, error)
	FindByPublicToken(ctx context.Context, db *gorm.DB, token string) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	ListDueForSweep(ctx context.Context, db *gorm.DB, now time.Time, remindBefore time.Time, limit int) ([]*Invoice, error)
}
