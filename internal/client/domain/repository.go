package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, client *Client) error
	Update(ctx context.Context, db *gorm.DB, client *Client) error
	Delete(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Client, error)
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter ListClientFilter, page pagination.Pagination) ([]*Client, error)
}
