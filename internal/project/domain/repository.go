package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, project *Project) error
	Update(ctx context.Context, db *gorm.DB, project *Project) error
	Delete(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Project, error)
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter ListProjectFilter) ([]Project, error)
}
