package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/project/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Create(project).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("owner_id = ? AND id = ?", project.OwnerID, project.ID).
		Select("client_id", "name", "description", "status", "updated_at").
		Updates(project).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&domain.Project{})
	return res.RowsAffected > 0, res.Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*domain.Project, error) {
	var project domain.Project
	err := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter domain.ListProjectFilter) ([]domain.Project, error) {
	stmt := db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if filter.ClientID != 0 {
		stmt = stmt.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	var projects []domain.Project
	if err := stmt.Order("name asc, id asc").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}
