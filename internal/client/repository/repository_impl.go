package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/client/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Create(client).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("owner_id = ? AND id = ?", client.OwnerID, client.ID).
		Select("*").
		Omit("id", "owner_id", "created_at").
		Updates(client).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&domain.Client{})
	return res.RowsAffected > 0, res.Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter domain.ListClientFilter, page pagination.Pagination) ([]*domain.Client, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("owner_id = ?", ownerID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(email) LIKE ?",
			like, like, like, like,
		)
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

	var clients []*domain.Client
	err := stmt.
		Order("id desc").
		Limit(page.Limit() + 1).
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}
