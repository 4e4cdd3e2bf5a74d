package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOnHold, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Project struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerID     snowflake.ID `gorm:"not null;index" json:"owner_id"`
	ClientID    snowflake.ID `gorm:"not null;index" json:"client_id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Status      Status       `gorm:"type:text;not null" json:"status"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
