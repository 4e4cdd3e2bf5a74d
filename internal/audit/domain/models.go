package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type ActorType string

const (
	ActorTypeAPIKey ActorType = "api_key"
	ActorTypeSystem ActorType = "system"
)

// AuditLog is one recorded change to an owner's data.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	OwnerID    snowflake.ID      `gorm:"not null;index:ix_audit_logs_owner_created,priority:1" json:"owner_id"`
	ActorType  ActorType         `gorm:"type:text;not null" json:"actor_type"`
	ActorID    *string           `gorm:"type:text" json:"actor_id,omitempty"`
	Action     string            `gorm:"type:text;not null;index" json:"action"`
	TargetType string            `gorm:"type:text;not null" json:"target_type"`
	TargetID   *string           `gorm:"type:text;index" json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;index:ix_audit_logs_owner_created,priority:2" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type ListFilter struct {
	OwnerID    snowflake.ID
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
	BeforeID   snowflake.ID
	Limit      int
}
