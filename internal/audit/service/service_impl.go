package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/audit/domain"
	"github.com/smallbiznis/invoicedesk/internal/audit/masking"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	obscontext "github.com/smallbiznis/invoicedesk/internal/observability/context"
	"github.com/smallbiznis/invoicedesk/internal/ownercontext"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, ownerID snowflake.ID, action, targetType, targetID string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return domain.ErrInvalidAction
	}
	if ownerID == 0 {
		return domain.ErrInvalidOwner
	}
	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		targetType = "unknown"
	}

	payload := masking.Redact(metadata)
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	entry := domain.AuditLog{
		ID:         s.genID.Generate(),
		OwnerID:    ownerID,
		ActorType:  domain.ActorTypeSystem,
		Action:     action,
		TargetType: targetType,
		TargetID:   normalize(targetID),
		Metadata:   datatypes.JSONMap(payload),
		CreatedAt:  s.clock.Now().UTC(),
	}
	if actor := ownercontext.ActorFromContext(ctx); actor != "" {
		entry.ActorType = domain.ActorTypeAPIKey
		entry.ActorID = normalize(actor)
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListAuditLogRequest) (domain.ListAuditLogResponse, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.ListAuditLogResponse{}, domain.ErrInvalidOwner
	}
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return domain.ListAuditLogResponse{}, domain.ErrInvalidTimeRange
	}

	filter := domain.ListFilter{
		OwnerID:    ownerID,
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Limit:      req.Limit(),
	}
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return domain.ListAuditLogResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(cursor.ID))
		if err != nil || id == 0 {
			return domain.ListAuditLogResponse{}, domain.ErrInvalidPageToken
		}
		filter.BeforeID = id
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListAuditLogResponse{}, err
	}
	items, pageInfo := pagination.Trim(items, filter.Limit, func(item *domain.AuditLog) string {
		return item.ID.String()
	})

	logs := make([]domain.AuditLog, 0, len(items))
	for _, item := range items {
		logs = append(logs, *item)
	}
	return domain.ListAuditLogResponse{PageInfo: pageInfo, AuditLogs: logs}, nil
}

func normalize(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
