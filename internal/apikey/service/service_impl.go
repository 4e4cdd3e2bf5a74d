package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	apikeydomain "github.com/smallbiznis/invoicedesk/internal/apikey/domain"
	auditdomain "github.com/smallbiznis/invoicedesk/internal/audit/domain"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/ownercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	apiKeyRotationGracePeriod = 24 * time.Hour
	auditTarget               = "api_key"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     apikeydomain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     apikeydomain.Repository
	genID    *snowflake.Node
	clock    clock.Clock
	auditSvc auditdomain.Service
}

func New(p Params) apikeydomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("apikey.service"),
		repo:     p.Repo,
		genID:    p.GenID,
		clock:    p.Clock,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) List(ctx context.Context) ([]apikeydomain.Response, error) {
	ownerID, err := ownerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, s.db, ownerID)
	if err != nil {
		return nil, err
	}

	resp := make([]apikeydomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Create(ctx context.Context, req apikeydomain.CreateRequest) (*apikeydomain.SecretResponse, error) {
	ownerID, err := ownerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.CreateForOwner(ctx, ownerID, req)
}

func (s *Service) CreateForOwner(ctx context.Context, ownerID snowflake.ID, req apikeydomain.CreateRequest) (*apikeydomain.SecretResponse, error) {
	if ownerID == 0 {
		return nil, apikeydomain.ErrInvalidOwner
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apikeydomain.ErrInvalidName
	}
	role, err := apikeydomain.NormalizeRole(req.Role)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	id := s.genID.Generate()
	keyID := newKeyID(id)
	plain, hash, err := apikeydomain.NewSecret(keyID)
	if err != nil {
		return nil, err
	}

	key := &apikeydomain.APIKey{
		ID:        id,
		OwnerID:   ownerID,
		KeyID:     keyID,
		Name:      name,
		Role:      role,
		KeyHash:   hash,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, key); err != nil {
		return nil, fmt.Errorf("insert api key: %w", err)
	}

	s.audit(ctx, ownerID, "api_key.created", keyID, map[string]any{"role": role})
	return &apikeydomain.SecretResponse{KeyID: keyID, Role: role, APIKey: plain}, nil
}

func (s *Service) Rotate(ctx context.Context, keyID string) (*apikeydomain.SecretResponse, error) {
	ownerID, err := ownerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(keyID)
	if trimmed == "" {
		return nil, apikeydomain.ErrInvalidKeyID
	}

	var result *apikeydomain.SecretResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByKeyID(ctx, tx, ownerID, trimmed)
		if err != nil {
			return err
		}
		now := s.clock.Now().UTC()
		if !current.Usable(now) {
			return apikeydomain.ErrNotFound
		}

		expires := now.Add(apiKeyRotationGracePeriod)
		current.ExpiresAt = &expires
		current.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, current); err != nil {
			return err
		}

		id := s.genID.Generate()
		nextKeyID := newKeyID(id)
		plain, hash, err := apikeydomain.NewSecret(nextKeyID)
		if err != nil {
			return err
		}

		rotatedFrom := current.KeyID
		next := &apikeydomain.APIKey{
			ID:               id,
			OwnerID:          ownerID,
			KeyID:            nextKeyID,
			Name:             current.Name,
			Role:             current.Role,
			KeyHash:          hash,
			IsActive:         true,
			CreatedAt:        now,
			UpdatedAt:        now,
			RotatedFromKeyID: &rotatedFrom,
		}
		if err := s.repo.Insert(ctx, tx, next); err != nil {
			return err
		}

		result = &apikeydomain.SecretResponse{KeyID: next.KeyID, Role: next.Role, APIKey: plain}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, ownerID, "api_key.rotated", trimmed, map[string]any{"new_key_id": result.KeyID})
	return result, nil
}

func (s *Service) Revoke(ctx context.Context, keyID string) error {
	ownerID, err := ownerIDFromContext(ctx)
	if err != nil {
		return err
	}

	trimmed := strings.TrimSpace(keyID)
	if trimmed == "" {
		return apikeydomain.ErrInvalidKeyID
	}

	key, err := s.repo.FindByKeyID(ctx, s.db, ownerID, trimmed)
	if err != nil {
		return err
	}
	if key == nil {
		return apikeydomain.ErrNotFound
	}

	now := s.clock.Now().UTC()
	key.IsActive = false
	key.UpdatedAt = now
	if key.ExpiresAt == nil || key.ExpiresAt.After(now) {
		key.ExpiresAt = &now
	}
	if err := s.repo.Update(ctx, s.db, key); err != nil {
		return err
	}

	s.audit(ctx, ownerID, "api_key.revoked", trimmed, nil)
	return nil
}

// Authenticate resolves a bearer secret to its owner. Unknown, revoked and
// expired keys all report ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, raw string) (*apikeydomain.Principal, error) {
	raw = strings.TrimSpace(raw)
	if !apikeydomain.HasKeyPrefix(raw) {
		return nil, apikeydomain.ErrUnauthorized
	}

	key, err := s.repo.FindByHash(ctx, s.db, apikeydomain.HashAPIKey(raw))
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	if !key.Usable(now) {
		return nil, apikeydomain.ErrUnauthorized
	}

	if err := s.repo.TouchLastUsed(ctx, s.db, key.ID, now); err != nil {
		s.log.Warn("failed to record api key usage", zap.String("key_id", key.KeyID), zap.Error(err))
	}

	return &apikeydomain.Principal{
		OwnerID: key.OwnerID,
		KeyID:   key.KeyID,
		Role:    key.Role,
	}, nil
}

func (s *Service) audit(ctx context.Context, ownerID snowflake.ID, action, keyID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.Record(ctx, ownerID, action, auditTarget, keyID, metadata); err != nil {
		s.log.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func ownerIDFromContext(ctx context.Context) (snowflake.ID, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return 0, apikeydomain.ErrInvalidOwner
	}
	return ownerID, nil
}

func toResponse(key *apikeydomain.APIKey) apikeydomain.Response {
	return apikeydomain.Response{
		KeyID:            key.KeyID,
		Name:             key.Name,
		Role:             key.Role,
		IsActive:         key.IsActive,
		CreatedAt:        key.CreatedAt,
		LastUsedAt:       key.LastUsedAt,
		ExpiresAt:        key.ExpiresAt,
		RotatedFromKeyID: key.RotatedFromKeyID,
	}
}

func newKeyID(id snowflake.ID) string {
	return "key_" + strings.ToUpper(strconv.FormatInt(int64(id), 36))
}
