package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/smallbiznis/invoicedesk/internal/client/domain"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/ownercontext"
	"github.com/smallbiznis/invoicedesk/internal/project/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	ClientRepo clientdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	clientRepo clientdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("project.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		clientRepo: p.ClientRepo,
	}
}

func (s *Service) Create(ctx context.Context, input domain.ProjectInput) (domain.Project, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.Project{}, domain.ErrInvalidOwner
	}

	now := s.clock.Now().UTC()
	project := domain.Project{
		ID:        s.genID.Generate(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(ctx, &project, input); err != nil {
		return domain.Project{}, err
	}

	if err := s.repo.Insert(ctx, s.db, &project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

func (s *Service) Update(ctx context.Context, id string, input domain.ProjectInput) (domain.Project, error) {
	project, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.apply(ctx, &project, input); err != nil {
		return domain.Project{}, err
	}
	project.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidOwner
	}
	projectID, err := parseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, s.db, ownerID, projectID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Project, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.Project{}, domain.ErrInvalidOwner
	}
	projectID, err := parseID(id)
	if err != nil {
		return domain.Project{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, ownerID, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if item == nil {
		return domain.Project{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProjectRequest) ([]domain.Project, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	var filter domain.ListProjectFilter
	if raw := strings.TrimSpace(req.ClientID); raw != "" {
		clientID, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidClient
		}
		filter.ClientID = clientID
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		filter.Status = domain.Status(strings.ToLower(raw))
		if !filter.Status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
	}

	return s.repo.List(ctx, s.db, ownerID, filter)
}

func (s *Service) apply(ctx context.Context, project *domain.Project, input domain.ProjectInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.ErrInvalidName
	}

	status := domain.Status(strings.ToLower(strings.TrimSpace(string(input.Status))))
	if status == "" {
		status = domain.StatusActive
	}
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}

	clientID, err := snowflake.ParseString(strings.TrimSpace(input.ClientID))
	if err != nil || clientID == 0 {
		return domain.ErrInvalidClient
	}
	client, err := s.clientRepo.FindByID(ctx, s.db, project.OwnerID, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return domain.ErrInvalidClient
	}

	project.ClientID = clientID
	project.Name = name
	project.Description = strings.TrimSpace(input.Description)
	project.Status = status
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
