package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/client/domain"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/ownercontext"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
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

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, input domain.ClientInput) (domain.Client, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.Client{}, domain.ErrInvalidOwner
	}

	now := s.clock.Now().UTC()
	client := domain.Client{
		ID:        s.genID.Generate(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := apply(&client, input); err != nil {
		return domain.Client{}, err
	}
	if client.AvatarColor == "" {
		client.AvatarColor = domain.AvatarColorFor(client.ID)
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return domain.Client{}, err
	}
	return client, nil
}

// Update replaces every editable field of the client.
func (s *Service) Update(ctx context.Context, id string, input domain.ClientInput) (domain.Client, error) {
	client, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Client{}, err
	}

	color := client.AvatarColor
	if err := apply(&client, input); err != nil {
		return domain.Client{}, err
	}
	if client.AvatarColor == "" {
		client.AvatarColor = color
	}
	client.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &client); err != nil {
		return domain.Client{}, err
	}
	return client, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidOwner
	}
	clientID, err := parseID(id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, s.db, ownerID, clientID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Client, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.Client{}, domain.ErrInvalidOwner
	}
	clientID, err := parseID(id)
	if err != nil {
		return domain.Client{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, ownerID, clientID)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.ListClientResponse{}, domain.ErrInvalidOwner
	}

	filter := domain.ListClientFilter{Search: strings.TrimSpace(req.Search)}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = domain.Status(strings.ToLower(status))
		if !filter.Status.Valid() {
			return domain.ListClientResponse{}, domain.ErrInvalidStatus
		}
	}

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	items, err := s.repo.List(ctx, s.db, ownerID, filter, page)
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, page.Limit(), func(c *domain.Client) string {
		return c.ID.String()
	})
	clients := make([]domain.Client, 0, len(items))
	for _, item := range items {
		clients = append(clients, *item)
	}
	return domain.ListClientResponse{PageInfo: pageInfo, Clients: clients}, nil
}

func apply(client *domain.Client, input domain.ClientInput) error {
	email := strings.TrimSpace(input.Email)
	if email != "" && !strings.Contains(email, "@") {
		return domain.ErrInvalidEmail
	}

	status := domain.Status(strings.ToLower(strings.TrimSpace(string(input.Status))))
	if status == "" {
		status = domain.StatusActive
	}
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}

	client.FirstName = strings.TrimSpace(input.FirstName)
	client.LastName = strings.TrimSpace(input.LastName)
	client.Company = strings.TrimSpace(input.Company)
	client.Email = email
	client.Phone = strings.TrimSpace(input.Phone)
	client.PhoneCountryCode = strings.TrimSpace(input.PhoneCountryCode)
	client.Address = input.Address.Normalize()
	client.TaxID = strings.TrimSpace(input.TaxID)
	client.Status = status
	client.AvatarColor = strings.TrimSpace(input.AvatarColor)
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
