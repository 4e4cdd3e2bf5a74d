package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/client/domain"
	"github.com/smallbiznis/invoicedesk/internal/client/repository"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/ownercontext"
	"github.com/smallbiznis/invoicedesk/internal/postal"
	"github.com/smallbiznis/invoicedesk/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	db := dbtest.Open(t, &domain.Client{})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func ownerCtx(id int64) context.Context {
	return ownercontext.WithOwnerID(context.Background(), snowflake.ID(id))
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := ownerCtx(1)

	created, err := svc.Create(ctx, domain.ClientInput{
		FirstName: " Ada ",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Address:   postal.Address{Street: "12 St James's Sq", City: "London", Country: "UK"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, created.Status)
	assert.NotEmpty(t, created.AvatarColor)
	assert.Equal(t, "Ada Lovelace", created.DisplayName())

	got, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "12 St James's Sq\nLondon\nUK", got.Address.Compose())

	_, err = svc.GetByID(ownerCtx(2), created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.ClientInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)

	_, err = svc.Create(ownerCtx(1), domain.ClientInput{Email: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(ownerCtx(1), domain.ClientInput{Status: "vip"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestUpdateReplacesFieldsAndKeepsColor(t *testing.T) {
	svc := newTestService(t)
	ctx := ownerCtx(1)

	created, err := svc.Create(ctx, domain.ClientInput{Company: "Acme", Phone: "555"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID.String(), domain.ClientInput{FirstName: "Wile", Status: domain.StatusLead})
	require.NoError(t, err)
	assert.Equal(t, "", updated.Company)
	assert.Equal(t, "", updated.Phone)
	assert.Equal(t, created.AvatarColor, updated.AvatarColor)

	got, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Wile", got.DisplayName())
	assert.Equal(t, domain.StatusLead, got.Status)
}

func TestListPaginatesAndFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := ownerCtx(1)

	for _, name := range []string{"Alpha", "Bravo", "Charlie"} {
		_, err := svc.Create(ctx, domain.ClientInput{Company: name})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, domain.ClientInput{Company: "Delta", Status: domain.StatusInactive})
	require.NoError(t, err)

	first, err := svc.List(ctx, domain.ListClientRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Clients, 2)
	assert.True(t, first.HasMore)

	second, err := svc.List(ctx, domain.ListClientRequest{PageSize: 2, PageToken: first.NextPageToken})
	require.NoError(t, err)
	assert.Len(t, second.Clients, 2)
	assert.False(t, second.HasMore)

	inactive, err := svc.List(ctx, domain.ListClientRequest{Status: "inactive"})
	require.NoError(t, err)
	require.Len(t, inactive.Clients, 1)
	assert.Equal(t, "Delta", inactive.Clients[0].Company)

	search, err := svc.List(ctx, domain.ListClientRequest{Search: "rav"})
	require.NoError(t, err)
	require.Len(t, search.Clients, 1)
	assert.Equal(t, "Bravo", search.Clients[0].Company)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := ownerCtx(1)

	created, err := svc.Create(ctx, domain.ClientInput{Company: "Gone"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID.String()))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID.String()), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "abc"), domain.ErrInvalidID)
}
