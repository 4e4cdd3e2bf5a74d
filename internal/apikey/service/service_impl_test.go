package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	apikeydomain "github.com/smallbiznis/invoicedesk/internal/apikey/domain"
	"github.com/smallbiznis/invoicedesk/internal/apikey/repository"
	auditdomain "github.com/smallbiznis/invoicedesk/internal/audit/domain"
	auditrepository "github.com/smallbiznis/invoicedesk/internal/audit/repository"
	auditservice "github.com/smallbiznis/invoicedesk/internal/audit/service"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/ownercontext"
	"github.com/smallbiznis/invoicedesk/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testOwner = snowflake.ID(42)

type testEnv struct {
	svc   apikeydomain.Service
	clock *clock.FakeClock
	audit auditdomain.Service
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	db := dbtest.Open(t, &apikeydomain.APIKey{}, &auditdomain.AuditLog{})
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	audit := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  auditrepository.Provide(),
	})
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Repo:     repository.Provide(),
		AuditSvc: audit,
	})
	return testEnv{svc: svc, clock: clk, audit: audit}
}

func ownerCtx() context.Context {
	return ownercontext.WithOwnerID(context.Background(), testOwner)
}

func TestCreateAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)

	secret, err := env.svc.Create(ownerCtx(), apikeydomain.CreateRequest{Name: " laptop "})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(secret.APIKey, apikeydomain.KeyPrefix))
	assert.True(t, strings.HasPrefix(secret.KeyID, "key_"))
	assert.Equal(t, apikeydomain.RoleOwner, secret.Role)

	principal, err := env.svc.Authenticate(context.Background(), secret.APIKey)
	require.NoError(t, err)
	assert.Equal(t, testOwner, principal.OwnerID)
	assert.Equal(t, secret.KeyID, principal.KeyID)
	assert.Equal(t, apikeydomain.RoleOwner, principal.Role)

	keys, err := env.svc.List(ownerCtx())
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "laptop", keys[0].Name)
	require.NotNil(t, keys[0].LastUsedAt)
}

func TestCreate_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), apikeydomain.CreateRequest{Name: "x"})
	assert.ErrorIs(t, err, apikeydomain.ErrInvalidOwner)

	_, err = env.svc.Create(ownerCtx(), apikeydomain.CreateRequest{Name: "  "})
	assert.ErrorIs(t, err, apikeydomain.ErrInvalidName)

	_, err = env.svc.Create(ownerCtx(), apikeydomain.CreateRequest{Name: "x", Role: "admin"})
	assert.ErrorIs(t, err, apikeydomain.ErrInvalidRole)

	secret, err := env.svc.CreateForOwner(context.Background(), 7, apikeydomain.CreateRequest{Name: "ci", Role: "READONLY"})
	require.NoError(t, err)
	assert.Equal(t, apikeydomain.RoleReadonly, secret.Role)
}

func TestAuthenticate_Rejects(t *testing.T) {
	env := newTestEnv(t)

	for _, raw := range []string{"", "Bearer x", apikeydomain.KeyPrefix + "nope_0000"} {
		_, err := env.svc.Authenticate(context.Background(), raw)
		assert.ErrorIs(t, err, apikeydomain.ErrUnauthorized, raw)
	}
}

func TestRotate_GracePeriod(t *testing.T) {
	env := newTestEnv(t)

	old, err := env.svc.Create(ownerCtx(), apikeydomain.CreateRequest{Name: "server", Role: apikeydomain.RoleReadonly})
	require.NoError(t, err)

	next, err := env.svc.Rotate(ownerCtx(), old.KeyID)
	require.NoError(t, err)
	assert.NotEqual(t, old.KeyID, next.KeyID)
	assert.Equal(t, apikeydomain.RoleReadonly, next.Role)

	_, err = env.svc.Authenticate(context.Background(), old.APIKey)
	require.NoError(t, err, "old key keeps working during the grace period")

	env.clock.Advance(apiKeyRotationGracePeriod + time.Minute)
	_, err = env.svc.Authenticate(context.Background(), old.APIKey)
	assert.ErrorIs(t, err, apikeydomain.ErrUnauthorized)

	_, err = env.svc.Authenticate(context.Background(), next.APIKey)
	require.NoError(t, err)

	_, err = env.svc.Rotate(ownerCtx(), old.KeyID)
	assert.ErrorIs(t, err, apikeydomain.ErrNotFound)

	keys, err := env.svc.List(ownerCtx())
	require.NoError(t, err)
	require.Len(t, keys, 2)
	var rotated *apikeydomain.Response
	for i := range keys {
		if keys[i].KeyID == next.KeyID {
			rotated = &keys[i]
		}
	}
	require.NotNil(t, rotated)
	require.NotNil(t, rotated.RotatedFromKeyID)
	assert.Equal(t, old.KeyID, *rotated.RotatedFromKeyID)
}

func TestRevoke(t *testing.T) {
	env := newTestEnv(t)

	secret, err := env.svc.Create(ownerCtx(), apikeydomain.CreateRequest{Name: "temp"})
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.Revoke(ownerCtx(), " "), apikeydomain.ErrInvalidKeyID)
	assert.ErrorIs(t, env.svc.Revoke(ownerCtx(), "key_MISSING"), apikeydomain.ErrNotFound)

	otherOwner := ownercontext.WithOwnerID(context.Background(), 99)
	assert.ErrorIs(t, env.svc.Revoke(otherOwner, secret.KeyID), apikeydomain.ErrNotFound)

	require.NoError(t, env.svc.Revoke(ownerCtx(), secret.KeyID))
	_, err = env.svc.Authenticate(context.Background(), secret.APIKey)
	assert.ErrorIs(t, err, apikeydomain.ErrUnauthorized)

	logs, err := env.audit.List(ownerCtx(), auditdomain.ListAuditLogRequest{TargetType: "api_key"})
	require.NoError(t, err)
	require.Len(t, logs.AuditLogs, 2)
	assert.Equal(t, "api_key.revoked", logs.AuditLogs[0].Action)
}
