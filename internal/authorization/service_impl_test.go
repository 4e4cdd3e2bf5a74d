package authorization

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) *ServiceImpl {
	t.Helper()
	enforcer, err := NewEnforcer(dbtest.Open(t))
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer}).(*ServiceImpl)
}

func TestAuthorize_Roles(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := Subject{OwnerID: snowflake.ID(42), KeyID: "key_A", Role: "owner"}
	reader := Subject{OwnerID: snowflake.ID(42), KeyID: "key_B", Role: "readonly"}

	tests := []struct {
		name    string
		subject Subject
		object  string
		action  string
		allowed bool
	}{
		{"owner creates invoice", owner, ObjectInvoice, ActionInvoiceCreate, true},
		{"owner publishes document", owner, ObjectDocument, ActionDocumentPublish, true},
		{"owner rotates key", owner, ObjectAPIKey, ActionAPIKeyRotate, true},
		{"readonly views invoice", reader, ObjectInvoice, ActionInvoiceView, true},
		{"readonly renders document", reader, ObjectDocument, ActionDocumentRender, true},
		{"readonly cannot send", reader, ObjectInvoice, ActionInvoiceSend, false},
		{"readonly cannot publish", reader, ObjectDocument, ActionDocumentPublish, false},
		{"readonly cannot manage keys", reader, ObjectAPIKey, ActionAPIKeyCreate, false},
		{"mismatched object", owner, ObjectClient, ActionInvoiceView, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Authorize(ctx, tt.subject, tt.object, tt.action)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestAuthorize_RoleChangeReplacesGrouping(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	subject := Subject{OwnerID: 7, KeyID: "key_C", Role: "owner"}

	require.NoError(t, svc.Authorize(ctx, subject, ObjectClient, ActionClientDelete))

	subject.Role = "readonly"
	assert.ErrorIs(t, svc.Authorize(ctx, subject, ObjectClient, ActionClientDelete), ErrForbidden)

	rules, err := svc.enforcer.GetFilteredGroupingPolicy(0, "api_key:key_C")
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestAuthorize_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, Subject{OwnerID: 1, Role: "owner"}, ObjectInvoice, ActionInvoiceView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, Subject{KeyID: "k", Role: "owner"}, ObjectInvoice, ActionInvoiceView), ErrInvalidOwner)
	assert.ErrorIs(t, svc.Authorize(ctx, Subject{OwnerID: 1, KeyID: "k", Role: "owner"}, " ", ActionInvoiceView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, Subject{OwnerID: 1, KeyID: "k", Role: "owner"}, ObjectInvoice, ""), ErrInvalidAction)
	assert.ErrorIs(t, svc.Authorize(ctx, Subject{OwnerID: 1, KeyID: "k", Role: "admin"}, ObjectInvoice, ActionInvoiceView), ErrForbidden)
}

func TestSeedPoliciesIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	first, err := NewEnforcer(db)
	require.NoError(t, err)
	before, err := first.GetPolicy()
	require.NoError(t, err)

	second, err := NewEnforcer(db)
	require.NoError(t, err)
	after, err := second.GetPolicy()
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
}
