package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/smallbiznis/invoicedesk/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectInvoice  = "invoice"
	ObjectDocument = "document"
	ObjectClient   = "client"
	ObjectProject  = "project"
	ObjectCompany  = "company"
	ObjectAPIKey   = "api_key"
	ObjectAuditLog = "audit_log"
)

const (
	ActionInvoiceView       = "invoice.view"
	ActionInvoiceCreate     = "invoice.create"
	ActionInvoiceUpdate     = "invoice.update"
	ActionInvoiceDelete     = "invoice.delete"
	ActionInvoiceTransition = "invoice.transition"
	ActionInvoiceSend       = "invoice.send"
	ActionInvoiceRemind     = "invoice.remind"

	ActionDocumentRender  = "document.render"
	ActionDocumentPublish = "document.publish"

	ActionClientView   = "client.view"
	ActionClientCreate = "client.create"
	ActionClientUpdate = "client.update"
	ActionClientDelete = "client.delete"

	ActionProjectView   = "project.view"
	ActionProjectCreate = "project.create"
	ActionProjectUpdate = "project.update"
	ActionProjectDelete = "project.delete"

	ActionCompanyView   = "company.view"
	ActionCompanyUpdate = "company.update"

	ActionAPIKeyView   = "api_key.view"
	ActionAPIKeyCreate = "api_key.create"
	ActionAPIKeyRotate = "api_key.rotate"
	ActionAPIKeyRevoke = "api_key.revoke"

	ActionAuditLogView = "audit_log.view"
)

const (
	roleOwner    = "owner"
	roleReadonly = "readonly"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

// NewEnforcer loads persisted policies through the gorm adapter and seeds
// the built-in role grants.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, subject Subject, object string, action string) error {
	keyID := strings.TrimSpace(subject.KeyID)
	if keyID == "" {
		return ErrInvalidActor
	}
	if subject.OwnerID == 0 {
		return ErrInvalidOwner
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	role := strings.ToLower(strings.TrimSpace(subject.Role))
	if role != roleOwner && role != roleReadonly {
		s.auditDenied(ctx, subject, object, action)
		return ErrForbidden
	}

	sub := "api_key:" + keyID
	domain := fmt.Sprintf("owner:%s", subject.OwnerID)
	if err := s.ensureGrouping(sub, "role:"+role, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(sub, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, subject, object, action)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping keeps exactly one role link per key and domain so a key whose
// role changed is not left with its previous grants.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		if _, err := s.enforcer.RemoveGroupingPolicy(params...); err != nil {
			return err
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, subject Subject, object string, action string) {
	s.log.Info("authorization denied",
		zap.String("key_id", subject.KeyID),
		zap.String("role", subject.Role),
		zap.String("object", object),
		zap.String("action", action),
	)
	if s.auditSvc == nil || subject.OwnerID == 0 {
		return
	}
	err := s.auditSvc.Record(ctx, subject.OwnerID, "authorization.denied", "authorization", object, map[string]any{
		"action": action,
		"role":   subject.Role,
	})
	if err != nil {
		s.log.Warn("failed to record audit log", zap.Error(err))
	}
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	readonly := [][]string{
		{ObjectInvoice, ActionInvoiceView},
		{ObjectDocument, ActionDocumentRender},
		{ObjectClient, ActionClientView},
		{ObjectProject, ActionProjectView},
		{ObjectCompany, ActionCompanyView},
	}
	owner := append([][]string{
		{ObjectInvoice, ActionInvoiceCreate},
		{ObjectInvoice, ActionInvoiceUpdate},
		{ObjectInvoice, ActionInvoiceDelete},
		{ObjectInvoice, ActionInvoiceTransition},
		{ObjectInvoice, ActionInvoiceSend},
		{ObjectInvoice, ActionInvoiceRemind},
		{ObjectDocument, ActionDocumentPublish},
		{ObjectClient, ActionClientCreate},
		{ObjectClient, ActionClientUpdate},
		{ObjectClient, ActionClientDelete},
		{ObjectProject, ActionProjectCreate},
		{ObjectProject, ActionProjectUpdate},
		{ObjectProject, ActionProjectDelete},
		{ObjectCompany, ActionCompanyUpdate},
		{ObjectAPIKey, ActionAPIKeyView},
		{ObjectAPIKey, ActionAPIKeyCreate},
		{ObjectAPIKey, ActionAPIKeyRotate},
		{ObjectAPIKey, ActionAPIKeyRevoke},
		{ObjectAuditLog, ActionAuditLogView},
	}, readonly...)

	policies := make([][]string, 0, len(owner)+len(readonly))
	for _, rule := range readonly {
		policies = append(policies, []string{"role:" + roleReadonly, rule[0], rule[1]})
	}
	for _, rule := range owner {
		policies = append(policies, []string{"role:" + roleOwner, rule[0], rule[1]})
	}

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
