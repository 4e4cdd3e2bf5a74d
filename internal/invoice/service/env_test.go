package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/invoicedesk/internal/audit/domain"
	auditrepo "github.com/smallbiznis/invoicedesk/internal/audit/repository"
	auditservice "github.com/smallbiznis/invoicedesk/internal/audit/service"
	clientdomain "github.com/smallbiznis/invoicedesk/internal/client/domain"
	clientrepo "github.com/smallbiznis/invoicedesk/internal/client/repository"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	companydomain "github.com/smallbiznis/invoicedesk/internal/company/domain"
	companyrepo "github.com/smallbiznis/invoicedesk/internal/company/repository"
	companyservice "github.com/smallbiznis/invoicedesk/internal/company/service"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/invoice/calc"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render/canvas"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render/flow"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render/receipt"
	invoicerepo "github.com/smallbiznis/invoicedesk/internal/invoice/repository"
	"github.com/smallbiznis/invoicedesk/internal/ownercontext"
	projectdomain "github.com/smallbiznis/invoicedesk/internal/project/domain"
	projectrepo "github.com/smallbiznis/invoicedesk/internal/project/repository"
	"github.com/smallbiznis/invoicedesk/internal/providers/email"
	"github.com/smallbiznis/invoicedesk/internal/storage"
	"github.com/smallbiznis/invoicedesk/pkg/db/dbtest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testOwner = snowflake.ID(42)

type recordingEmail struct {
	messages  []email.Message
	templates []string
	err       error
}

func (r *recordingEmail) Send(_ context.Context, msg email.Message) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *recordingEmail) SendTemplate(ctx context.Context, msg email.Message, name string, data any) error {
	html, err := email.Render(name, data)
	if err != nil {
		return err
	}
	msg.HTMLBody = html
	if err := r.Send(ctx, msg); err != nil {
		return err
	}
	r.templates = append(r.templates, name)
	return nil
}

type testEnv struct {
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	mail     *recordingEmail
	invoices domain.Service
	docs     domain.DocumentService
	delivery domain.DeliveryService
	audit    auditdomain.Service

	clientRepo  clientdomain.Repository
	projectRepo projectdomain.Repository
	companyRepo companydomain.Repository
}

func newTestEnv(t *testing.T, st storage.Storage) *testEnv {
	t.Helper()
	db := dbtest.Open(t,
		&domain.Invoice{},
		&clientdomain.Client{},
		&projectdomain.Project{},
		&companydomain.CompanyProfile{},
		&companydomain.InvoiceSettings{},
		&auditdomain.AuditLog{},
	)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	repo := invoicerepo.Provide()
	env := &testEnv{
		db:          db,
		node:        node,
		clock:       fakeClock,
		mail:        &recordingEmail{},
		clientRepo:  clientrepo.Provide(),
		projectRepo: projectrepo.Provide(),
		companyRepo: companyrepo.Provide(),
	}
	env.audit = auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: fakeClock, Repo: auditrepo.Provide(),
	})
	companySvc := companyservice.New(companyservice.Params{
		DB: db, Log: log, GenID: node, Clock: fakeClock, Repo: env.companyRepo,
	})
	docConfig := config.NewStaticDocumentConfigHolder(config.DefaultDocumentConfig())

	env.invoices = NewService(Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       fakeClock,
		Config:      config.Config{PublicBaseURL: "https://app.test/"},
		Repo:        repo,
		ClientRepo:  env.clientRepo,
		ProjectRepo: env.projectRepo,
		CompanyRepo: env.companyRepo,
		AuditSvc:    env.audit,
	})
	env.docs = NewDocumentService(DocumentParams{
		DB:          db,
		Log:         log,
		Clock:       fakeClock,
		Repo:        repo,
		ClientRepo:  env.clientRepo,
		ProjectRepo: env.projectRepo,
		CompanySvc:  companySvc,
		Registry:    render.NewRegistry(canvas.New(), flow.New(), receipt.New()),
		Storage:     st,
		DocConfig:   docConfig,
	})
	env.delivery = NewDeliveryService(DeliveryParams{
		DB:        db,
		Log:       log,
		Clock:     fakeClock,
		Repo:      repo,
		Documents: env.docs,
		Email:     env.mail,
		DocConfig: docConfig,
		AuditSvc:  env.audit,
	})
	return env
}

func ownerCtx() context.Context {
	return ownercontext.WithOwnerID(context.Background(), testOwner)
}

func (e *testEnv) seedClient(t *testing.T, emailAddr string) clientdomain.Client {
	t.Helper()
	client := clientdomain.Client{
		ID:        e.node.Generate(),
		OwnerID:   testOwner,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Company:   "Analytical Engines Ltd",
		Email:     emailAddr,
		Status:    clientdomain.StatusActive,
	}
	require.NoError(t, e.clientRepo.Insert(context.Background(), e.db, &client))
	return client
}

func (e *testEnv) seedProject(t *testing.T, clientID snowflake.ID) projectdomain.Project {
	t.Helper()
	project := projectdomain.Project{
		ID:       e.node.Generate(),
		OwnerID:  testOwner,
		ClientID: clientID,
		Name:     "Brand refresh",
		Status:   projectdomain.StatusActive,
	}
	require.NoError(t, e.projectRepo.Insert(context.Background(), e.db, &project))
	return project
}

func (e *testEnv) seedSettings(t *testing.T, settings companydomain.InvoiceSettings) {
	t.Helper()
	settings.ID = e.node.Generate()
	settings.OwnerID = testOwner
	if settings.NextSequence == 0 {
		settings.NextSequence = 1
	}
	require.NoError(t, e.companyRepo.UpsertSettings(context.Background(), e.db, &settings))
}

func num(v string) calc.Number {
	return calc.Number{Decimal: decimal.RequireFromString(v), Set: true}
}

func item(description, quantity, rate string) domain.LineItemInput {
	return domain.LineItemInput{Description: description, Quantity: num(quantity), Rate: num(rate)}
}

func ptr[T any](v T) *T { return &v }

var errSMTPDown = errors.New("smtp down")

func invoiceRepo(*testEnv) domain.Repository { return invoicerepo.Provide() }
