package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	apikeydomain "github.com/smallbiznis/invoicedesk/internal/apikey/domain"
	"github.com/smallbiznis/invoicedesk/internal/authorization"
	"github.com/smallbiznis/invoicedesk/internal/config"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	"github.com/smallbiznis/invoicedesk/internal/ownercontext"
	publicinvoicedomain "github.com/smallbiznis/invoicedesk/internal/publicinvoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	ownerKey    = "idk_live_owner"
	readonlyKey = "idk_live_readonly"
)

type fakeAPIKeyService struct {
	apikeydomain.Service
}

func (f *fakeAPIKeyService) Authenticate(ctx context.Context, raw string) (*apikeydomain.Principal, error) {
	switch raw {
	case ownerKey:
		return &apikeydomain.Principal{OwnerID: snowflake.ID(10), KeyID: "key_OWNER", Role: apikeydomain.RoleOwner}, nil
	case readonlyKey:
		return &apikeydomain.Principal{OwnerID: snowflake.ID(10), KeyID: "key_READ", Role: apikeydomain.RoleReadonly}, nil
	default:
		return nil, apikeydomain.ErrUnauthorized
	}
}

// fakeAuthorizer lets readonly keys view and render only.
type fakeAuthorizer struct{}

func (fakeAuthorizer) Authorize(ctx context.Context, subject authorization.Subject, object, action string) error {
	if subject.Role == apikeydomain.RoleOwner {
		return nil
	}
	switch action {
	case authorization.ActionInvoiceView, authorization.ActionDocumentRender:
		return nil
	}
	return authorization.ErrForbidden
}

type fakeInvoiceService struct {
	invoicedomain.Service
	invoices map[string]invoicedomain.Invoice
}

func (f *fakeInvoiceService) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	if _, ok := ownercontext.OwnerIDFromContext(ctx); !ok {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidOwner
	}
	inv, ok := f.invoices[id]
	if !ok {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvoiceService) TransitionStatus(ctx context.Context, id string, next invoicedomain.InvoiceStatus) (invoicedomain.Invoice, error) {
	inv, err := f.GetByID(ctx, id)
	if err != nil {
		return inv, err
	}
	if !inv.Status.CanTransition(next) {
		return inv, invoicedomain.ErrInvalidTransition
	}
	inv.Status = next
	return inv, nil
}

type fakeDocumentService struct {
	invoicedomain.DocumentService
	published []string
	renderErr error
}

func (f *fakeDocumentService) Load(ctx context.Context, id string) (invoicedomain.Bundle, error) {
	if id != "42" {
		return invoicedomain.Bundle{}, invoicedomain.ErrNotFound
	}
	return invoicedomain.Bundle{Invoice: invoicedomain.Invoice{ID: snowflake.ID(42), InvoiceNumber: "INV-0001"}}, nil
}

func (f *fakeDocumentService) Render(ctx context.Context, bundle invoicedomain.Bundle, req invoicedomain.DocumentRequest) (invoicedomain.Document, error) {
	if f.renderErr != nil {
		return invoicedomain.Document{}, f.renderErr
	}
	return invoicedomain.Document{
		Filename:    bundle.Invoice.InvoiceNumber + ".pdf",
		ContentType: "application/pdf",
		Body:        []byte("%PDF-" + req.Engine),
	}, nil
}

func (f *fakeDocumentService) Publish(ctx context.Context, bundle invoicedomain.Bundle, doc invoicedomain.Document) (string, error) {
	f.published = append(f.published, doc.Filename)
	return "https://files.example.com/" + doc.Filename, nil
}

type fakePublicInvoiceService struct {
	publicinvoicedomain.Service
}

func (fakePublicInvoiceService) GetInvoiceForPublicView(ctx context.Context, token, numberFormat string) (*publicinvoicedomain.PublicInvoiceResponse, error) {
	if token != "tok_sent" {
		return nil, publicinvoicedomain.ErrInvoiceUnavailable
	}
	return &publicinvoicedomain.PublicInvoiceResponse{Status: publicinvoicedomain.PublicInvoiceStatusUnpaid}, nil
}

func (fakePublicInvoiceService) RenderDocument(ctx context.Context, token string, req invoicedomain.DocumentRequest) (invoicedomain.Document, error) {
	if token != "tok_sent" {
		return invoicedomain.Document{}, publicinvoicedomain.ErrInvoiceUnavailable
	}
	if req.Engine == render.BackendReceipt {
		return invoicedomain.Document{}, render.ErrNotPaid
	}
	return invoicedomain.Document{Filename: "INV-0001.html", ContentType: "text/html; charset=utf-8", Body: []byte("<html></html>")}, nil
}

type fakeLimiter struct {
	allowed bool
	keys    []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (ratelimit.Decision, error) {
	f.keys = append(f.keys, key)
	return ratelimit.Decision{Allowed: f.allowed, RetryAfter: 2 * time.Second}, nil
}

type testServer struct {
	engine    *gin.Engine
	documents *fakeDocumentService
	limiter   *fakeLimiter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	documents := &fakeDocumentService{}
	limiter := &fakeLimiter{allowed: true}
	NewServer(ServerParams{
		Gin:       engine,
		Cfg:       config.Config{},
		Log:       zap.NewNop(),
		APIKeySvc: &fakeAPIKeyService{},
		AuthzSvc:  fakeAuthorizer{},
		InvoiceSvc: &fakeInvoiceService{invoices: map[string]invoicedomain.Invoice{
			"42": {ID: snowflake.ID(42), InvoiceNumber: "INV-0001", Status: invoicedomain.InvoiceStatusPaid},
		}},
		DocumentSvc:      documents,
		PublicInvoiceSvc: fakePublicInvoiceService{},
		PublicLimiter:    limiter,
	})

	return &testServer{engine: engine, documents: documents, limiter: limiter}
}

func (ts *testServer) do(method, path, key string, body any) *httptest.ResponseRecorder {
	var payload bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&payload).Encode(body)
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGenerateInvoicePDFRequiresAPIKey(t *testing.T) {
	ts := newTestServer(t)

	for _, key := range []string{"", "idk_live_unknown"} {
		rec := ts.do(http.MethodPost, "/api/functions/generate-invoice-pdf", key, map[string]any{"invoice_id": "42"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, map[string]any{"error": "Unauthorized"}, decodeBody(t, rec))
	}
}

func TestGenerateInvoicePDFInline(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/functions/generate-invoice-pdf", readonlyKey, map[string]any{"invoice_id": "42"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename=INV-0001.pdf`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-canvas", rec.Body.String())
	assert.Empty(t, ts.documents.published)
}

func TestGenerateInvoicePDFReturnURL(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/functions/generate-invoice-pdf", ownerKey, map[string]any{
		"invoice_id": "42",
		"return_url": true,
		"engine":     "browser",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"file_url": "https://files.example.com/INV-0001.pdf"}, decodeBody(t, rec))
	assert.Equal(t, []string{"INV-0001.pdf"}, ts.documents.published)
}

func TestGenerateInvoicePDFFailuresAreInternal(t *testing.T) {
	cases := []struct {
		name string
		key  string
		body map[string]any
	}{
		{name: "missing invoice id", key: ownerKey, body: map[string]any{}},
		{name: "unknown invoice", key: ownerKey, body: map[string]any{"invoice_id": "7"}},
		{name: "unsupported engine", key: ownerKey, body: map[string]any{"invoice_id": "42", "engine": "flow"}},
		{name: "readonly cannot publish", key: readonlyKey, body: map[string]any{"invoice_id": "42", "return_url": true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)

			rec := ts.do(http.MethodPost, "/api/functions/generate-invoice-pdf", tc.key, tc.body)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			body := decodeBody(t, rec)
			assert.NotEmpty(t, body["error"])
			assert.Empty(t, ts.documents.published)
		})
	}
}

func TestGenerateInvoicePDFRenderError(t *testing.T) {
	ts := newTestServer(t)
	ts.documents.renderErr = render.ErrBackendDisabled

	rec := ts.do(http.MethodPost, "/api/functions/generate-invoice-pdf", ownerKey, map[string]any{"invoice_id": "42"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]any{"error": render.ErrBackendDisabled.Error()}, decodeBody(t, rec))
}

func TestAPIErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/invoices/42", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/api/invoices/42", readonlyKey, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/invoices/404", ownerKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, "/api/invoices/42/status", readonlyKey, map[string]any{"status": "cancelled"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, "/api/invoices/42/status", ownerKey, map[string]any{"status": "draft"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	errBody, _ := decodeBody(t, rec)["error"].(map[string]any)
	assert.Equal(t, "conflict", errBody["type"])
}

func TestPublicInvoiceRoutes(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/public/invoices/tok_sent", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unpaid", decodeBody(t, rec)["status"])

	rec = ts.do(http.MethodGet, "/public/invoices/tok_draft", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodGet, "/public/invoices/tok_sent/view", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html></html>", rec.Body.String())

	rec = ts.do(http.MethodGet, "/public/invoices/tok_sent/pdf?engine=receipt", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Len(t, ts.limiter.keys, 4)
}

func TestPublicInvoiceRateLimited(t *testing.T) {
	ts := newTestServer(t)
	ts.limiter.allowed = false

	rec := ts.do(http.MethodGet, "/public/invoices/tok_sent", "", nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("Retry-After"))
}

func TestParseTimeBound(t *testing.T) {
	got, err := parseTimeBound("", false)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseTimeBound("2026-03-01", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *got)

	got, err = parseTimeBound("2026-03-01", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 23, 59, 59, 999999999, time.UTC), *got)

	got, err = parseTimeBound("2026-03-01T10:00:00Z", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), *got)

	_, err = parseTimeBound("yesterday", false)
	assert.ErrorIs(t, err, errInvalidTime)
}
