package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	apikeydomain "github.com/smallbiznis/invoicedesk/internal/apikey/domain"
	auditdomain "github.com/smallbiznis/invoicedesk/internal/audit/domain"
	"github.com/smallbiznis/invoicedesk/internal/authorization"
	clientdomain "github.com/smallbiznis/invoicedesk/internal/client/domain"
	companydomain "github.com/smallbiznis/invoicedesk/internal/company/domain"
	"github.com/smallbiznis/invoicedesk/internal/config"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/observability"
	obslogger "github.com/smallbiznis/invoicedesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	obstracing "github.com/smallbiznis/invoicedesk/internal/observability/tracing"
	projectdomain "github.com/smallbiznis/invoicedesk/internal/project/domain"
	publicinvoicedomain "github.com/smallbiznis/invoicedesk/internal/publicinvoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/ratelimit"
	"github.com/smallbiznis/invoicedesk/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

type EngineParams struct {
	fx.In

	ObsCfg      observability.Config
	HTTPMetrics *obsmetrics.HTTPMetrics `optional:"true"`
	Registry    *prometheus.Registry    `optional:"true"`
}

func NewEngine(p EngineParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           p.ObsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if p.HTTPMetrics != nil {
		r.Use(p.HTTPMetrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if p.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})))
	}

	return r
}

func registerGin(p EngineParams) *gin.Engine {
	return NewEngine(p)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger

	apiKeySvc        apikeydomain.Service
	authzSvc         authorization.Service
	auditSvc         auditdomain.Service
	clientSvc        clientdomain.Service
	projectSvc       projectdomain.Service
	companySvc       companydomain.Service
	invoiceSvc       invoicedomain.Service
	deliverySvc      invoicedomain.DeliveryService
	documentSvc      invoicedomain.DocumentService
	publicInvoiceSvc publicinvoicedomain.Service
	storage          storage.Storage
	publicLimiter    ratelimit.Limiter
}

type ServerParams struct {
	fx.In

	Gin              *gin.Engine
	Cfg              config.Config
	Log              *zap.Logger
	APIKeySvc        apikeydomain.Service
	AuthzSvc         authorization.Service
	AuditSvc         auditdomain.Service
	ClientSvc        clientdomain.Service
	ProjectSvc       projectdomain.Service
	CompanySvc       companydomain.Service
	InvoiceSvc       invoicedomain.Service
	DeliverySvc      invoicedomain.DeliveryService
	DocumentSvc      invoicedomain.DocumentService
	PublicInvoiceSvc publicinvoicedomain.Service
	Storage          storage.Storage
	PublicLimiter    ratelimit.Limiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:           p.Gin,
		cfg:              p.Cfg,
		log:              p.Log.Named("http.server"),
		apiKeySvc:        p.APIKeySvc,
		authzSvc:         p.AuthzSvc,
		auditSvc:         p.AuditSvc,
		clientSvc:        p.ClientSvc,
		projectSvc:       p.ProjectSvc,
		companySvc:       p.CompanySvc,
		invoiceSvc:       p.InvoiceSvc,
		deliverySvc:      p.DeliverySvc,
		documentSvc:      p.DocumentSvc,
		publicInvoiceSvc: p.PublicInvoiceSvc,
		storage:          p.Storage,
		publicLimiter:    p.PublicLimiter,
	}

	svc.registerFunctionRoutes()
	svc.registerAPIRoutes()
	svc.registerPublicRoutes()
	svc.registerFileRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerFunctionRoutes() {
	functions := s.engine.Group("/api/functions")
	functions.POST("/generate-invoice-pdf", s.GenerateInvoicePDF)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.APIKeyRequired())

	// -------- Clients --------
	api.GET("/clients", s.authorize(authorization.ObjectClient, authorization.ActionClientView), s.ListClients)
	api.POST("/clients", s.authorize(authorization.ObjectClient, authorization.ActionClientCreate), s.CreateClient)
	api.GET("/clients/:id", s.authorize(authorization.ObjectClient, authorization.ActionClientView), s.GetClientByID)
	api.PUT("/clients/:id", s.authorize(authorization.ObjectClient, authorization.ActionClientUpdate), s.UpdateClient)
	api.DELETE("/clients/:id", s.authorize(authorization.ObjectClient, authorization.ActionClientDelete), s.DeleteClient)

	// -------- Projects --------
	api.GET("/projects", s.authorize(authorization.ObjectProject, authorization.ActionProjectView), s.ListProjects)
	api.POST("/projects", s.authorize(authorization.ObjectProject, authorization.ActionProjectCreate), s.CreateProject)
	api.GET("/projects/:id", s.authorize(authorization.ObjectProject, authorization.ActionProjectView), s.GetProjectByID)
	api.PUT("/projects/:id", s.authorize(authorization.ObjectProject, authorization.ActionProjectUpdate), s.UpdateProject)
	api.DELETE("/projects/:id", s.authorize(authorization.ObjectProject, authorization.ActionProjectDelete), s.DeleteProject)

	// -------- Company --------
	api.GET("/company/profile", s.authorize(authorization.ObjectCompany, authorization.ActionCompanyView), s.GetCompanyProfile)
	api.PUT("/company/profile", s.authorize(authorization.ObjectCompany, authorization.ActionCompanyUpdate), s.UpsertCompanyProfile)
	api.GET("/company/invoice-settings", s.authorize(authorization.ObjectCompany, authorization.ActionCompanyView), s.GetInvoiceSettings)
	api.PUT("/company/invoice-settings", s.authorize(authorization.ObjectCompany, authorization.ActionCompanyUpdate), s.UpsertInvoiceSettings)

	// -------- Invoices --------
	api.GET("/invoices", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.ListInvoices)
	api.POST("/invoices", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceCreate), s.CreateInvoice)
	api.GET("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.GetInvoiceByID)
	api.PUT("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceUpdate), s.UpdateInvoice)
	api.DELETE("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceDelete), s.DeleteInvoice)
	api.POST("/invoices/:id/status", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceTransition), s.TransitionInvoiceStatus)
	api.POST("/invoices/:id/send", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceSend), s.SendInvoice)
	api.POST("/invoices/:id/remind", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceRemind), s.RemindInvoice)
	api.GET("/invoices/:id/document", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentRender), s.RenderInvoiceDocument)

	// -------- API keys --------
	api.GET("/api-keys", s.authorize(authorization.ObjectAPIKey, authorization.ActionAPIKeyView), s.ListAPIKeys)
	api.POST("/api-keys", s.authorize(authorization.ObjectAPIKey, authorization.ActionAPIKeyCreate), s.CreateAPIKey)
	api.POST("/api-keys/:key_id/rotate", s.authorize(authorization.ObjectAPIKey, authorization.ActionAPIKeyRotate), s.RotateAPIKey)
	api.POST("/api-keys/:key_id/revoke", s.authorize(authorization.ObjectAPIKey, authorization.ActionAPIKeyRevoke), s.RevokeAPIKey)

	// -------- Audit --------
	api.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/public", s.publicRateLimit())
	public.GET("/invoices/:token", s.GetPublicInvoice)
	public.GET("/invoices/:token/view", s.ViewPublicInvoice)
	public.GET("/invoices/:token/pdf", s.DownloadPublicInvoice)
}

// registerFileRoutes serves documents published by the local storage driver.
func (s *Server) registerFileRoutes() {
	local, ok := s.storage.(*storage.LocalStorage)
	if !ok {
		return
	}
	s.engine.Static(storage.LocalRoute, local.Dir())
}
