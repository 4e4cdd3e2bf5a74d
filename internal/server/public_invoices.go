package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	"go.uber.org/zap"
)

// GetPublicInvoice returns the data behind the shareable invoice page.
func (s *Server) GetPublicInvoice(c *gin.Context) {
	token, ok := publicToken(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	resp, err := s.publicInvoiceSvc.GetInvoiceForPublicView(c.Request.Context(), token, strings.TrimSpace(c.Query("number_format")))
	if err != nil {
		s.handlePublicInvoiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ViewPublicInvoice renders the invoice as a standalone HTML page.
func (s *Server) ViewPublicInvoice(c *gin.Context) {
	s.renderPublicDocument(c, render.BackendFlow, "inline")
}

// DownloadPublicInvoice serves the invoice PDF. ?engine=receipt returns the
// payment receipt of a paid invoice instead.
func (s *Server) DownloadPublicInvoice(c *gin.Context) {
	engine := render.BackendCanvas
	if strings.TrimSpace(c.Query("engine")) == render.BackendReceipt {
		engine = render.BackendReceipt
	}
	s.renderPublicDocument(c, engine, contentDisposition(c))
}

func (s *Server) renderPublicDocument(c *gin.Context, engine, disposition string) {
	token, ok := publicToken(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	doc, err := s.publicInvoiceSvc.RenderDocument(c.Request.Context(), token, invoicedomain.DocumentRequest{
		Engine:       engine,
		NumberFormat: strings.TrimSpace(c.Query("number_format")),
	})
	if err != nil {
		s.handlePublicInvoiceError(c, err)
		return
	}

	writeDocument(c, doc, disposition)
}

// handlePublicInvoiceError keeps unexpected failures out of the public
// response body.
func (s *Server) handlePublicInvoiceError(c *gin.Context, err error) {
	if status, _ := mapError(err); status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.log.Error("public invoice lookup failed", zap.Error(err))
		AbortWithError(c, ErrInternal)
		return
	}
	AbortWithError(c, err)
}

// publicRateLimit throttles public lookups per client address and token.
func (s *Server) publicRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.publicLimiter == nil {
			c.Next()
			return
		}

		key := publicRateKey(c.Param("token"), c.ClientIP())
		decision, err := s.publicLimiter.Allow(c.Request.Context(), key)
		if err != nil {
			s.log.Warn("public rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !decision.Allowed {
			if seconds := int(decision.RetryAfter.Seconds()) + 1; seconds > 0 {
				c.Header("Retry-After", strconv.Itoa(seconds))
			}
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func publicToken(c *gin.Context) (string, bool) {
	token := strings.TrimSpace(c.Param("token"))
	return token, token != ""
}

func publicRateKey(token, ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		ip = "unknown"
	}
	return "public:" + ip + ":" + strings.TrimSpace(token)
}
