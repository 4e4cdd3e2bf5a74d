package server

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/invoicedesk/internal/authorization"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
)

type generateInvoicePDFRequest struct {
	InvoiceID string `json:"invoice_id"`
	ReturnURL bool   `json:"return_url"`
	Engine    string `json:"engine"`
}

var errInvoiceIDRequired = errors.New("invoice_id is required")

// GenerateInvoicePDF renders one invoice as PDF. Unlike the rest of the API it
// answers with a flat {"error": "..."} body: 401 without a valid key and 500
// for every other failure.
func (s *Server) GenerateInvoicePDF(c *gin.Context) {
	principal, err := s.authenticate(c)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			functionError(c, http.StatusUnauthorized, err, "Unauthorized")
			return
		}
		functionError(c, http.StatusInternalServerError, err, err.Error())
		return
	}
	s.bindPrincipal(c, principal)

	var req generateInvoicePDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		functionError(c, http.StatusInternalServerError, err, err.Error())
		return
	}
	invoiceID := strings.TrimSpace(req.InvoiceID)
	if invoiceID == "" {
		functionError(c, http.StatusInternalServerError, errInvoiceIDRequired, errInvoiceIDRequired.Error())
		return
	}
	c.Set("invoice_id", invoiceID)

	engine, err := pdfEngine(req.Engine)
	if err != nil {
		functionError(c, http.StatusInternalServerError, err, err.Error())
		return
	}

	if err := s.authorizeAction(c, authorization.ObjectDocument, authorization.ActionDocumentRender); err != nil {
		functionError(c, http.StatusInternalServerError, err, err.Error())
		return
	}
	if req.ReturnURL {
		if err := s.authorizeAction(c, authorization.ObjectDocument, authorization.ActionDocumentPublish); err != nil {
			functionError(c, http.StatusInternalServerError, err, err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	bundle, err := s.documentSvc.Load(ctx, invoiceID)
	if err != nil {
		functionError(c, http.StatusInternalServerError, err, err.Error())
		return
	}
	doc, err := s.documentSvc.Render(ctx, bundle, invoicedomain.DocumentRequest{Engine: engine})
	if err != nil {
		functionError(c, http.StatusInternalServerError, err, err.Error())
		return
	}

	if req.ReturnURL {
		url, err := s.documentSvc.Publish(ctx, bundle, doc)
		if err != nil {
			functionError(c, http.StatusInternalServerError, err, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"file_url": url})
		return
	}

	writeDocument(c, doc, "inline")
}

func pdfEngine(engine string) (string, error) {
	switch e := strings.ToLower(strings.TrimSpace(engine)); e {
	case "":
		return render.BackendCanvas, nil
	case render.BackendCanvas, render.BackendBrowser:
		return e, nil
	default:
		return "", fmt.Errorf("unsupported engine %q", engine)
	}
}

func functionError(c *gin.Context, status int, err error, message string) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// writeDocument streams a rendered document with a Content-Disposition of
// the given type ("inline" or "attachment").
func writeDocument(c *gin.Context, doc invoicedomain.Document, disposition string) {
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": doc.Filename}))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
