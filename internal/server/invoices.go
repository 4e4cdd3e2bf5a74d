package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
)

type transitionInvoiceRequest struct {
	Status string `json:"status"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.InvoiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("invoice_id", resp.ID.String())
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	id := invoiceParam(c)
	var req invoicedomain.InvoiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), invoiceParam(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), invoiceParam(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status   string `form:"status"`
		ClientID string `form:"client_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
		Status:    strings.TrimSpace(query.Status),
		ClientID:  strings.TrimSpace(query.ClientID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Invoices, "page_info": resp.PageInfo})
}

func (s *Server) TransitionInvoiceStatus(c *gin.Context) {
	id := invoiceParam(c)
	var req transitionInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.TransitionStatus(c.Request.Context(), id, invoicedomain.InvoiceStatus(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SendInvoice(c *gin.Context) {
	resp, err := s.deliverySvc.Send(c.Request.Context(), invoiceParam(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemindInvoice(c *gin.Context) {
	resp, err := s.deliverySvc.Remind(c.Request.Context(), invoiceParam(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// RenderInvoiceDocument renders with any enabled engine, including the flow
// HTML preview and the paid receipt. ?download=true sends it as an attachment.
func (s *Server) RenderInvoiceDocument(c *gin.Context) {
	doc, err := s.documentSvc.RenderInvoice(c.Request.Context(), invoiceParam(c), invoicedomain.DocumentRequest{
		Engine:       strings.TrimSpace(c.Query("engine")),
		NumberFormat: strings.TrimSpace(c.Query("number_format")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeDocument(c, doc, contentDisposition(c))
}

func invoiceParam(c *gin.Context) string {
	id := strings.TrimSpace(c.Param("id"))
	c.Set("invoice_id", id)
	return id
}
