package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	companydomain "github.com/smallbiznis/invoicedesk/internal/company/domain"
)

func (s *Server) GetCompanyProfile(c *gin.Context) {
	resp, err := s.companySvc.GetProfile(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpsertCompanyProfile(c *gin.Context) {
	var req companydomain.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.UpsertProfile(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceSettings(c *gin.Context) {
	resp, err := s.companySvc.GetSettings(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpsertInvoiceSettings(c *gin.Context) {
	var req companydomain.SettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.UpsertSettings(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
