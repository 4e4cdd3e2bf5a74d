package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apikeydomain "github.com/smallbiznis/invoicedesk/internal/apikey/domain"
)

type createAPIKeyRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (s *Server) ListAPIKeys(c *gin.Context) {
	keys, err := s.apiKeySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": keys})
}

func (s *Server) CreateAPIKey(c *gin.Context) {
	var req createAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.apiKeySvc.Create(c.Request.Context(), apikeydomain.CreateRequest{
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// RotateAPIKey issues a replacement secret; the old one keeps working for a
// grace period.
func (s *Server) RotateAPIKey(c *gin.Context) {
	keyID := strings.TrimSpace(c.Param("key_id"))
	resp, err := s.apiKeySvc.Rotate(c.Request.Context(), keyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RevokeAPIKey(c *gin.Context) {
	keyID := strings.TrimSpace(c.Param("key_id"))
	if err := s.apiKeySvc.Revoke(c.Request.Context(), keyID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
