package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	projectdomain "github.com/smallbiznis/invoicedesk/internal/project/domain"
)

func (s *Server) CreateProject(c *gin.Context) {
	var req projectdomain.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.projectSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateProject(c *gin.Context) {
	var req projectdomain.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.projectSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProject(c *gin.Context) {
	if err := s.projectSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetProjectByID(c *gin.Context) {
	resp, err := s.projectSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProjects(c *gin.Context) {
	resp, err := s.projectSvc.List(c.Request.Context(), projectdomain.ListProjectRequest{
		ClientID: strings.TrimSpace(c.Query("client_id")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
