package server

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	apikeydomain "github.com/smallbiznis/invoicedesk/internal/apikey/domain"
	"github.com/smallbiznis/invoicedesk/internal/authorization"
	obscontext "github.com/smallbiznis/invoicedesk/internal/observability/context"
	"github.com/smallbiznis/invoicedesk/internal/ownercontext"
)

const contextPrincipalKey = "principal"

// APIKeyRequired authenticates requests with a bearer API key. The owner is
// derived solely from the key record.
func (s *Server) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := s.authenticate(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		s.bindPrincipal(c, principal)
		c.Next()
	}
}

// authenticate resolves the caller without writing a response.
func (s *Server) authenticate(c *gin.Context) (*apikeydomain.Principal, error) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return nil, ErrUnauthorized
	}
	principal, err := s.apiKeySvc.Authenticate(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, apikeydomain.ErrUnauthorized) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return principal, nil
}

func (s *Server) bindPrincipal(c *gin.Context, principal *apikeydomain.Principal) {
	ctx := c.Request.Context()
	ctx = ownercontext.WithOwnerID(ctx, principal.OwnerID)
	ctx = ownercontext.WithActor(ctx, principal.KeyID)
	ctx = obscontext.WithOwnerID(ctx, principal.OwnerID.String())
	c.Request = c.Request.WithContext(ctx)
	c.Set(contextPrincipalKey, principal)
}

func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authorizeAction(c, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) authorizeAction(c *gin.Context, object, action string) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return ErrUnauthorized
	}
	err := s.authzSvc.Authorize(c.Request.Context(), authorization.Subject{
		OwnerID: principal.OwnerID,
		KeyID:   principal.KeyID,
		Role:    principal.Role,
	}, object, action)
	if errors.Is(err, authorization.ErrForbidden) {
		return ErrForbidden
	}
	return err
}

func principalFromContext(c *gin.Context) (*apikeydomain.Principal, bool) {
	value, ok := c.Get(contextPrincipalKey)
	if !ok {
		return nil, false
	}
	principal, ok := value.(*apikeydomain.Principal)
	return principal, ok && principal != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(strings.TrimSpace(header))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
