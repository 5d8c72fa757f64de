package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/gymadmin/internal/auth"
	"github.com/charlesng35/gymadmin/internal/middleware"
	"github.com/charlesng35/gymadmin/internal/permissions"
	appErrors "github.com/charlesng35/gymadmin/pkg/errors"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

func currentSession(c *gin.Context) (*iauth.Session, bool) {
	v, ok := c.Get(middleware.CtxSessionKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*iauth.Session)
	return session, ok && session != nil
}

// domainParam reads the domain query parameter. It defaults to the front domain.
func domainParam(c *gin.Context) (permissions.Domain, error) {
	value := strings.TrimSpace(c.Query("domain"))
	if value == "" {
		return permissions.DomainFront, nil
	}
	domain, err := permissions.ParseDomain(value)
	if err != nil {
		return "", appErrors.NewBadRequest("domain must be front or back")
	}
	return domain, nil
}
