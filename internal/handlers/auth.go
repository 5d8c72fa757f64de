package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/gymadmin/internal/auth"
	"github.com/charlesng35/gymadmin/internal/permissions"
	"github.com/charlesng35/gymadmin/internal/services"
	"github.com/charlesng35/gymadmin/pkg/errors"
	"github.com/charlesng35/gymadmin/pkg/response"
)

// AuthHandler serves login, logout and the current session.
type AuthHandler struct {
	svc      *services.AuthService
	resolver *permissions.Resolver
}

func NewAuthHandler(svc *services.AuthService, resolver *permissions.Resolver) *AuthHandler {
	return &AuthHandler{svc: svc, resolver: resolver}
}

type loginRequest struct {
	TableName string `json:"tableName" validate:"required,identifier"`
	Username  string `json:"username" validate:"required,notblank"`
	Password  string `json:"password" validate:"required"`
}

type sessionPayload struct {
	ID        string            `json:"id"`
	Actor     permissions.Actor `json:"actor"`
	IsAdmin   bool              `json:"isAdmin"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

func (h *AuthHandler) sessionPayload(session *iauth.Session) sessionPayload {
	actor := session.Actor()
	return sessionPayload{
		ID:        session.ID,
		Actor:     actor,
		IsAdmin:   h.resolver.IsAdmin(actor),
		ExpiresAt: session.ExpiresAt,
	}
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.svc.Login(requestContext(c), services.LoginInput{
		TableName: req.TableName,
		Username:  req.Username,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":   result.Token,
		"session": h.sessionPayload(result.Session),
	})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.svc.Logout(requestContext(c), session.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"loggedOut": true})
}

// GET /api/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}
	response.Success(c, http.StatusOK, h.sessionPayload(session))
}
