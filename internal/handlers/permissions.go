package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/gymadmin/internal/middleware"
	"github.com/charlesng35/gymadmin/internal/permissions"
	"github.com/charlesng35/gymadmin/pkg/errors"
	"github.com/charlesng35/gymadmin/pkg/response"
)

// PermissionHandler answers permission queries for the calling actor.
type PermissionHandler struct {
	resolver *permissions.Resolver
}

func NewPermissionHandler(resolver *permissions.Resolver) *PermissionHandler {
	return &PermissionHandler{resolver: resolver}
}

type checkRequest struct {
	Domain   string `json:"domain" validate:"required,oneof=front back"`
	Resource string `json:"resource" validate:"required,notblank"`
	Action   string `json:"action" validate:"required,notblank"`
}

type actionPayload struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// GET /api/permissions/actions
func (h *PermissionHandler) Actions(c *gin.Context) {
	actions := permissions.AllActions()
	out := make([]actionPayload, 0, len(actions))
	for _, action := range actions {
		out = append(out, actionPayload{Name: action.String(), Label: action.Label()})
	}
	response.Success(c, http.StatusOK, out)
}

// GET /api/permissions/:resource?domain=front|back
func (h *PermissionHandler) Get(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}
	domain, err := domainParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	resource := strings.TrimSpace(c.Param("resource"))
	response.Success(c, http.StatusOK, h.resolver.GetPermissions(domain, actor, resource))
}

// POST /api/permissions/check
func (h *PermissionHandler) Check(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req checkRequest
	if !bindAndValidate(c, &req) {
		return
	}
	domain, err := permissions.ParseDomain(req.Domain)
	if err != nil {
		response.Error(c, errors.NewBadRequest("domain must be front or back"))
		return
	}

	// Unknown action labels are answered, not rejected: they are never granted.
	action, _ := permissions.ActionForLabel(req.Action)
	allowed := h.resolver.Allowed(domain, actor, req.Resource, action)

	response.Success(c, http.StatusOK, gin.H{"allowed": allowed})
}
