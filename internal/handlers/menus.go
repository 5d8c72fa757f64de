package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/gymadmin/internal/middleware"
	"github.com/charlesng35/gymadmin/internal/permissions"
	"github.com/charlesng35/gymadmin/internal/services"
	"github.com/charlesng35/gymadmin/pkg/errors"
	"github.com/charlesng35/gymadmin/pkg/response"
)

// MenuHandler exposes the menu configuration and the caller's visible menu.
type MenuHandler struct {
	menus    *services.MenuService
	resolver *permissions.Resolver
}

func NewMenuHandler(menus *services.MenuService, resolver *permissions.Resolver) *MenuHandler {
	return &MenuHandler{menus: menus, resolver: resolver}
}

type menuUpdateRequest struct {
	Menus permissions.MenuDocument `json:"menus" validate:"required,min=1,dive"`
}

// GET /api/menus/visible?domain=front|back
func (h *MenuHandler) Visible(c *gin.Context) {
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

	menu := h.resolver.VisibleMenu(domain, actor)
	if menu == nil {
		menu = []permissions.MenuGroup{}
	}
	response.Success(c, http.StatusOK, gin.H{"domain": domain, "menu": menu})
}

// GET /api/menus
func (h *MenuHandler) Get(c *gin.Context) {
	latest, err := h.menus.Latest(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{"menus": h.menus.Current()}
	if latest != nil {
		payload["version"] = latest.Version
		payload["source"] = latest.Source
		payload["updatedAt"] = latest.UpdatedAt
	}
	response.Success(c, http.StatusOK, payload)
}

// PUT /api/menus
func (h *MenuHandler) Update(c *gin.Context) {
	var req menuUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	actor, _ := middleware.ActorFrom(c)
	updatedBy := actor.Username
	if updatedBy == "" {
		updatedBy = actor.UserID
	}

	record, err := h.menus.Replace(requestContext(c), req.Menus, services.MenuSourceAPI, updatedBy)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"version": record.Version,
		"menus":   h.menus.Current(),
	})
}
