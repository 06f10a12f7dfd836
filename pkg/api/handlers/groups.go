package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/hubpanel/pkg/api/types"
	"github.com/urmzd/hubpanel/pkg/cache"
	"github.com/urmzd/hubpanel/pkg/panel"
)

// GroupsHandler handles group endpoints
type GroupsHandler struct {
	panel *panel.Panel
}

// NewGroupsHandler creates a new groups handler
func NewGroupsHandler(p *panel.Panel) *GroupsHandler {
	return &GroupsHandler{panel: p}
}

// ListGroups handles GET /groups
// @Summary      List all groups
// @Tags         groups
// @Produce      json
// @Success      200  {object}  types.ListGroupsResponse
// @Failure      502  {object}  types.ErrorResponse  "Hub error"
// @Router       /groups [get]
func (h *GroupsHandler) ListGroups(c *gin.Context) {
	// A stale refresh still returns the newer snapshot.
	groups, err := h.panel.Cache().RefreshGroups(c.Request.Context())
	if err != nil && !cache.IsStale(err) {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ListGroupsResponse{Groups: groups, Count: len(groups)})
}

// CreateGroup handles POST /groups
// @Summary      Create a group
// @Description  Creates a group with a generated id from a name and initial members
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request  body      types.CreateGroupRequest  true  "Group name and members"
// @Success      201      {object}  types.GroupResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      409      {object}  types.ErrorResponse  "Group already exists"
// @Failure      502      {object}  types.ErrorResponse  "Hub error"
// @Router       /groups [post]
func (h *GroupsHandler) CreateGroup(c *gin.Context) {
	var req types.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	g, err := h.panel.CreateGroup(c.Request.Context(), req.Name, req.Members)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.GroupResponse{Group: g})
}

// DeleteGroup handles DELETE /groups/:id
// @Summary      Delete a group
// @Tags         groups
// @Param        id   path  string  true  "Group id"
// @Success      204  "Group deleted"
// @Failure      404  {object}  types.ErrorResponse  "Group not found"
// @Router       /groups/{id} [delete]
func (h *GroupsHandler) DeleteGroup(c *gin.Context) {
	if err := h.panel.DeleteGroup(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleGroup handles POST /groups/:id/toggle
// @Summary      Toggle a group
// @Description  Sends one action to the group: turn_off when the group is ON, turn_on otherwise
// @Tags         groups
// @Produce      json
// @Param        id   path      string  true  "Group id"
// @Success      200  {object}  types.ToggleResponse
// @Failure      404  {object}  types.ErrorResponse  "Group not found"
// @Router       /groups/{id}/toggle [post]
func (h *GroupsHandler) ToggleGroup(c *gin.Context) {
	id := c.Param("id")
	action, err := h.panel.Toggle(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ToggleResponse{ID: id, Action: action})
}

// AddMember handles POST /groups/:id/devices/:deviceId
// @Summary      Add a group member
// @Tags         groups
// @Param        id        path  string  true  "Group id"
// @Param        deviceId  path  string  true  "Device id"
// @Success      204  "Member added"
// @Failure      404  {object}  types.ErrorResponse  "Group or device not found"
// @Router       /groups/{id}/devices/{deviceId} [post]
func (h *GroupsHandler) AddMember(c *gin.Context) {
	if err := h.panel.AddMember(c.Request.Context(), c.Param("id"), c.Param("deviceId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveMember handles DELETE /groups/:id/devices/:deviceId
// @Summary      Remove a group member
// @Tags         groups
// @Param        id        path  string  true  "Group id"
// @Param        deviceId  path  string  true  "Device id"
// @Success      204  "Member removed"
// @Failure      404  {object}  types.ErrorResponse  "Group or device not found"
// @Router       /groups/{id}/devices/{deviceId} [delete]
func (h *GroupsHandler) RemoveMember(c *gin.Context) {
	if err := h.panel.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("deviceId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
