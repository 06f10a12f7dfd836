package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/hubpanel/pkg/api/types"
	"github.com/urmzd/hubpanel/pkg/cache"
	"github.com/urmzd/hubpanel/pkg/panel"
	"github.com/urmzd/hubpanel/pkg/rule"
)

// RulesHandler handles automation rule endpoints
type RulesHandler struct {
	panel *panel.Panel
}

// NewRulesHandler creates a new rules handler
func NewRulesHandler(p *panel.Panel) *RulesHandler {
	return &RulesHandler{panel: p}
}

// ListRules handles GET /rules
// @Summary      List all rules
// @Tags         rules
// @Produce      json
// @Success      200  {object}  types.ListRulesResponse
// @Failure      502  {object}  types.ErrorResponse  "Hub error"
// @Router       /rules [get]
func (h *RulesHandler) ListRules(c *gin.Context) {
	// A stale refresh still returns the newer snapshot.
	rules, err := h.panel.Cache().RefreshRules(c.Request.Context())
	if err != nil && !cache.IsStale(err) {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ListRulesResponse{Rules: rules, Count: len(rules)})
}

// CreateRule handles POST /rules
// @Summary      Create a rule
// @Description  Builds a rule from form fields exactly as the rule screen does and stores it on the hub
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        request  body      rule.Input  true  "Rule fields"
// @Success      201      {object}  types.RuleResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid rule"
// @Failure      409      {object}  types.ErrorResponse  "Rule already exists"
// @Failure      502      {object}  types.ErrorResponse  "Hub error"
// @Router       /rules [post]
func (h *RulesHandler) CreateRule(c *gin.Context) {
	var in rule.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid rule")
		return
	}
	r, err := h.panel.CreateRule(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.RuleResponse{Rule: r})
}

// UpdateRule handles PUT /rules/:id
// @Summary      Update a rule
// @Description  Applies the given fields on top of the stored rule and saves it
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        id       path      string      true  "Rule id"
// @Param        request  body      rule.Input  true  "Fields to change"
// @Success      200      {object}  types.RuleResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid rule"
// @Failure      404      {object}  types.ErrorResponse  "Rule not found"
// @Router       /rules/{id} [put]
func (h *RulesHandler) UpdateRule(c *gin.Context) {
	var in rule.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid rule")
		return
	}
	r, err := h.panel.UpdateRule(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.RuleResponse{Rule: r})
}

// DeleteRule handles DELETE /rules/:id
// @Summary      Delete a rule
// @Tags         rules
// @Param        id   path  string  true  "Rule id"
// @Success      204  "Rule deleted"
// @Failure      404  {object}  types.ErrorResponse  "Rule not found"
// @Router       /rules/{id} [delete]
func (h *RulesHandler) DeleteRule(c *gin.Context) {
	if err := h.panel.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
