package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/hubpanel/pkg/api/types"
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/panel"
	"github.com/urmzd/hubpanel/pkg/rule"
	"github.com/urmzd/hubpanel/pkg/view"
)

// UIHandler serves the HTML screens. Every POST performs one panel operation
// and redirects back to GET /; failures surface as notices on the next page.
type UIHandler struct {
	panel *panel.Panel
}

// NewUIHandler creates a new UI handler
func NewUIHandler(p *panel.Panel) *UIHandler {
	return &UIHandler{panel: p}
}

// Page renders the current screen.
func (h *UIHandler) Page(c *gin.Context) {
	c.HTML(http.StatusOK, "page.tmpl", h.panel.Page())
}

func (h *UIHandler) done(c *gin.Context, op string, err error) {
	if err != nil {
		log.Debug().Err(err).Str("op", op).Msg("UI action failed")
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Navigate handles POST /ui/nav/:screen and /ui/nav/:screen/:id.
func (h *UIHandler) Navigate(c *gin.Context) {
	screen, err := view.ParseScreen(c.Param("screen"))
	if err != nil {
		h.panel.Notices().Failure("Navigate", err)
		h.done(c, "navigate", err)
		return
	}
	_, err = h.panel.Navigate(c.Request.Context(), view.Target{
		Screen:  screen,
		ID:      c.Param("id"),
		Prefill: c.PostForm("prefill"),
	})
	h.done(c, "navigate", err)
}

// Back handles POST /ui/back.
func (h *UIHandler) Back(c *gin.Context) {
	h.panel.Back(c.Request.Context())
	h.done(c, "back", nil)
}

// Refresh handles POST /ui/refresh.
func (h *UIHandler) Refresh(c *gin.Context) {
	h.panel.Refresh(c.Request.Context())
	h.done(c, "refresh", nil)
}

// Toggle handles POST /ui/devices/:id/toggle and /ui/groups/:id/toggle.
func (h *UIHandler) Toggle(c *gin.Context) {
	_, err := h.panel.Toggle(c.Request.Context(), c.Param("id"))
	h.done(c, "toggle", err)
}

// RenameDevice handles POST /ui/devices/:id/rename.
func (h *UIHandler) RenameDevice(c *gin.Context) {
	err := h.panel.RenameDevice(c.Request.Context(), c.Param("id"), c.PostForm("name"))
	h.done(c, "rename", err)
}

// RemoveDevice handles POST /ui/devices/:id/delete.
func (h *UIHandler) RemoveDevice(c *gin.Context) {
	err := h.panel.RemoveDevice(c.Request.Context(), c.Param("id"))
	h.done(c, "remove_device", err)
}

// SetBrightness handles POST /ui/devices/:id/brightness.
func (h *UIHandler) SetBrightness(c *gin.Context) {
	level, err := strconv.Atoi(c.PostForm("level"))
	if err != nil {
		err = device.ErrValidation
		h.panel.Notices().Failure("Set brightness", err)
		h.done(c, "brightness", err)
		return
	}
	err = h.panel.SetBrightness(c.Request.Context(), c.Param("id"), level)
	h.done(c, "brightness", err)
}

// CreateGroup handles POST /ui/groups.
func (h *UIHandler) CreateGroup(c *gin.Context) {
	var req types.CreateGroupRequest
	if err := c.ShouldBind(&req); err != nil {
		h.panel.Notices().Failure("Create group", device.ErrValidation)
		h.done(c, "create_group", err)
		return
	}
	_, err := h.panel.CreateGroup(c.Request.Context(), req.Name, req.Members)
	h.done(c, "create_group", err)
}

// DeleteGroup handles POST /ui/groups/:id/delete.
func (h *UIHandler) DeleteGroup(c *gin.Context) {
	err := h.panel.DeleteGroup(c.Request.Context(), c.Param("id"))
	h.done(c, "delete_group", err)
}

// AddMember handles POST /ui/groups/:id/members.
func (h *UIHandler) AddMember(c *gin.Context) {
	var req types.AddMemberRequest
	_ = c.ShouldBind(&req)
	err := h.panel.AddMember(c.Request.Context(), c.Param("id"), req.DeviceID)
	h.done(c, "add_member", err)
}

// RemoveMember handles POST /ui/groups/:id/members/:deviceId/delete.
func (h *UIHandler) RemoveMember(c *gin.Context) {
	err := h.panel.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("deviceId"))
	h.done(c, "remove_member", err)
}

// bindForm reads the rule form fields. Empty selects mean "nothing chosen"
// and leave the form untouched.
func bindForm(c *gin.Context) (rule.Input, error) {
	var in rule.Input
	if err := c.ShouldBind(&in); err != nil {
		return in, err
	}
	for _, f := range []**string{&in.TriggerDevice, &in.Target, &in.TriggerType, &in.Command, &in.Operator} {
		if *f != nil && **f == "" {
			*f = nil
		}
	}
	return in, nil
}

// UpdateForm handles POST /ui/rules/form.
func (h *UIHandler) UpdateForm(c *gin.Context) {
	in, err := bindForm(c)
	if err == nil {
		_, err = h.panel.UpdateRuleForm(c.Request.Context(), in)
	}
	h.done(c, "update_form", err)
}

// SubmitForm handles POST /ui/rules/form/submit: the posted fields are
// applied first, then the rule is saved.
func (h *UIHandler) SubmitForm(c *gin.Context) {
	ctx := c.Request.Context()
	in, err := bindForm(c)
	if err == nil {
		_, err = h.panel.UpdateRuleForm(ctx, in)
	}
	if err == nil {
		_, err = h.panel.SubmitRule(ctx)
	}
	h.done(c, "submit_form", err)
}

// DeleteRule handles POST /ui/rules/:id/delete.
func (h *UIHandler) DeleteRule(c *gin.Context) {
	err := h.panel.DeleteRule(c.Request.Context(), c.Param("id"))
	h.done(c, "delete_rule", err)
}

// StartPairing handles POST /ui/pairing/start.
func (h *UIHandler) StartPairing(c *gin.Context) {
	h.done(c, "start_pairing", h.panel.StartPairing(c.Request.Context()))
}

// StopPairing handles POST /ui/pairing/stop.
func (h *UIHandler) StopPairing(c *gin.Context) {
	h.done(c, "stop_pairing", h.panel.StopPairing(c.Request.Context()))
}
