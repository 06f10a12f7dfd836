package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/hubpanel/pkg/api/types"
	"github.com/urmzd/hubpanel/pkg/panel"
	"github.com/urmzd/hubpanel/pkg/rule"
	"github.com/urmzd/hubpanel/pkg/view"
)

// ViewHandler exposes the View Router and the open rule form
type ViewHandler struct {
	panel     *panel.Panel
	heartbeat time.Duration
}

// NewViewHandler creates a new view handler
func NewViewHandler(p *panel.Panel) *ViewHandler {
	return &ViewHandler{panel: p, heartbeat: 30 * time.Second}
}

// GetView handles GET /view
// @Summary      Current page
// @Description  Returns the render model of the active screen
// @Tags         view
// @Produce      json
// @Success      200  {object}  view.Page
// @Router       /view [get]
func (h *ViewHandler) GetView(c *gin.Context) {
	c.JSON(http.StatusOK, h.panel.Page())
}

// Navigate handles POST /view/navigate
// @Summary      Navigate
// @Description  Activates a screen, runs its entry cycle and returns the new page
// @Tags         view
// @Accept       json
// @Produce      json
// @Param        request  body      view.Target  true  "Target screen, entity id and rule prefill"
// @Success      200      {object}  view.Page
// @Failure      400      {object}  types.ErrorResponse  "Invalid target"
// @Router       /view/navigate [post]
func (h *ViewHandler) Navigate(c *gin.Context) {
	var target view.Target
	if err := c.ShouldBindJSON(&target); err != nil {
		badRequest(c, "screen is required")
		return
	}
	page, err := h.panel.Navigate(c.Request.Context(), target)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Back handles POST /view/back
// @Summary      Back
// @Description  Returns from a detail screen to the screen it was entered from
// @Tags         view
// @Produce      json
// @Success      200  {object}  view.Page
// @Router       /view/back [post]
func (h *ViewHandler) Back(c *gin.Context) {
	c.JSON(http.StatusOK, h.panel.Back(c.Request.Context()))
}

// Refresh handles POST /view/refresh
// @Summary      Refresh
// @Description  Refetches the data of the active screen
// @Tags         view
// @Produce      json
// @Success      200  {object}  view.Page
// @Router       /view/refresh [post]
func (h *ViewHandler) Refresh(c *gin.Context) {
	c.JSON(http.StatusOK, h.panel.Refresh(c.Request.Context()))
}

// UpdateForm handles PATCH /view/form
// @Summary      Edit the open rule form
// @Description  Applies a partial update to the rule form of the rule_detail screen
// @Tags         view
// @Accept       json
// @Produce      json
// @Param        request  body      rule.Input  true  "Fields to change"
// @Success      200      {object}  view.Page
// @Failure      400      {object}  types.ErrorResponse  "Invalid field"
// @Failure      409      {object}  types.ErrorResponse  "No form is open"
// @Router       /view/form [patch]
func (h *ViewHandler) UpdateForm(c *gin.Context) {
	var in rule.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid form update")
		return
	}
	page, err := h.panel.UpdateRuleForm(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// SubmitForm handles POST /view/form/submit
// @Summary      Save the open rule form
// @Description  Creates or updates the rule on the hub and returns to the rules list
// @Tags         view
// @Produce      json
// @Success      200  {object}  types.RuleResponse
// @Failure      400  {object}  types.ErrorResponse  "Form is incomplete"
// @Failure      409  {object}  types.ErrorResponse  "No form is open"
// @Failure      502  {object}  types.ErrorResponse  "Hub error"
// @Router       /view/form/submit [post]
func (h *ViewHandler) SubmitForm(c *gin.Context) {
	r, err := h.panel.SubmitRule(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.RuleResponse{Rule: r})
}

// Events handles GET /events (SSE stream)
// @Summary      Subscribe to page updates
// @Description  Server-Sent Events stream; a "render" event is sent whenever the page changes
// @Tags         view
// @Produce      text/event-stream
// @Success      200  {string}  string  "SSE event stream"
// @Router       /events [get]
func (h *ViewHandler) Events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	updates := h.panel.Subscribe()
	defer h.panel.Unsubscribe(updates)

	s := h.panel.State()
	sendSSEEvent(c.Writer, "render", panel.Update{Screen: s.Screen, Epoch: s.Epoch})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-clientGone:
			return

		case u, ok := <-updates:
			if !ok {
				return
			}
			sendSSEEvent(c.Writer, "render", u)
			c.Writer.Flush()

		case <-ticker.C:
			sendSSEEvent(c.Writer, "heartbeat", map[string]any{
				"timestamp": time.Now(),
			})
			c.Writer.Flush()
		}
	}
}

func sendSSEEvent(w io.Writer, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	_, _ = io.WriteString(w, "event: "+eventType+"\n")
	_, _ = io.WriteString(w, "data: "+string(jsonData)+"\n\n")
}
