package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urmzd/hubpanel/pkg/api/handlers"
	"github.com/urmzd/hubpanel/pkg/api/web"
	"github.com/urmzd/hubpanel/pkg/panel"
)

// Router holds the Gin engine and the panel it serves
type Router struct {
	engine *gin.Engine
	panel  *panel.Panel
}

// NewRouter creates the HTTP surface for a panel: the HTML screens, the JSON
// API under /api/v1 and the server-sent event stream.
func NewRouter(p *panel.Panel) (*Router, error) {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	engine.SetHTMLTemplate(tmpl)

	router := &Router{
		engine: engine,
		panel:  p,
	}

	router.setupRoutes()

	return router, nil
}

// setupRoutes configures all routes
func (r *Router) setupRoutes() {
	// Swagger UI
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	healthHandler := handlers.NewHealthHandler(r.panel)
	r.engine.GET("/health", healthHandler.Health)

	viewHandler := handlers.NewViewHandler(r.panel)
	r.engine.GET("/events", viewHandler.Events)

	r.setupUI()

	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)
		v1.GET("/events", viewHandler.Events)

		// Current screen
		v := v1.Group("/view")
		{
			v.GET("", viewHandler.GetView)
			v.POST("/navigate", viewHandler.Navigate)
			v.POST("/back", viewHandler.Back)
			v.POST("/refresh", viewHandler.Refresh)
			v.PATCH("/form", viewHandler.UpdateForm)
			v.POST("/form/submit", viewHandler.SubmitForm)
		}

		devicesHandler := handlers.NewDevicesHandler(r.panel)
		devices := v1.Group("/devices")
		{
			devices.GET("", devicesHandler.ListDevices)
			devices.DELETE("/:id", devicesHandler.RemoveDevice)
			devices.PUT("/:id/name", devicesHandler.RenameDevice)
			devices.POST("/:id/toggle", devicesHandler.Toggle)
			devices.POST("/:id/brightness", devicesHandler.SetBrightness)
		}

		groupsHandler := handlers.NewGroupsHandler(r.panel)
		groups := v1.Group("/groups")
		{
			groups.GET("", groupsHandler.ListGroups)
			groups.POST("", groupsHandler.CreateGroup)
			groups.DELETE("/:id", groupsHandler.DeleteGroup)
			groups.POST("/:id/toggle", groupsHandler.ToggleGroup)
			groups.POST("/:id/devices/:deviceId", groupsHandler.AddMember)
			groups.DELETE("/:id/devices/:deviceId", groupsHandler.RemoveMember)
		}

		rulesHandler := handlers.NewRulesHandler(r.panel)
		rules := v1.Group("/rules")
		{
			rules.GET("", rulesHandler.ListRules)
			rules.POST("", rulesHandler.CreateRule)
			rules.PUT("/:id", rulesHandler.UpdateRule)
			rules.DELETE("/:id", rulesHandler.DeleteRule)
		}

		systemHandler := handlers.NewSystemHandler(r.panel)
		v1.GET("/logs", systemHandler.Logs)
		v1.POST("/pairing/start", systemHandler.StartPairing)
		v1.POST("/pairing/stop", systemHandler.StopPairing)
	}
}

// setupUI registers the HTML screens. Every POST redirects back to /.
func (r *Router) setupUI() {
	ui := handlers.NewUIHandler(r.panel)
	r.engine.GET("/", ui.Page)

	g := r.engine.Group("/ui")
	{
		g.POST("/nav/:screen", ui.Navigate)
		g.POST("/nav/:screen/:id", ui.Navigate)
		g.POST("/back", ui.Back)
		g.POST("/refresh", ui.Refresh)

		g.POST("/devices/:id/toggle", ui.Toggle)
		g.POST("/devices/:id/rename", ui.RenameDevice)
		g.POST("/devices/:id/delete", ui.RemoveDevice)
		g.POST("/devices/:id/brightness", ui.SetBrightness)

		g.POST("/groups", ui.CreateGroup)
		g.POST("/groups/:id/toggle", ui.Toggle)
		g.POST("/groups/:id/delete", ui.DeleteGroup)
		g.POST("/groups/:id/members", ui.AddMember)
		g.POST("/groups/:id/members/:deviceId/delete", ui.RemoveMember)

		g.POST("/rules/form", ui.UpdateForm)
		g.POST("/rules/form/submit", ui.SubmitForm)
		g.POST("/rules/:id/delete", ui.DeleteRule)

		g.POST("/pairing/start", ui.StartPairing)
		g.POST("/pairing/stop", ui.StopPairing)
	}
}

// Handler exposes the engine for http.Server and tests.
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
