package handler

import (
	"net/http"

	"nightgate/internal/handler/api"
	"nightgate/internal/handler/middleware"
	"nightgate/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	authHandler *api.AuthHandler,
	scanHandler *api.ScanHandler,
	webhookHandler *api.WebhookHandler,
	inspectHandler *api.InspectHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, authHandler, scanHandler, webhookHandler, inspectHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	authHandler *api.AuthHandler,
	scanHandler *api.ScanHandler,
	webhookHandler *api.WebhookHandler,
	inspectHandler *api.InspectHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Provider webhooks authenticate by signature, not by token.
	webhooks := engine.Group("/webhooks")
	{
		addRoutes(webhooks, []route{
			{Method: http.MethodPost, Path: "/payments", Handler: webhookHandler.HandlePayment},
			{Method: http.MethodPost, Path: "/email", Handler: webhookHandler.HandleEmail},
		})
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
			})
		}

		scans := apiGroup.Group("/scans")
		scans.Use(authMiddleware.RequireAuth())
		{
			addRoutes(scans, []route{
				{Method: http.MethodPost, Path: "", Handler: scanHandler.Verify},
				{Method: http.MethodPost, Path: "/guest-passes", Handler: scanHandler.CheckInGuestPass},
			})
		}

		events := apiGroup.Group("/events")
		events.Use(authMiddleware.RequireAuth())
		{
			addRoutes(events, []route{
				{Method: http.MethodGet, Path: "/:id/snapshot", Handler: inspectHandler.EventSnapshot},
			})
		}

		inspect := apiGroup.Group("")
		inspect.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast("manager"))
		{
			addRoutes(inspect, []route{
				{Method: http.MethodGet, Path: "/audit/scans", Handler: inspectHandler.RecentScans},
				{Method: http.MethodGet, Path: "/email-jobs", Handler: inspectHandler.RecentEmailJobs},
				{Method: http.MethodGet, Path: "/email-jobs/:id", Handler: inspectHandler.EmailJob},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
