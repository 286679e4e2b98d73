// Package router wires HTTP routes to handlers.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/handler"
	"github.com/mishasvintus/bugcake/internal/metrics"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	User          *handler.UserHandler
	Sheet         *handler.SheetHandler
	TestCase      *handler.TestCaseHandler
	Checklist     *handler.ChecklistHandler
	Member        *handler.MemberHandler
	AccessRequest *handler.AccessRequestHandler
	Export        *handler.ExportHandler
}

// Options configures middleware shared by all routes.
type Options struct {
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	CORSOrigins []string
	Users       handler.UserLookup
	// Ping reports database health for /healthz. Optional.
	Ping func(ctx context.Context) error
}

// SetupRoutes configures all API routes.
func SetupRoutes(h Handlers, opts Options) *gin.Engine {
	handler.RegisterValidators()

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handler.RequestLogger(log))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		if opts.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := opts.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// Registration is the only call made before the caller has a profile.
	v1.POST("/users", h.User.Register)

	api := v1.Group("", handler.RequireActor(opts.Users))
	{
		// User endpoints
		api.GET("/users/me", h.User.Me)
		api.GET("/users/search", h.User.Search)

		// Sheet endpoints
		api.GET("/sheets", h.Sheet.List)
		api.POST("/sheets", h.Sheet.Create)
		api.GET("/sheets/:id", h.Sheet.Get)
		api.PATCH("/sheets/:id", h.Sheet.Rename)
		api.DELETE("/sheets/:id", h.Sheet.Delete)
		api.PUT("/sheets/:id/access-level", h.Sheet.UpdateAccessLevel)
		api.GET("/sheets/:id/summary", h.Sheet.Summary)
		api.GET("/sheets/:id/modules", h.Sheet.ListModules)
		api.POST("/sheets/:id/modules", h.Sheet.CreateModule)
		api.POST("/sheets/:id/export", h.Export.ExportSheet)

		// Test case endpoints
		api.GET("/sheets/:id/test-cases", h.TestCase.List)
		api.POST("/sheets/:id/test-cases", h.TestCase.Create)
		api.GET("/test-cases/:id", h.TestCase.Get)
		api.PATCH("/test-cases/:id", h.TestCase.Update)
		api.DELETE("/test-cases/:id", h.TestCase.Delete)
		api.POST("/test-cases/:id/actions", h.TestCase.ApplyAction)
		api.GET("/test-cases/:id/history", h.TestCase.History)

		// Checklist endpoints
		api.POST("/sheets/:id/checklists", h.Checklist.Create)
		api.GET("/checklists", h.Checklist.List)
		api.GET("/checklists/:id", h.Checklist.Get)
		api.DELETE("/checklists/:id", h.Checklist.Delete)
		api.PUT("/checklists/:id/access-level", h.Checklist.UpdateAccessLevel)
		api.PATCH("/checklists/:id/items/:item_id", h.Checklist.UpdateItem)
		api.POST("/checklists/:id/export", h.Export.ExportChecklist)

		// Sharing endpoints
		for prefix, t := range map[string]domain.ResourceType{
			"/sheets/:id":     domain.ResourceSheet,
			"/checklists/:id": domain.ResourceChecklist,
		} {
			api.GET(prefix+"/members", h.Member.List(t))
			api.POST(prefix+"/members", h.Member.Add(t))
			api.PATCH(prefix+"/members/:user_id", h.Member.UpdateRole(t))
			api.DELETE(prefix+"/members/:user_id", h.Member.Remove(t))
			api.GET(prefix+"/access-requests", h.AccessRequest.ListPending(t))
			api.POST(prefix+"/access-requests", h.AccessRequest.Create(t))
		}
		api.POST("/access-requests/:id/approve", h.AccessRequest.Approve)
		api.POST("/access-requests/:id/decline", h.AccessRequest.Decline)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", handler.ActorHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
