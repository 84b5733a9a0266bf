// Package router assembles the Gin engine from the registered modules.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	apphttp "insurance_intake_backend/internal/http"
	"insurance_intake_backend/platform/httpkit"
)

// New builds the HTTP engine: shared middleware, health endpoints and the
// routes of every module.
func New(app *apphttp.App) *gin.Engine {
	if app.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app)))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "healthy",
			"active_threads": app.ActiveThreads(),
			"timestamp":      time.Now().Format(time.RFC3339),
		})
	})
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Insurance Intake API",
			"version":     "1.0.0",
			"description": "Conversational API for insurance quote intake",
			"endpoints": gin.H{
				"POST /chat":                      "Send a message and get a response",
				"GET /thread/{thread_id}/history": "Get conversation history",
				"DELETE /thread/{thread_id}":      "Delete a conversation thread",
				"GET /health":                     "Health check",
			},
		})
	})

	chatLimiter := httpkit.NewChatRateLimiter(app.Logger)
	rc := &apphttp.RouterContext{
		Engine:          engine,
		API:             engine.Group(""),
		ChatRateLimiter: chatLimiter.RateLimit(),
	}

	for _, m := range app.Modules {
		m.RegisterRoutes(rc)
		app.Logger.Info("module routes registered", "module", m.Name())
	}

	return engine
}

func corsConfig(app *apphttp.App) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-ID")
	if app.Config.CORSAllowAll || len(app.Config.CORSOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = app.Config.CORSOrigins
	return cfg
}
