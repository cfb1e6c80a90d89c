package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/nightpost/relay/internal/ws"
)

// SetupRoutes configures all application routes and middleware.
func SetupRoutes(router *gin.Engine, env *Env) {

	// --- Middleware ---

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{env.Cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// --- Rate Limiter Setup ---
	limiter := NewIPRateLimiter(rate.Limit(rateLimitRPS), rateLimitBurst)
	go func() {
		// Periodically drop limiters for senders that have gone quiet so
		// the visitor map does not grow without bound.
		for {
			time.Sleep(10 * time.Minute)
			limiter.mu.Lock()
			for ip, v := range limiter.visitors {
				if v.Allow() {
					delete(limiter.visitors, ip)
				}
			}
			limiter.mu.Unlock()
		}
	}()

	adminAuth := AdminAuthMiddleware(env.Cfg.AdminToken)

	// --- API Routes ---

	api := router.Group("/api")
	{
		api.POST("/events", RateLimitMiddleware(limiter), env.SubmitEvent)
		api.GET("/channels/public", env.GetPublicFeed)
		api.GET("/channels/review", adminAuth, env.GetReviewFeed)

		admin := api.Group("/admin", adminAuth)
		{
			admin.GET("/panel", env.AdminPanelMenu)
			admin.POST("/panel", env.SelectAction)
			admin.GET("/stopwords", env.ListStopWords)
			admin.POST("/stopwords", env.AddStopWord)
			admin.DELETE("/stopwords/:word", env.RemoveStopWord)
		}
	}

	// --- WebSocket Routes ---

	router.GET("/ws/public", func(c *gin.Context) {
		ws.ServeWs(env.PublicHub, c.Writer, c.Request)
	})
	router.GET("/ws/review", adminAuth, func(c *gin.Context) {
		ws.ServeWs(env.ReviewHub, c.Writer, c.Request)
	})
}
