package routes

import (
	"github.com/brokerhub/campaigns-backend/internal/config"
	"github.com/brokerhub/campaigns-backend/internal/handlers"
	"github.com/brokerhub/campaigns-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies bundles the handlers the router wires up
type HandlerDependencies struct {
	AuthHandler     *handlers.AuthHandler
	CampaignHandler *handlers.CampaignHandler
	PolicyHandler   *handlers.PolicyHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		campaigns := protected.Group("/campaigns")
		{
			campaigns.GET("", deps.CampaignHandler.GetCampaigns)
			campaigns.GET("/:id", deps.CampaignHandler.GetCampaignByID)
			campaigns.GET("/:id/progress", deps.CampaignHandler.GetProgress)
			campaigns.POST("/:id/accept", deps.CampaignHandler.AcceptCampaign)
			campaigns.POST("/:id/reject", deps.CampaignHandler.RejectCampaign)
			campaigns.POST("/:id/recalculate", deps.CampaignHandler.Recalculate)
			campaigns.DELETE("/:id/links/:linkId", deps.PolicyHandler.UnlinkPolicy)
		}

		policies := protected.Group("/policies")
		{
			policies.GET("", deps.PolicyHandler.GetPolicies)
			policies.POST("", deps.PolicyHandler.RegisterPolicy)
		}

		// Admin routes
		admin := protected.Group("/admin")
		admin.Use(middleware.AdminOnlyMiddleware())
		{
			admin.POST("/campaigns", deps.CampaignHandler.CreateCampaign)
			admin.DELETE("/campaigns/:id", deps.CampaignHandler.DeleteCampaign)
			admin.POST("/campaigns/recalculate", deps.CampaignHandler.RecalculateAll)
		}
	}

	return router
}
