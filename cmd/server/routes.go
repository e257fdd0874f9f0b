package main

import (
	"github.com/gin-gonic/gin"

	"github.com/BorisNikolic/timeline-app-sub001/internal/middleware"
	"github.com/BorisNikolic/timeline-app-sub001/internal/models"
	"github.com/BorisNikolic/timeline-app-sub001/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the public, token-bearing invitation routes
	inviteLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "timeline-app"})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Public invitation routes: reached from an email link, before any
		// session exists. Rate limited against token probing.
		publicInvites := api.Group("/invitations", inviteLimiter.Middleware())
		{
			publicInvites.GET("/validate/:token", svc.invitationHandler.ValidateToken)
			publicInvites.POST("/accept/:token", svc.invitationHandler.AcceptNewUser)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Accepting with an existing account needs both the session and
			// the invitation token.
			protected.POST("/invitations/accept-existing/:token",
				inviteLimiter.Middleware(), svc.invitationHandler.AcceptExistingUser)

			protected.GET("/preferences", svc.preferencesHandler.Get)
			protected.PUT("/preferences/last-timeline", svc.preferencesHandler.SetLastTimeline)

			protected.GET("/timelines", svc.timelineHandler.List)
			protected.POST("/timelines", svc.timelineHandler.Create)
			protected.GET("/templates", svc.timelineHandler.ListTemplates)

			// Per-timeline routes gated by membership role. Archived
			// timelines stay readable but reject non-Admin writes.
			viewer := protected.Group("/timelines/:id",
				middleware.RequireTimelineRole(svc.timelineService, models.RoleViewer))
			{
				viewer.GET("", svc.timelineHandler.Get)
				viewer.POST("/copy", svc.timelineHandler.Copy)
				viewer.POST("/leave", svc.memberHandler.Leave)

				viewer.GET("/members", svc.memberHandler.List)
				viewer.GET("/events", svc.eventHandler.List)
				viewer.GET("/categories", svc.categoryHandler.List)
			}

			editor := protected.Group("/timelines/:id",
				middleware.RequireTimelineRole(svc.timelineService, models.RoleEditor))
			{
				editor.POST("/events", svc.eventHandler.Create)
				editor.PUT("/events/:eventId", svc.eventHandler.Update)
				editor.DELETE("/events/:eventId", svc.eventHandler.Delete)

				editor.POST("/categories", svc.categoryHandler.Create)
				editor.PUT("/categories/:categoryId", svc.categoryHandler.Update)
				editor.DELETE("/categories/:categoryId", svc.categoryHandler.Delete)
			}

			admin := protected.Group("/timelines/:id",
				middleware.RequireTimelineRole(svc.timelineService, models.RoleAdmin))
			{
				admin.PUT("", svc.timelineHandler.Update)
				admin.DELETE("", svc.timelineHandler.Delete)
				admin.POST("/unarchive", svc.timelineHandler.Unarchive)
				admin.PUT("/template", svc.timelineHandler.SetTemplate)

				admin.PUT("/members/:userId", svc.memberHandler.UpdateRole)
				admin.DELETE("/members/:userId", svc.memberHandler.Remove)

				admin.POST("/invitations", svc.invitationHandler.Create)
				admin.GET("/invitations", svc.invitationHandler.ListPending)
				admin.POST("/invitations/:invitationId/resend", svc.invitationHandler.Resend)
				admin.DELETE("/invitations/:invitationId", svc.invitationHandler.Cancel)
			}
		}
	}
}
