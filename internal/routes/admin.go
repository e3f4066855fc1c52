package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dan404cipher/alumini-accel-sub000/internal/handlers"
	"github.com/dan404cipher/alumini-accel-sub000/internal/middleware"
)

func RegisterAdminRoutes(r gin.IRouter) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware())

	// Verification queue: staff and admins
	staff := admin.Group("")
	staff.Use(middleware.StaffOnly())
	{
		staff.GET("/verifications", handlers.ListPendingVerifications)
		staff.POST("/verifications/:id/resolve", handlers.ResolveVerification)
		staff.POST("/badges/:id/claim", handlers.ClaimBadge)
		staff.POST("/rewards/:id/issue", handlers.IssueReward)
	}

	// Catalog management: admins only
	manage := admin.Group("")
	manage.Use(middleware.AdminOnly())
	{
		manage.POST("/rewards", handlers.CreateReward)
		manage.PUT("/rewards/:id", handlers.UpdateReward)
		manage.DELETE("/rewards/:id", handlers.DeactivateReward)
		manage.POST("/badges", handlers.CreateBadge)
		manage.PUT("/badges/:id", handlers.UpdateBadge)
	}
}
