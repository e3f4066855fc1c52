package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dan404cipher/alumini-accel-sub000/internal/handlers"
	"github.com/dan404cipher/alumini-accel-sub000/internal/middleware"
)

func RegisterLedgerRoutes(r gin.IRouter) {
	ledger := r.Group("/ledger")
	ledger.Use(middleware.AuthMiddleware())
	{
		ledger.POST("/evaluate", middleware.EvaluateRateLimit(), handlers.EvaluateAction)
	}

	activities := r.Group("/activities")
	activities.Use(middleware.AuthMiddleware())
	{
		activities.POST("/:id/redeem", handlers.RedeemActivity)
	}

	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/:id/activity", handlers.GetUserActivityHistory)
		users.GET("/:id/points", handlers.GetUserPoints)
		users.GET("/:id/badges", handlers.GetUserBadges)
	}

	// Public catalog
	r.GET("/rewards", middleware.AuthMiddleware(), handlers.ListRewards)
	r.GET("/badges", handlers.ListBadges)
	r.GET("/leaderboard", handlers.GetLeaderboard)
}
