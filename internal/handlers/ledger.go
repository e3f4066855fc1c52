package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	"github.com/dan404cipher/alumini-accel-sub000/internal/services"
	apperrors "github.com/dan404cipher/alumini-accel-sub000/pkg/errors"
	"github.com/dan404cipher/alumini-accel-sub000/pkg/utils"
)

// EvaluateAction handles POST /ledger/evaluate. Route handlers call this
// after a domain event completes; repeating the call is safe because
// evaluation is idempotent.
func EvaluateAction(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		ActionType models.ActionType `json:"actionType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actionType is required"})
		return
	}

	tenantID := c.GetString("tenantId")
	activities, err := Ledger.EvaluateAction(userID.(string), req.ActionType, tenantID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities, "count": len(activities)})
}

// GetUserActivityHistory handles GET /users/:id/activity
func GetUserActivityHistory(c *gin.Context) {
	targetID := c.Param("id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	report, err := Ledger.GetUserActivityHistory(targetID, services.ActivityFilters{
		Status:   models.ActivityStatus(c.Query("status")),
		Category: c.Query("category"),
		Limit:    limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// RedeemActivity handles POST /activities/:id/redeem
func RedeemActivity(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	activityID := c.Param("id")
	if !utils.IsUUID(activityID) {
		respondError(c, apperrors.NotFound("Activity not found"))
		return
	}

	activity, err := Ledger.Redeem(activityID, userID.(string))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": activity})
}

// GetUserPoints handles GET /users/:id/points
func GetUserPoints(c *gin.Context) {
	totals, err := Points.GetTotals(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// GetUserBadges handles GET /users/:id/badges
func GetUserBadges(c *gin.Context) {
	badges, err := Badges.ListUserBadges(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"badges": badges})
}
