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

// ListPendingVerifications handles GET /admin/verifications
func ListPendingVerifications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := Verification.ListPending(services.PendingFilters{
		TenantID: c.Query("tenant"),
		Status:   models.VerificationStatus(c.Query("status")),
		RewardID: c.Query("reward"),
		UserID:   c.Query("user"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ResolveVerification handles POST /admin/verifications/:id/resolve
func ResolveVerification(c *gin.Context) {
	staffID, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Activity IDs are generated UUIDs; a malformed one cannot exist
	activityID := c.Param("id")
	if !utils.IsUUID(activityID) {
		respondError(c, apperrors.NotFound("Activity not found"))
		return
	}

	var req struct {
		Action services.ResolveAction `json:"action" binding:"required"`
		Reason string                 `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}

	activity, err := Verification.Resolve(activityID, req.Action, staffID.(string), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": activity})
}
