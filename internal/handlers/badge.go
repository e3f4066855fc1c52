package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dan404cipher/alumini-accel-sub000/internal/database"
	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
)

// ListBadges handles GET /badges: the public catalog, active badges only.
func ListBadges(c *gin.Context) {
	var badges []models.Badge
	query := database.DB.Where("is_active = ?", true)
	if tenant := c.Query("tenant"); tenant != "" {
		query = query.Where("tenant_id IN ?", []string{"", tenant})
	}
	if err := query.Order("name ASC").Find(&badges).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"badges": badges})
}

type badgeRequest struct {
	Name                string            `json:"name" binding:"required"`
	Description         string            `json:"description"`
	Icon                string            `json:"icon"`
	CriteriaType        models.ActionType `json:"criteriaType"`
	CriteriaTarget      float64           `json:"criteriaTarget"`
	CriteriaDescription string            `json:"criteriaDescription"`
	IsRare              bool              `json:"isRare"`
	MaxRecipients       *int              `json:"maxRecipients"`
	TenantID            string            `json:"tenantId"`
}

// CreateBadge handles POST /admin/badges
func CreateBadge(c *gin.Context) {
	var req badgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MaxRecipients != nil && *req.MaxRecipients < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "maxRecipients must be positive when set"})
		return
	}

	badge := models.Badge{
		Name:                req.Name,
		Description:         req.Description,
		Icon:                req.Icon,
		CriteriaType:        req.CriteriaType,
		CriteriaTarget:      req.CriteriaTarget,
		CriteriaDescription: req.CriteriaDescription,
		IsRare:              req.IsRare,
		MaxRecipients:       req.MaxRecipients,
		TenantID:            req.TenantID,
		IsActive:            true,
	}
	if err := database.DB.Create(&badge).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"badge": badge})
}

// UpdateBadge handles PUT /admin/badges/:id. The recipient counter is not
// editable here; only the claim path moves it.
func UpdateBadge(c *gin.Context) {
	var badge models.Badge
	if err := database.DB.First(&badge, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Badge not found"})
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Icon        *string `json:"icon"`
		IsActive    *bool   `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&badge).Updates(updates).Error; err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"badge": badge})
}

// ClaimBadge handles POST /admin/badges/:id/claim for manual staff awards. The
// evaluation path claims internally; this surface exists for one-off grants.
func ClaimBadge(c *gin.Context) {
	staffID := c.GetString("userId")

	var req struct {
		UserID string `json:"userId" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "Manually awarded by " + staffID
	}

	awarded, err := Badges.Claim(c.Param("id"), req.UserID, reason)
	if err != nil {
		respondError(c, err)
		return
	}
	if !awarded {
		c.JSON(http.StatusConflict, gin.H{"error": "Badge already held or inactive"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"awarded": true})
}
