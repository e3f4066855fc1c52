package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dan404cipher/alumini-accel-sub000/internal/database"
	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
)

// ListRewards handles GET /rewards: the active catalog visible to users.
func ListRewards(c *gin.Context) {
	var rewards []models.Reward
	query := database.DB.Preload("Tasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	}).Where("is_active = ?", true)
	if tenant := c.GetString("tenantId"); tenant != "" {
		query = query.Where("tenant_id IN ?", []string{"", tenant})
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Order("created_at DESC").Find(&rewards).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": rewards})
}

type taskRequest struct {
	Title                string            `json:"title" binding:"required"`
	ActionType           models.ActionType `json:"actionType" binding:"required"`
	Metric               models.MetricKind `json:"metric"`
	MetricDescriptor     string            `json:"metricDescriptor"`
	Target               float64           `json:"target"`
	Points               int               `json:"points"`
	BadgeID              *string           `json:"badgeId"`
	IsAutomated          *bool             `json:"isAutomated"`
	RequiresVerification bool              `json:"requiresVerification"`
	DisplayOrder         int               `json:"displayOrder"`
}

type rewardRequest struct {
	Name                string            `json:"name" binding:"required"`
	Description         string            `json:"description"`
	Category            string            `json:"category"`
	Type                models.RewardType `json:"type"`
	Points              int               `json:"points"`
	VoucherTemplate     string            `json:"voucherTemplate"`
	VoucherValue        float64           `json:"voucherValue"`
	BadgeID             *string           `json:"badgeId"`
	Tags                []string          `json:"tags"`
	EligibleRoles       []string          `json:"eligibleRoles"`
	EligibleDepartments []string          `json:"eligibleDepartments"`
	EligibleGradYears   []int             `json:"eligibleGradYears"`
	EligiblePrograms    []string          `json:"eligiblePrograms"`
	TenantID            string            `json:"tenantId"`
	StartsAt            *time.Time        `json:"startsAt"`
	EndsAt              *time.Time        `json:"endsAt"`
	Tasks               []taskRequest     `json:"tasks"`
}

// CreateReward handles POST /admin/rewards
func CreateReward(c *gin.Context) {
	var req rewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, t := range req.Tasks {
		if t.Target < 0 || t.Points < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Task target and points must be non-negative"})
			return
		}
	}
	if req.Points < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reward points must be non-negative"})
		return
	}

	rewardType := req.Type
	if rewardType == "" {
		rewardType = models.RewardTypePoints
	}

	reward := models.Reward{
		Name:                req.Name,
		Description:         req.Description,
		Category:            req.Category,
		Type:                rewardType,
		Points:              req.Points,
		VoucherTemplate:     req.VoucherTemplate,
		VoucherValue:        req.VoucherValue,
		BadgeID:             req.BadgeID,
		Tags:                models.StringList(req.Tags),
		EligibleRoles:       models.StringList(req.EligibleRoles),
		EligibleDepartments: models.StringList(req.EligibleDepartments),
		EligibleGradYears:   models.IntList(req.EligibleGradYears),
		EligiblePrograms:    models.StringList(req.EligiblePrograms),
		TenantID:            req.TenantID,
		StartsAt:            req.StartsAt,
		EndsAt:              req.EndsAt,
		IsActive:            true,
		CreatedBy:           c.GetString("userId"),
	}
	for i, t := range req.Tasks {
		automated := true
		if t.IsAutomated != nil {
			automated = *t.IsAutomated
		}
		metric := t.Metric
		if metric == "" {
			metric = models.MetricCount
		}
		order := t.DisplayOrder
		if order == 0 {
			order = i
		}
		reward.Tasks = append(reward.Tasks, models.RewardTask{
			Title:                t.Title,
			ActionType:           t.ActionType,
			Metric:               metric,
			MetricDescriptor:     t.MetricDescriptor,
			Target:               t.Target,
			Points:               t.Points,
			BadgeID:              t.BadgeID,
			IsAutomated:          automated,
			RequiresVerification: t.RequiresVerification,
			DisplayOrder:         order,
		})
	}

	if err := database.DB.Create(&reward).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reward": reward})
}

// UpdateReward handles PUT /admin/rewards/:id. Once activities reference a
// reward only non-breaking metadata edits are allowed; structure (tasks,
// targets, points) is frozen.
func UpdateReward(c *gin.Context) {
	var reward models.Reward
	if err := database.DB.First(&reward, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reward not found"})
		return
	}

	var referenced int64
	database.DB.Model(&models.Activity{}).Where("reward_id = ?", reward.ID).Count(&referenced)

	var req struct {
		Name        *string    `json:"name"`
		Description *string    `json:"description"`
		Category    *string    `json:"category"`
		Tags        []string   `json:"tags"`
		IsActive    *bool      `json:"isActive"`
		EndsAt      *time.Time `json:"endsAt"`
		Points      *int       `json:"points"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if referenced > 0 && req.Points != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot change point value while activities reference this reward"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Tags != nil {
		updates["tags"] = models.StringList(req.Tags)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.EndsAt != nil {
		updates["ends_at"] = *req.EndsAt
	}
	if req.Points != nil {
		updates["points"] = *req.Points
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&reward).Updates(updates).Error; err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"reward": reward})
}

// DeactivateReward handles DELETE /admin/rewards/:id. Rewards referenced by
// activities are never hard-deleted, only switched off.
func DeactivateReward(c *gin.Context) {
	res := database.DB.Model(&models.Reward{}).
		Where("id = ?", c.Param("id")).
		UpdateColumn("is_active", false)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reward not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}

// IssueReward handles POST /admin/rewards/:id/issue, direct staff award of
// a zero-task reward.
func IssueReward(c *gin.Context) {
	staffID := c.GetString("userId")

	var req struct {
		UserID string `json:"userId" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	activity, err := Ledger.IssueReward(c.Param("id"), req.UserID, staffID, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"activity": activity})
}
