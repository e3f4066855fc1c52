package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dan404cipher/alumini-accel-sub000/internal/services"
)

// GetLeaderboard handles GET /leaderboard. kind=points ranks users,
// kind=department aggregates per department.
func GetLeaderboard(c *gin.Context) {
	kind := c.DefaultQuery("kind", "points")

	switch kind {
	case "points":
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
		entries, err := Leaderboard.PointsLeaderboard(services.LeaderboardFilters{
			TenantID:   c.Query("tenant"),
			Department: c.Query("department"),
			Period:     c.Query("period"),
			Limit:      limit,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"leaderboard": entries})

	case "department":
		entries, err := Leaderboard.DepartmentLeaderboard(c.Query("tenant"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"leaderboard": entries})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be 'points' or 'department'"})
	}
}
