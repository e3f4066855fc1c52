package services

import (
	"sort"

	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
)

type ActivityFilters struct {
	Status   models.ActivityStatus
	Category string
	Limit    int
}

type CategoryBreakdown struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
	Points   int    `json:"points"`
}

// UserActivityReport is the per-user read side: the activity rows, a recent
// audit timeline and a per-category rollup.
type UserActivityReport struct {
	Activities []models.Activity        `json:"activities"`
	Timeline   []models.ActivityHistory `json:"timeline"`
	Breakdown  []CategoryBreakdown      `json:"breakdown"`
	Totals     *UserTotals              `json:"totals"`
}

// GetUserActivityHistory assembles a user's progress view.
func (s *LedgerService) GetUserActivityHistory(userID string, f ActivityFilters) (*UserActivityReport, error) {
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}

	query := s.DB.Preload("Reward").Where("activities.user_id = ?", userID)
	if f.Status != "" {
		query = query.Where("activities.status = ?", f.Status)
	}
	if f.Category != "" {
		query = query.Joins("JOIN rewards ON rewards.id = activities.reward_id").
			Where("rewards.category = ?", f.Category)
	}

	var activities []models.Activity
	if err := query.Order("activities.updated_at DESC").Limit(f.Limit).Find(&activities).Error; err != nil {
		return nil, err
	}

	var timeline []models.ActivityHistory
	err := s.DB.
		Joins("JOIN activities ON activities.id = activity_history.activity_id").
		Where("activities.user_id = ?", userID).
		Order("activity_history.created_at DESC").
		Limit(f.Limit).
		Find(&timeline).Error
	if err != nil {
		return nil, err
	}

	type row struct {
		Category string
		Count    int64
		Points   int
	}
	var rows []row
	err = s.DB.Model(&models.Activity{}).
		Select("rewards.category AS category, COUNT(*) AS count, SUM(activities.points_awarded) AS points").
		Joins("JOIN rewards ON rewards.id = activities.reward_id").
		Where("activities.user_id = ?", userID).
		Group("rewards.category").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	breakdown := make([]CategoryBreakdown, 0, len(rows))
	for _, r := range rows {
		breakdown = append(breakdown, CategoryBreakdown{Category: r.Category, Count: r.Count, Points: r.Points})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Points != breakdown[j].Points {
			return breakdown[i].Points > breakdown[j].Points
		}
		return breakdown[i].Category < breakdown[j].Category
	})

	totals, err := s.Points.GetTotals(userID)
	if err != nil {
		return nil, err
	}

	return &UserActivityReport{
		Activities: activities,
		Timeline:   timeline,
		Breakdown:  breakdown,
		Totals:     totals,
	}, nil
}
