package services

import (
	"gorm.io/gorm"

	"github.com/dan404cipher/alumini-accel-sub000/internal/database"
	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	apperrors "github.com/dan404cipher/alumini-accel-sub000/pkg/errors"
	"github.com/dan404cipher/alumini-accel-sub000/pkg/logger"
)

// PointsService is the accumulator: purely additive running totals.
// Tier is derived from the total on read, never stored, so it cannot drift.
type PointsService struct {
	DB *gorm.DB
}

func NewPointsService(db *gorm.DB) *PointsService {
	return &PointsService{DB: db}
}

type UserTotals struct {
	UserID      string      `json:"userId"`
	TotalPoints int         `json:"totalPoints"`
	Tier        models.Tier `json:"tier"`
}

// AddPoints credits delta to the user's running total and returns the new
// totals. Negative deltas are rejected; the accumulator never decreases.
func (s *PointsService) AddPoints(userID string, delta int) (*UserTotals, error) {
	if delta < 0 {
		return nil, apperrors.BadRequest("Point delta must be non-negative")
	}
	if err := s.AddPointsTx(s.DB, userID, delta); err != nil {
		return nil, err
	}
	return s.GetTotals(userID)
}

// AddPointsTx applies the credit inside an existing transaction so point
// crediting commits or rolls back together with the ledger transition that
// caused it.
func (s *PointsService) AddPointsTx(tx *gorm.DB, userID string, delta int) error {
	if delta == 0 {
		return nil
	}
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_points", gorm.Expr("total_points + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("User not found")
	}
	// Window leaderboards read from activities, lifetime ones from this
	// total; both go stale on a credit
	if err := database.CacheInvalidate("leaderboard:*"); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate leaderboard cache")
	}
	invalidateLeaderboardMemCache()
	return nil
}

// GetTotals returns the user's lifetime points and derived tier.
func (s *PointsService) GetTotals(userID string) (*UserTotals, error) {
	var user models.User
	if err := s.DB.Select("id", "total_points").First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, err
	}
	return &UserTotals{
		UserID:      user.ID,
		TotalPoints: user.TotalPoints,
		Tier:        user.Tier(),
	}, nil
}
