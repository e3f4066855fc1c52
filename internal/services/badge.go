package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	apperrors "github.com/dan404cipher/alumini-accel-sub000/pkg/errors"
	"github.com/dan404cipher/alumini-accel-sub000/pkg/logger"
)

// BadgeService is the registry for scarcity-aware badges. Claim is the only
// writer of current_recipients; the conditional UPDATE it uses is what keeps
// the recipient cap intact under concurrent claims.
type BadgeService struct {
	DB       *gorm.DB
	Notifier *Notifier
}

func NewBadgeService(db *gorm.DB, notifier *Notifier) *BadgeService {
	return &BadgeService{DB: db, Notifier: notifier}
}

// Claim awards badgeID to userID if the user does not already hold it and a
// recipient slot is available. Returns (false, nil) for an already-held or
// inactive badge, and CapacityExceeded when the cap is reached: two racing
// claims on the last slot resolve with exactly one winner.
func (s *BadgeService) Claim(badgeID, userID, reason string) (bool, error) {
	var badge models.Badge
	if err := s.DB.First(&badge, "id = ?", badgeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperrors.NotFound("Badge not found")
		}
		return false, err
	}
	if !badge.IsActive {
		return false, nil
	}

	awarded := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// The composite (user_id, badge_id) key makes the insert the
		// serialization point for "already held"
		userBadge := models.UserBadge{
			UserID:  userID,
			BadgeID: badgeID,
			Reason:  reason,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&userBadge)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already held; benign no-op
			return nil
		}

		// Compare-and-increment against the cap. Zero rows affected means
		// another claim took the last slot; roll the insert back too.
		inc := tx.Model(&models.Badge{}).
			Where("id = ? AND (max_recipients IS NULL OR current_recipients < max_recipients)", badgeID).
			UpdateColumn("current_recipients", gorm.Expr("current_recipients + 1"))
		if inc.Error != nil {
			return inc.Error
		}
		if inc.RowsAffected == 0 {
			return apperrors.CapacityExceeded(badge.Name)
		}

		awarded = true
		return nil
	})
	if err != nil {
		if apperrors.IsCapacityExceeded(err) {
			logger.Info().Str("badge", badge.Name).Str("userId", userID).Msg("Badge cap reached, claim skipped")
		}
		return false, err
	}

	if awarded && s.Notifier != nil {
		s.Notifier.BadgeAwarded(userID, &badge)
	}
	return awarded, nil
}

// ListUserBadges returns the user's public badge list, newest first.
func (s *BadgeService) ListUserBadges(userID string) ([]models.UserBadge, error) {
	var badges []models.UserBadge
	err := s.DB.Preload("Badge").
		Where("user_id = ?", userID).
		Order("awarded_at DESC").
		Find(&badges).Error
	return badges, err
}
