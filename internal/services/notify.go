package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	"github.com/dan404cipher/alumini-accel-sub000/pkg/logger"
)

// Notifier writes best-effort notification records. It runs after the ledger
// transaction commits; a failed notification is logged and dropped, never
// propagated, so it can't roll back a committed state change.
type Notifier struct {
	DB *gorm.DB
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{DB: db}
}

func (n *Notifier) BadgeAwarded(userID string, badge *models.Badge) {
	n.dispatch(&models.Notification{
		UserID:  userID,
		Type:    models.NotificationTypeBadgeAwarded,
		BadgeID: &badge.ID,
		Message: fmt.Sprintf("You earned the %q badge!", badge.Name),
	})
}

func (n *Notifier) RewardEarned(userID string, activity *models.Activity, rewardName string) {
	n.dispatch(&models.Notification{
		UserID:     userID,
		Type:       models.NotificationTypeRewardEarned,
		ActivityID: &activity.ID,
		Message:    fmt.Sprintf("You completed %q and earned %d points!", rewardName, activity.PointsAwarded),
	})
}

func (n *Notifier) VerificationResolved(userID string, activity *models.Activity, approved bool) {
	msg := "Your submission was approved"
	if !approved {
		msg = "Your submission was rejected: " + activity.RejectionReason
	}
	n.dispatch(&models.Notification{
		UserID:     userID,
		Type:       models.NotificationTypeVerificationResolved,
		ActivityID: &activity.ID,
		Message:    msg,
	})
}

func (n *Notifier) dispatch(notification *models.Notification) {
	if err := n.DB.Create(notification).Error; err != nil {
		logger.Warn().Err(err).
			Str("userId", notification.UserID).
			Str("type", string(notification.Type)).
			Msg("Failed to dispatch notification")
	}
}
