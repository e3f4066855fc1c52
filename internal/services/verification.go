package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	apperrors "github.com/dan404cipher/alumini-accel-sub000/pkg/errors"
	"github.com/dan404cipher/alumini-accel-sub000/pkg/logger"
)

// VerificationService is the staff gate on activities whose tasks require
// sign-off before points are credited. Resolution is a conditional transition
// from PENDING only, so a second concurrent resolution fails cleanly instead
// of double-crediting.
type VerificationService struct {
	DB       *gorm.DB
	Points   *PointsService
	Ledger   *LedgerService
	Notifier *Notifier
}

func NewVerificationService(db *gorm.DB, points *PointsService, ledger *LedgerService, notifier *Notifier) *VerificationService {
	return &VerificationService{DB: db, Points: points, Ledger: ledger, Notifier: notifier}
}

type ResolveAction string

const (
	ResolveApprove ResolveAction = "APPROVE"
	ResolveReject  ResolveAction = "REJECT"
)

type PendingFilters struct {
	TenantID string
	Status   models.VerificationStatus
	RewardID string
	UserID   string
	Search   string
	Page     int
	Limit    int
}

type PendingPage struct {
	Items []models.Activity `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

var verificationPageSize = 20

// SetVerificationPageSize overrides the default queue page size. Called once
// at startup from config.
func SetVerificationPageSize(n int) {
	if n > 0 && n <= 100 {
		verificationPageSize = n
	}
}

// ListPending pages activities awaiting (or filtered by) verification state.
func (s *VerificationService) ListPending(f PendingFilters) (*PendingPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = verificationPageSize
	}
	status := f.Status
	if status == models.VerificationNone {
		status = models.VerificationPending
	}

	query := s.DB.Model(&models.Activity{}).
		Where("verification_required = ? AND verification_status = ?", true, status)
	if f.TenantID != "" {
		query = query.Where("activities.tenant_id = ?", f.TenantID)
	}
	if f.RewardID != "" {
		query = query.Where("reward_id = ?", f.RewardID)
	}
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Joins("JOIN users ON users.id = activities.user_id").
			Where("LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Activity
	err := query.Preload("Reward").
		Order("activities.created_at ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &PendingPage{Items: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// Resolve approves or rejects one pending verification. Approval credits the
// task's points exactly once: the status flip, the points_added flag and the
// accumulator update commit in the same transaction. Rejection records a
// reason and leaves both points and the top-level status untouched.
func (s *VerificationService) Resolve(activityID string, action ResolveAction, staffID, reason string) (*models.Activity, error) {
	var activity models.Activity
	if err := s.DB.Preload("Reward.Tasks").First(&activity, "id = ?", activityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Activity not found")
		}
		return nil, err
	}
	if !activity.VerificationRequired {
		return nil, apperrors.BadRequest("Activity does not require verification")
	}

	switch action {
	case ResolveApprove:
		return s.approve(&activity, staffID)
	case ResolveReject:
		return s.reject(&activity, staffID, reason)
	default:
		return nil, apperrors.BadRequest("Action must be APPROVE or REJECT")
	}
}

func (s *VerificationService) approve(activity *models.Activity, staffID string) (*models.Activity, error) {
	points := s.taskPoints(activity)
	now := time.Now()
	credited := false

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Activity{}).
			Where("id = ? AND verification_status = ?", activity.ID, models.VerificationPending).
			Updates(map[string]interface{}{
				"verification_status": models.VerificationApproved,
				"verified_by":         staffID,
				"verified_at":         now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.Conflict("Verification already resolved")
		}

		// Crediting guard: only the update that flips points_added credits.
		// A retried approval that somehow reaches this point finds the flag
		// set and leaves the accumulator alone.
		credit := tx.Model(&models.Activity{}).
			Where("id = ? AND points_added = ?", activity.ID, false).
			Updates(map[string]interface{}{
				"status":         models.ActivityEarned,
				"points_awarded": points,
				"points_added":   true,
				"earned_at":      now,
			})
		if credit.Error != nil {
			return credit.Error
		}
		if credit.RowsAffected > 0 {
			if err := s.Points.AddPointsTx(tx, activity.UserID, points); err != nil {
				return err
			}
			credited = true
		}

		return tx.Create(&models.ActivityHistory{
			ActivityID: activity.ID,
			Action:     models.HistoryVerificationApproved,
			Value:      activity.ProgressValue,
			Note:       "Approved by " + staffID,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	var fresh models.Activity
	if err := s.DB.First(&fresh, "id = ?", activity.ID).Error; err != nil {
		return nil, err
	}

	// Approval is the earned transition for gated tasks, so the same
	// post-credit effects run here as on the automated path. Without this a
	// gated task could never award its linked badge or voucher.
	if credited && s.Ledger != nil {
		var user models.User
		if err := s.DB.First(&user, "id = ?", fresh.UserID).Error; err != nil {
			return nil, err
		}
		var task *models.RewardTask
		for i := range activity.Reward.Tasks {
			if activity.Reward.Tasks[i].ID == activity.TaskID {
				task = &activity.Reward.Tasks[i]
				break
			}
		}
		s.Ledger.completeEarned(&user, &activity.Reward, task, &fresh, now)
	}

	if s.Notifier != nil {
		s.Notifier.VerificationResolved(fresh.UserID, &fresh, true)
	}
	logger.Info().Str("activityId", activity.ID).Str("staffId", staffID).Int("points", points).Msg("Verification approved")
	return &fresh, nil
}

func (s *VerificationService) reject(activity *models.Activity, staffID, reason string) (*models.Activity, error) {
	if reason == "" {
		reason = models.DefaultRejectionReason
	}
	now := time.Now()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Activity{}).
			Where("id = ? AND verification_status = ?", activity.ID, models.VerificationPending).
			Updates(map[string]interface{}{
				"verification_status": models.VerificationRejected,
				"verified_by":         staffID,
				"verified_at":         now,
				"rejection_reason":    reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.Conflict("Verification already resolved")
		}
		return tx.Create(&models.ActivityHistory{
			ActivityID: activity.ID,
			Action:     models.HistoryVerificationRejected,
			Value:      activity.ProgressValue,
			Note:       reason,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	var fresh models.Activity
	if err := s.DB.First(&fresh, "id = ?", activity.ID).Error; err != nil {
		return nil, err
	}
	if s.Notifier != nil {
		s.Notifier.VerificationResolved(fresh.UserID, &fresh, false)
	}
	return &fresh, nil
}

// taskPoints resolves the payout for the activity's task; manual issues carry
// the reward-level point value.
func (s *VerificationService) taskPoints(activity *models.Activity) int {
	if activity.TaskID == ManualTaskID {
		return activity.Reward.Points
	}
	for i := range activity.Reward.Tasks {
		if activity.Reward.Tasks[i].ID == activity.TaskID {
			return activity.Reward.Tasks[i].Points
		}
	}
	return 0
}
