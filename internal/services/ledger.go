package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dan404cipher/alumini-accel-sub000/internal/metrics"
	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	apperrors "github.com/dan404cipher/alumini-accel-sub000/pkg/errors"
	"github.com/dan404cipher/alumini-accel-sub000/pkg/logger"
	"github.com/dan404cipher/alumini-accel-sub000/pkg/utils"
)

// LedgerService drives the achievement state machine. All writes go through
// conditional updates keyed on the current status, so redundant or racing
// evaluations settle on a single credit per (user, reward, task).
type LedgerService struct {
	DB       *gorm.DB
	Metrics  metrics.Source
	Points   *PointsService
	Badges   *BadgeService
	Notifier *Notifier
}

func NewLedgerService(db *gorm.DB, source metrics.Source, points *PointsService, badges *BadgeService, notifier *Notifier) *LedgerService {
	return &LedgerService{
		DB:       db,
		Metrics:  source,
		Points:   points,
		Badges:   badges,
		Notifier: notifier,
	}
}

// ManualTaskID marks activities created by direct staff issuance of a
// zero-task reward.
const ManualTaskID = "MANUAL"

// EvaluateAction re-evaluates every candidate task for the user after a
// domain action of the given type. Tasks whose metric source fails are
// skipped and logged; the rest still evaluate. "Criteria not yet met" is not
// an error, just an in-progress activity.
func (s *LedgerService) EvaluateAction(userID string, action models.ActionType, tenantID string) ([]models.Activity, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, err
	}

	now := time.Now()

	var rewards []models.Reward
	query := s.DB.Preload("Tasks", "action_type = ? AND is_automated = ?", action, true).
		Where("is_active = ?", true)
	if tenantID != "" {
		query = query.Where("tenant_id IN ?", []string{"", tenantID})
	} else {
		query = query.Where("tenant_id = ?", "")
	}
	if err := query.Find(&rewards).Error; err != nil {
		return nil, err
	}

	var updated []models.Activity
	for i := range rewards {
		reward := &rewards[i]
		if len(reward.Tasks) == 0 || !reward.WindowContains(now) || !reward.AvailableTo(&user) {
			continue
		}
		for j := range reward.Tasks {
			task := &reward.Tasks[j]
			activity, err := s.evaluateTask(&user, reward, task, now)
			if err != nil {
				var srcErr *metrics.SourceError
				if errors.As(err, &srcErr) {
					// Partial failure isolation: one broken metric source
					// must not block unrelated achievements
					logger.Error().Err(err).
						Str("userId", userID).
						Str("taskId", task.ID).
						Msg("Metric lookup failed, skipping task")
					continue
				}
				return updated, err
			}
			if activity != nil {
				updated = append(updated, *activity)
			}
		}
	}
	return updated, nil
}

// evaluateTask advances a single (user, reward, task) activity.
func (s *LedgerService) evaluateTask(user *models.User, reward *models.Reward, task *models.RewardTask, now time.Time) (*models.Activity, error) {
	activity, err := s.ensureActivity(user, reward, task)
	if err != nil {
		return nil, err
	}

	// Terminal or already-credited records are idempotent no-ops detected by
	// the unique-record lookup, not by re-running point math
	if activity.Completed() {
		return activity, nil
	}

	value, err := s.Metrics.GetMetric(user.ID, task.ActionType, task.Metric, task.MetricDescriptor, user.TenantID)
	if err != nil {
		return nil, err
	}

	// Cumulative metrics never go backwards; the guard makes that hold even
	// if a source briefly reports low
	if value > activity.ProgressValue {
		res := s.DB.Model(&models.Activity{}).
			Where("id = ? AND progress_value < ?", activity.ID, value).
			UpdateColumn("progress_value", value)
		if res.Error != nil {
			return nil, res.Error
		}
		activity.ProgressValue = value
	}

	if activity.ProgressValue < activity.ProgressTarget {
		if activity.Status == models.ActivityPending {
			s.DB.Model(&models.Activity{}).
				Where("id = ? AND status = ?", activity.ID, models.ActivityPending).
				UpdateColumn("status", models.ActivityInProgress)
			activity.Status = models.ActivityInProgress
			s.recordHistory(activity.ID, models.HistoryProgress, activity.ProgressValue, "")
		}
		return activity, nil
	}

	// Target met
	if task.RequiresVerification && activity.VerificationStatus != models.VerificationApproved {
		return s.holdForVerification(activity)
	}
	return s.markEarned(user, reward, task, activity, now)
}

// ensureActivity is the atomic get-or-create for the (user, reward, task)
// triple. ON CONFLICT DO NOTHING against the unique index means two racing
// evaluations converge on the same record.
func (s *LedgerService) ensureActivity(user *models.User, reward *models.Reward, task *models.RewardTask) (*models.Activity, error) {
	activity := models.Activity{
		UserID:         user.ID,
		RewardID:       reward.ID,
		TaskID:         task.ID,
		Status:         models.ActivityPending,
		ProgressTarget: task.Target,
		TenantID:       user.TenantID,
		Metadata:       models.JSONMap{},
	}
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "reward_id"}, {Name: "task_id"}},
		DoNothing: true,
	}).Create(&activity)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		s.recordHistory(activity.ID, models.HistoryCreated, 0, "")
		return &activity, nil
	}

	var existing models.Activity
	err := s.DB.Where("user_id = ? AND reward_id = ? AND task_id = ?", user.ID, reward.ID, task.ID).
		First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// holdForVerification parks a target-met activity behind the staff gate
// without crediting anything.
func (s *LedgerService) holdForVerification(activity *models.Activity) (*models.Activity, error) {
	// A rejected submission re-enters the queue on the next evaluation; an
	// already-pending one is left untouched
	res := s.DB.Model(&models.Activity{}).
		Where("id = ? AND verification_status IN ?", activity.ID,
			[]models.VerificationStatus{models.VerificationNone, models.VerificationRejected}).
		Updates(map[string]interface{}{
			"status":                models.ActivityInProgress,
			"verification_required": true,
			"verification_status":   models.VerificationPending,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		s.recordHistory(activity.ID, models.HistoryVerificationPending, activity.ProgressValue, "")
		activity.Status = models.ActivityInProgress
		activity.VerificationRequired = true
		activity.VerificationStatus = models.VerificationPending
	}
	return activity, nil
}

// markEarned commits the earned transition, the point credit and the history
// entry as one unit. The WHERE clause on status and points_added is the
// at-most-once guard: only the caller that flips the row credits points.
func (s *LedgerService) markEarned(user *models.User, reward *models.Reward, task *models.RewardTask, activity *models.Activity, now time.Time) (*models.Activity, error) {
	credited := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Activity{}).
			Where("id = ? AND status IN ? AND points_added = ?", activity.ID,
				[]models.ActivityStatus{models.ActivityPending, models.ActivityInProgress}, false).
			Updates(map[string]interface{}{
				"status":         models.ActivityEarned,
				"points_awarded": task.Points,
				"points_added":   true,
				"earned_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent evaluation already earned it
			return nil
		}
		if err := s.Points.AddPointsTx(tx, user.ID, task.Points); err != nil {
			return err
		}
		if err := s.appendHistory(tx, activity.ID, models.HistoryEarned, activity.ProgressValue, ""); err != nil {
			return err
		}
		credited = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if credited {
		activity.Status = models.ActivityEarned
		activity.PointsAwarded = task.Points
		activity.PointsAdded = true
		activity.EarnedAt = &now
		s.completeEarned(user, reward, task, activity, now)
		return activity, nil
	}

	// Lost the race: report the committed state
	var fresh models.Activity
	if err := s.DB.First(&fresh, "id = ?", activity.ID).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

// completeEarned runs the side effects that follow a successful credit: the
// task's linked badge claim, then the reward-level completion check. Staff
// approval of a gated task funnels through here too, so gated badges and
// vouchers behave the same as automated earns.
func (s *LedgerService) completeEarned(user *models.User, reward *models.Reward, task *models.RewardTask, activity *models.Activity, now time.Time) {
	if task != nil && task.BadgeID != nil {
		s.claimLinkedBadge(*task.BadgeID, user.ID, reward.Name, activity.ID)
	}
	s.onRewardProgress(user, reward, activity, now)
	if s.Notifier != nil {
		s.Notifier.RewardEarned(user.ID, activity, reward.Name)
	}
}

// claimLinkedBadge runs the registry claim and downgrades cap misses to a
// skip, matching how evaluation treats unmet criteria.
func (s *LedgerService) claimLinkedBadge(badgeID, userID, rewardName, activityID string) {
	awarded, err := s.Badges.Claim(badgeID, userID, "Earned via "+rewardName)
	if err != nil && !apperrors.IsCapacityExceeded(err) {
		logger.Error().Err(err).Str("badgeId", badgeID).Str("userId", userID).Msg("Badge claim failed")
		return
	}
	if awarded {
		s.recordHistory(activityID, models.HistoryBadgeAwarded, 0, badgeID)
	}
}

// onRewardProgress fires reward-level effects once every task of the reward
// is earned: the reward's own badge and, for voucher rewards, the voucher
// code on the completing activity.
func (s *LedgerService) onRewardProgress(user *models.User, reward *models.Reward, activity *models.Activity, now time.Time) {
	var taskCount, earnedCount int64
	s.DB.Model(&models.RewardTask{}).Where("reward_id = ?", reward.ID).Count(&taskCount)
	s.DB.Model(&models.Activity{}).
		Where("user_id = ? AND reward_id = ? AND status IN ?", user.ID, reward.ID,
			[]models.ActivityStatus{models.ActivityEarned, models.ActivityRedeemed}).
		Count(&earnedCount)
	if earnedCount < taskCount {
		return
	}

	if reward.BadgeID != nil {
		s.claimLinkedBadge(*reward.BadgeID, user.ID, reward.Name, activity.ID)
	}

	if reward.Type == models.RewardTypeVoucher {
		code := utils.GenerateVoucherCode(reward.VoucherTemplate)
		res := s.DB.Model(&models.Activity{}).
			Where("id = ? AND voucher_code = ?", activity.ID, "").
			Updates(map[string]interface{}{
				"voucher_code":  code,
				"voucher_value": reward.VoucherValue,
			})
		if res.Error == nil && res.RowsAffected > 0 {
			activity.VoucherCode = code
			activity.VoucherValue = reward.VoucherValue
		}
	}
}

// IssueReward directly awards a zero-task reward to a user by staff action.
// Issuing the same reward twice is a conflict.
func (s *LedgerService) IssueReward(rewardID, userID, staffID, note string) (*models.Activity, error) {
	var reward models.Reward
	if err := s.DB.Preload("Tasks").First(&reward, "id = ?", rewardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Reward not found")
		}
		return nil, err
	}
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, err
	}

	now := time.Now()
	activity := models.Activity{
		UserID:        userID,
		RewardID:      rewardID,
		TaskID:        ManualTaskID,
		Status:        models.ActivityEarned,
		PointsAwarded: reward.Points,
		PointsAdded:   true,
		EarnedAt:      &now,
		IssuedBy:      staffID,
		TenantID:      user.TenantID,
		Metadata:      models.JSONMap{"note": note},
	}
	if reward.Type == models.RewardTypeVoucher {
		activity.VoucherCode = utils.GenerateVoucherCode(reward.VoucherTemplate)
		activity.VoucherValue = reward.VoucherValue
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "reward_id"}, {Name: "task_id"}},
			DoNothing: true,
		}).Create(&activity)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.Conflict("Reward already issued to this user")
		}
		if err := s.Points.AddPointsTx(tx, userID, reward.Points); err != nil {
			return err
		}
		return s.appendHistory(tx, activity.ID, models.HistoryManualIssue, 0, "Issued by "+staffID)
	})
	if err != nil {
		return nil, err
	}

	if reward.BadgeID != nil {
		s.claimLinkedBadge(*reward.BadgeID, userID, reward.Name, activity.ID)
	}
	if s.Notifier != nil {
		s.Notifier.RewardEarned(userID, &activity, reward.Name)
	}
	return &activity, nil
}

// Redeem moves an earned voucher/perk activity to its terminal REDEEMED
// state for the owning user.
func (s *LedgerService) Redeem(activityID, userID string) (*models.Activity, error) {
	var activity models.Activity
	if err := s.DB.Preload("Reward").First(&activity, "id = ? AND user_id = ?", activityID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Activity not found")
		}
		return nil, err
	}
	if activity.Reward.Type != models.RewardTypeVoucher && activity.Reward.Type != models.RewardTypePerk {
		return nil, apperrors.BadRequest("This reward has nothing to redeem")
	}

	now := time.Now()
	res := s.DB.Model(&models.Activity{}).
		Where("id = ? AND status = ?", activityID, models.ActivityEarned).
		Updates(map[string]interface{}{
			"status":      models.ActivityRedeemed,
			"redeemed_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.Conflict("Activity is not in an earned state")
	}
	s.recordHistory(activityID, models.HistoryRedeemed, 0, "")

	activity.Status = models.ActivityRedeemed
	activity.RedeemedAt = &now
	return &activity, nil
}

// appendHistory writes a timeline row inside the caller's transaction; the
// crediting paths treat a failed write as fatal so the ledger and its
// timeline commit together.
func (s *LedgerService) appendHistory(tx *gorm.DB, activityID, action string, value float64, note string) error {
	if activityID == "" {
		return nil
	}
	entry := models.ActivityHistory{
		ActivityID: activityID,
		Action:     action,
		Value:      value,
		Note:       note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		logger.Warn().Err(err).Str("activityId", activityID).Str("action", action).Msg("Failed to append history entry")
		return err
	}
	return nil
}

// recordHistory is the fire-and-forget variant for writes outside a
// transaction. A lost timeline row is already logged and never fails the
// operation that produced it.
func (s *LedgerService) recordHistory(activityID, action string, value float64, note string) {
	_ = s.appendHistory(s.DB, activityID, action, value, note)
}
