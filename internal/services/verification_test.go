package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	apperrors "github.com/dan404cipher/alumini-accel-sub000/pkg/errors"
)

// verifiedMentorReward stands up a reward whose single task needs staff
// sign-off, drives the user to the target and returns the held activity.
func verifiedMentorReward(t *testing.T, env *testEnv, userID string) *models.Activity {
	env.createReward(t, &models.Reward{
		Name:     "Community Mentor",
		Category: "mentorship",
		IsActive: true,
		Tasks: []models.RewardTask{
			{
				Title:                "Complete 3 mentorships",
				ActionType:           models.ActionMentorship,
				Metric:               models.MetricCount,
				Target:               3,
				Points:               100,
				RequiresVerification: true,
			},
		},
	})

	env.metrics.set(userID, models.ActionMentorship, 3)
	activities, err := env.ledger.EvaluateAction(userID, models.ActionMentorship, "")
	assert.NoError(t, err)
	assert.Len(t, activities, 1)
	return &activities[0]
}

func TestVerification_GateHoldsPoints(t *testing.T) {
	env := setupTestDB(t)
	user := env.createUser(t, "mentor-1", "Mentor One")
	activity := verifiedMentorReward(t, env, user.ID)

	// Target met, but the activity parks pending verification with no credit
	assert.Equal(t, models.ActivityInProgress, activity.Status)
	assert.Equal(t, models.VerificationPending, activity.VerificationStatus)
	assert.Equal(t, 0, activity.PointsAwarded)

	totals, _ := env.points.GetTotals(user.ID)
	assert.Equal(t, 0, totals.TotalPoints)

	// Re-evaluating while pending does not duplicate the hold
	_, err := env.ledger.EvaluateAction(user.ID, models.ActionMentorship, "")
	assert.NoError(t, err)

	var count int64
	env.db.Model(&models.Activity{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestVerification_ApproveCreditsOnce(t *testing.T) {
	env := setupTestDB(t)
	user := env.createUser(t, "mentor-2", "Mentor Two")
	staff := env.createUser(t, "staff-v", "Staff V")
	activity := verifiedMentorReward(t, env, user.ID)

	resolved, err := env.verify.Resolve(activity.ID, ResolveApprove, staff.ID, "")
	assert.NoError(t, err)
	assert.Equal(t, models.ActivityEarned, resolved.Status)
	assert.Equal(t, models.VerificationApproved, resolved.VerificationStatus)
	assert.Equal(t, 100, resolved.PointsAwarded)
	assert.NotNil(t, resolved.VerifiedAt)

	totals, _ := env.points.GetTotals(user.ID)
	assert.Equal(t, 100, totals.TotalPoints)

	// Second resolution of any kind conflicts and never touches points
	_, err = env.verify.Resolve(activity.ID, ResolveApprove, staff.ID, "")
	assert.True(t, apperrors.IsConflict(err))

	_, err = env.verify.Resolve(activity.ID, ResolveReject, staff.ID, "too late")
	assert.True(t, apperrors.IsConflict(err))

	totals, _ = env.points.GetTotals(user.ID)
	assert.Equal(t, 100, totals.TotalPoints)
}

func TestVerification_ApproveAwardsLinkedBadge(t *testing.T) {
	env := setupTestDB(t)
	user := env.createUser(t, "mentor-5", "Mentor Five")
	staff := env.createUser(t, "staff-b", "Staff B")

	badge := env.createBadge(t, &models.Badge{
		Name:     "Mentor of the Year",
		IsActive: true,
	})
	env.createReward(t, &models.Reward{
		Name:     "Decorated Mentor",
		Category: "mentorship",
		IsActive: true,
		Tasks: []models.RewardTask{
			{
				Title:                "Complete 3 mentorships",
				ActionType:           models.ActionMentorship,
				Metric:               models.MetricCount,
				Target:               3,
				Points:               100,
				RequiresVerification: true,
				BadgeID:              &badge.ID,
			},
		},
	})

	env.metrics.set(user.ID, models.ActionMentorship, 3)
	activities, err := env.ledger.EvaluateAction(user.ID, models.ActionMentorship, "")
	assert.NoError(t, err)
	assert.Len(t, activities, 1)

	// The badge waits behind the gate with the points
	var held int64
	env.db.Model(&models.UserBadge{}).Where("user_id = ? AND badge_id = ?", user.ID, badge.ID).Count(&held)
	assert.Equal(t, int64(0), held)

	resolved, err := env.verify.Resolve(activities[0].ID, ResolveApprove, staff.ID, "")
	assert.NoError(t, err)
	assert.Equal(t, models.ActivityEarned, resolved.Status)

	env.db.Model(&models.UserBadge{}).Where("user_id = ? AND badge_id = ?", user.ID, badge.ID).Count(&held)
	assert.Equal(t, int64(1), held)

	var fresh models.Badge
	env.db.First(&fresh, "id = ?", badge.ID)
	assert.Equal(t, 1, fresh.CurrentRecipients)
}

func TestVerification_ApproveIssuesVoucher(t *testing.T) {
	env := setupTestDB(t)
	user := env.createUser(t, "host-1", "Host One")
	staff := env.createUser(t, "staff-h", "Staff H")

	env.createReward(t, &models.Reward{
		Name:            "Verified Event Host",
		Category:        "events",
		Type:            models.RewardTypeVoucher,
		VoucherTemplate: "GATED-{CODE}",
		VoucherValue:    40,
		IsActive:        true,
		Tasks: []models.RewardTask{
			{
				Title:                "Host an event",
				ActionType:           models.ActionEvent,
				Metric:               models.MetricCount,
				Target:               1,
				Points:               20,
				RequiresVerification: true,
			},
		},
	})

	env.metrics.set(user.ID, models.ActionEvent, 1)
	activities, err := env.ledger.EvaluateAction(user.ID, models.ActionEvent, "")
	assert.NoError(t, err)
	assert.Len(t, activities, 1)

	resolved, err := env.verify.Resolve(activities[0].ID, ResolveApprove, staff.ID, "")
	assert.NoError(t, err)
	assert.Equal(t, models.ActivityEarned, resolved.Status)
	assert.Contains(t, resolved.VoucherCode, "GATED-")
	assert.Equal(t, float64(40), resolved.VoucherValue)

	redeemed, err := env.ledger.Redeem(resolved.ID, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ActivityRedeemed, redeemed.Status)

	var redeemRows int64
	env.db.Model(&models.ActivityHistory{}).
		Where("activity_id = ? AND action = ?", resolved.ID, models.HistoryRedeemed).
		Count(&redeemRows)
	assert.Equal(t, int64(1), redeemRows)
}

func TestVerification_RejectLeavesActivityOpen(t *testing.T) {
	env := setupTestDB(t)
	user := env.createUser(t, "mentor-3", "Mentor Three")
	staff := env.createUser(t, "staff-r", "Staff R")
	activity := verifiedMentorReward(t, env, user.ID)

	resolved, err := env.verify.Resolve(activity.ID, ResolveReject, staff.ID, "")
	assert.NoError(t, err)
	assert.Equal(t, models.VerificationRejected, resolved.VerificationStatus)
	assert.Equal(t, models.DefaultRejectionReason, resolved.RejectionReason)

	// Rejection is a verification outcome, not an activity transition
	assert.Equal(t, models.ActivityInProgress, resolved.Status)
	assert.Equal(t, 0, resolved.PointsAwarded)

	totals, _ := env.points.GetTotals(user.ID)
	assert.Equal(t, 0, totals.TotalPoints)

	// The next evaluation re-enters the verification queue
	_, err = env.ledger.EvaluateAction(user.ID, models.ActionMentorship, "")
	assert.NoError(t, err)

	var fresh models.Activity
	env.db.First(&fresh, "id = ?", activity.ID)
	assert.Equal(t, models.VerificationPending, fresh.VerificationStatus)
}

func TestVerification_ResolveValidation(t *testing.T) {
	env := setupTestDB(t)
	user := env.createUser(t, "mentor-4", "Mentor Four")
	staff := env.createUser(t, "staff-x", "Staff X")

	_, err := env.verify.Resolve("no-such-activity", ResolveApprove, staff.ID, "")
	assert.True(t, apperrors.IsNotFound(err))

	// An activity that never required verification cannot be resolved
	env.createReward(t, &models.Reward{
		Name:     "Plain Reward",
		IsActive: true,
		Tasks: []models.RewardTask{
			{Title: "Donate once", ActionType: models.ActionDonation, Metric: models.MetricCount, Target: 1, Points: 5},
		},
	})
	env.metrics.set(user.ID, models.ActionDonation, 1)
	activities, err := env.ledger.EvaluateAction(user.ID, models.ActionDonation, "")
	assert.NoError(t, err)

	_, err = env.verify.Resolve(activities[0].ID, ResolveApprove, staff.ID, "")
	var appErr *apperrors.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)

	activity := verifiedMentorReward(t, env, user.ID)
	_, err = env.verify.Resolve(activity.ID, "MAYBE", staff.ID, "")
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestVerification_ListPending(t *testing.T) {
	env := setupTestDB(t)
	staff := env.createUser(t, "staff-l", "Staff L")

	alice := env.createUser(t, "alice-v", "Alice Vernon")
	bob := env.createUser(t, "bob-v", "Bob Velez")

	env.createReward(t, &models.Reward{
		Name:     "Referral Drive",
		IsActive: true,
		Tasks: []models.RewardTask{
			{Title: "Refer a hire", ActionType: models.ActionReferral, Metric: models.MetricCount, Target: 1, Points: 30, RequiresVerification: true},
		},
	})

	env.metrics.set(alice.ID, models.ActionReferral, 1)
	env.metrics.set(bob.ID, models.ActionReferral, 1)
	_, err := env.ledger.EvaluateAction(alice.ID, models.ActionReferral, "")
	assert.NoError(t, err)
	_, err = env.ledger.EvaluateAction(bob.ID, models.ActionReferral, "")
	assert.NoError(t, err)

	page, err := env.verify.ListPending(PendingFilters{})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 2)
	// Oldest submission first
	assert.Equal(t, alice.ID, page.Items[0].UserID)

	// Name search narrows the queue
	page, err = env.verify.ListPending(PendingFilters{Search: "vernon"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, alice.ID, page.Items[0].UserID)

	// User filter
	page, err = env.verify.ListPending(PendingFilters{UserID: bob.ID})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	// Paging
	page, err = env.verify.ListPending(PendingFilters{Page: 2, Limit: 1})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 1)

	// Resolved items leave the default queue and show under their status
	_, err = env.verify.Resolve(page.Items[0].ID, ResolveApprove, staff.ID, "")
	assert.NoError(t, err)

	page, err = env.verify.ListPending(PendingFilters{})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = env.verify.ListPending(PendingFilters{Status: models.VerificationApproved})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}
