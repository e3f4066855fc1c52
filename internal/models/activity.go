package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityStatus string

const (
	ActivityPending    ActivityStatus = "PENDING"
	ActivityInProgress ActivityStatus = "IN_PROGRESS"
	ActivityEarned     ActivityStatus = "EARNED"
	ActivityRedeemed   ActivityStatus = "REDEEMED"
	ActivityExpired    ActivityStatus = "EXPIRED"
)

// VerificationStatus is a state machine independent of ActivityStatus: a
// rejected verification leaves the activity IN_PROGRESS so it can be
// corrected and resubmitted.
type VerificationStatus string

const (
	VerificationNone     VerificationStatus = ""
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
)

const DefaultRejectionReason = "Submission did not meet the requirements"

// Activity is the ledger's primary record: one row per (user, reward, task).
// The unique index on that triple is the at-most-once serialization point for
// racing evaluations. Rows are never deleted.
type Activity struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	UserID   string `gorm:"type:text;not null;uniqueIndex:idx_activity_user_reward_task" json:"userId"`
	RewardID string `gorm:"type:text;not null;uniqueIndex:idx_activity_user_reward_task" json:"rewardId"`
	TaskID   string `gorm:"type:text;not null;uniqueIndex:idx_activity_user_reward_task" json:"taskId"`

	Status ActivityStatus `gorm:"type:text;default:'PENDING';index" json:"status"`

	ProgressValue float64 `gorm:"default:0" json:"progressValue"`
	// Copied from the task at creation so later task edits never change
	// in-flight progress targets
	ProgressTarget float64 `gorm:"default:0" json:"progressTarget"`

	PointsAwarded int `gorm:"default:0" json:"pointsAwarded"`
	// Explicit crediting guard: flipped by the same conditional update that
	// commits the transition, so retried approvals cannot double-credit
	PointsAdded bool `gorm:"default:false" json:"-"`

	VoucherCode  string  `json:"voucherCode,omitempty"`
	VoucherValue float64 `json:"voucherValue,omitempty"`

	EarnedAt   *time.Time `gorm:"index" json:"earnedAt"`
	RedeemedAt *time.Time `json:"redeemedAt"`
	IssuedBy   string     `gorm:"type:text" json:"issuedBy,omitempty"`
	TenantID   string     `gorm:"index;type:text" json:"tenantId"`
	Metadata   JSONMap    `gorm:"type:text" json:"metadata"`

	VerificationRequired bool               `gorm:"default:false;index" json:"verificationRequired"`
	VerificationStatus   VerificationStatus `gorm:"type:text;default:'';index" json:"verificationStatus"`
	VerifiedBy           *string            `gorm:"type:text" json:"verifiedBy"`
	VerifiedAt           *time.Time         `json:"verifiedAt"`
	RejectionReason      string             `json:"rejectionReason,omitempty"`

	Reward  Reward            `gorm:"foreignKey:RewardID" json:"reward,omitempty"`
	User    User              `gorm:"foreignKey:UserID" json:"-"`
	History []ActivityHistory `gorm:"foreignKey:ActivityID" json:"history,omitempty"`
}

func (Activity) TableName() string {
	return "activities"
}

func (a *Activity) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}

// Completed reports whether the activity is past the point where evaluation
// can move it.
func (a *Activity) Completed() bool {
	return a.Status == ActivityEarned || a.Status == ActivityRedeemed || a.Status == ActivityExpired
}

// ActivityHistory is the append-only audit trail; entries are written on
// every transition and never updated.
type ActivityHistory struct {
	ID         string    `gorm:"primaryKey;type:text" json:"id"`
	ActivityID string    `gorm:"index;type:text;not null" json:"activityId"`
	Action     string    `gorm:"not null" json:"action"`
	Value      float64   `json:"value"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"timestamp"`
}

func (ActivityHistory) TableName() string {
	return "activity_history"
}

func (h *ActivityHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	return
}

// History actions
const (
	HistoryCreated              = "created"
	HistoryProgress             = "progress"
	HistoryEarned               = "earned"
	HistoryRedeemed             = "redeemed"
	HistoryExpired              = "expired"
	HistoryVerificationPending  = "verification_pending"
	HistoryVerificationApproved = "verification_approved"
	HistoryVerificationRejected = "verification_rejected"
	HistoryBadgeAwarded         = "badge_awarded"
	HistoryManualIssue          = "manual_issue"
)
