package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RewardType string

const (
	RewardTypeBadge   RewardType = "BADGE"
	RewardTypeVoucher RewardType = "VOUCHER"
	RewardTypePoints  RewardType = "POINTS"
	RewardTypePerk    RewardType = "PERK"
)

// ActionType categorizes the domain event a task measures. The metric
// registry keeps one source per action type.
type ActionType string

const (
	ActionEvent      ActionType = "EVENT"
	ActionDonation   ActionType = "DONATION"
	ActionMentorship ActionType = "MENTORSHIP"
	ActionJob        ActionType = "JOB"
	ActionReferral   ActionType = "REFERRAL"
	ActionEngagement ActionType = "ENGAGEMENT"
	ActionCustom     ActionType = "CUSTOM"
)

type MetricKind string

const (
	MetricCount    MetricKind = "COUNT"
	MetricAmount   MetricKind = "AMOUNT"
	MetricDuration MetricKind = "DURATION"
)

// Reward is an achievement definition alumni can work toward. Once
// activities reference it, only non-breaking metadata edits are allowed and
// removal is a soft-deactivate via IsActive.
type Reward struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name            string     `gorm:"not null" json:"name"`
	Description     string     `json:"description"`
	Category        string     `gorm:"index" json:"category"`
	Type            RewardType `gorm:"type:text;default:'POINTS'" json:"type"`
	Points          int        `gorm:"default:0" json:"points"`
	VoucherTemplate string     `json:"voucherTemplate"`
	VoucherValue    float64    `json:"voucherValue"`
	BadgeID         *string    `gorm:"type:text" json:"badgeId"`
	Tags            StringList `gorm:"type:text" json:"tags"`

	// Eligibility allow-lists; an empty list means no restriction on
	// that dimension
	EligibleRoles       StringList `gorm:"type:text" json:"eligibleRoles"`
	EligibleDepartments StringList `gorm:"type:text" json:"eligibleDepartments"`
	EligibleGradYears   IntList    `gorm:"type:text" json:"eligibleGradYears"`
	EligiblePrograms    StringList `gorm:"type:text" json:"eligiblePrograms"`

	// Empty tenant scope means the reward is global
	TenantID string `gorm:"index;type:text" json:"tenantId"`

	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
	IsActive bool       `gorm:"default:true" json:"isActive"`

	CreatedBy string       `gorm:"type:text" json:"createdBy"`
	Tasks     []RewardTask `gorm:"foreignKey:RewardID" json:"tasks"`
}

func (Reward) TableName() string {
	return "rewards"
}

func (r *Reward) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

// WindowContains reports whether the reward's active window contains t.
// Rewards with no window are always in window.
func (r *Reward) WindowContains(t time.Time) bool {
	if r.StartsAt != nil && t.Before(*r.StartsAt) {
		return false
	}
	if r.EndsAt != nil && t.After(*r.EndsAt) {
		return false
	}
	return true
}

// AvailableTo checks the tenant scope and eligibility allow-lists against a
// user profile.
func (r *Reward) AvailableTo(u *User) bool {
	if r.TenantID != "" && r.TenantID != u.TenantID {
		return false
	}
	if len(r.EligibleRoles) > 0 && !r.EligibleRoles.Contains(string(u.Role)) {
		return false
	}
	if len(r.EligibleDepartments) > 0 && !r.EligibleDepartments.Contains(u.Department) {
		return false
	}
	if len(r.EligibleGradYears) > 0 && !r.EligibleGradYears.Contains(u.GraduationYear) {
		return false
	}
	if len(r.EligiblePrograms) > 0 && !r.EligiblePrograms.Contains(u.Program) {
		return false
	}
	return true
}

// RewardTask is one measurable sub-goal within a reward. A reward may carry
// zero tasks (direct staff award) or an ordered list of them.
type RewardTask struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	RewardID string `gorm:"index;type:text;not null" json:"rewardId"`

	Title            string     `gorm:"not null" json:"title"`
	ActionType       ActionType `gorm:"type:text;not null" json:"actionType"`
	Metric           MetricKind `gorm:"type:text;default:'COUNT'" json:"metric"`
	MetricDescriptor string     `json:"metricDescriptor"` // free text passed to the metric source
	Target           float64    `gorm:"default:0" json:"target"`
	Points           int        `gorm:"default:0" json:"points"`
	BadgeID          *string    `gorm:"type:text" json:"badgeId"`

	IsAutomated          bool `gorm:"default:true" json:"isAutomated"`
	RequiresVerification bool `gorm:"default:false" json:"requiresVerification"`
	DisplayOrder         int  `gorm:"default:0" json:"displayOrder"`
}

func (RewardTask) TableName() string {
	return "reward_tasks"
}

func (t *RewardTask) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}
