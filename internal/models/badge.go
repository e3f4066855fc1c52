package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Badge is a scarcity-aware achievement marker. CurrentRecipients only moves
// through the registry's conditional claim update, never by direct assignment.
type Badge struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	CriteriaType        ActionType `gorm:"type:text" json:"criteriaType"`
	CriteriaTarget      float64    `gorm:"default:0" json:"criteriaTarget"`
	CriteriaDescription string     `json:"criteriaDescription"`

	IsRare bool `gorm:"default:false" json:"isRare"`
	// nil means unlimited supply
	MaxRecipients     *int `json:"maxRecipients"`
	CurrentRecipients int  `gorm:"default:0" json:"currentRecipients"`

	TenantID string `gorm:"index;type:text" json:"tenantId"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}

func (Badge) TableName() string {
	return "badges"
}

func (b *Badge) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

// UserBadge records one badge held by one user. The composite primary key is
// the at-most-once guard: a badge is earned once per user no matter how many
// times its criteria are re-satisfied.
type UserBadge struct {
	UserID    string    `gorm:"primaryKey;type:text" json:"userId"`
	BadgeID   string    `gorm:"primaryKey;type:text" json:"badgeId"`
	AwardedAt time.Time `json:"awardedAt"`
	Reason    string    `json:"reason"`
	Metadata  JSONMap   `gorm:"type:text" json:"metadata"`

	Badge Badge `gorm:"foreignKey:BadgeID" json:"badge"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}

func (ub *UserBadge) BeforeCreate(tx *gorm.DB) (err error) {
	if ub.AwardedAt.IsZero() {
		ub.AwardedAt = time.Now()
	}
	return
}
