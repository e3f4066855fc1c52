package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeBadgeAwarded         NotificationType = "BADGE_AWARDED"
	NotificationTypeRewardEarned         NotificationType = "REWARD_EARNED"
	NotificationTypeVerificationResolved NotificationType = "VERIFICATION_RESOLVED"
	NotificationTypeSystem               NotificationType = "SYSTEM"
)

// Notification is the best-effort outbound record; failure to write one never
// rolls back the ledger change it announces.
type Notification struct {
	ID         string           `gorm:"primaryKey;type:text" json:"id"`
	UserID     string           `gorm:"index;type:text;not null" json:"userId"`
	Type       NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	BadgeID    *string          `gorm:"index;type:text" json:"badgeId,omitempty"`
	ActivityID *string          `gorm:"index;type:text" json:"activityId,omitempty"`
	Message    string           `gorm:"type:text" json:"message"`
	IsRead     bool             `gorm:"default:false" json:"isRead"`
	CreatedAt  time.Time        `json:"createdAt"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return
}
