package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAlumni Role = "ALUMNI"
	RoleStaff  Role = "STAFF"
	RoleAdmin  Role = "ADMIN"
)

// Tier is a band of cumulative points, derived from the total and never
// stored independently of it.
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

const (
	silverThreshold   = 500
	goldThreshold     = 2000
	platinumThreshold = 5000
)

// TierFor maps a cumulative point total to its tier band.
func TierFor(points int) Tier {
	switch {
	case points >= platinumThreshold:
		return TierPlatinum
	case points >= goldThreshold:
		return TierGold
	case points >= silverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}

type User struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name           string `json:"name"`
	Email          string `gorm:"uniqueIndex" json:"email"`
	Role           Role   `gorm:"type:text;default:'ALUMNI'" json:"role"`
	TenantID       string `gorm:"index;type:text" json:"tenantId"`
	Department     string `gorm:"index" json:"department"`
	GraduationYear int    `json:"graduationYear"`
	Program        string `json:"program"`

	// Accumulator state: only additive updates through PointsService
	TotalPoints int `gorm:"default:0" json:"totalPoints"`

	Password string `json:"-"`
}

// Tier derives the user's tier band from the running total.
func (u *User) Tier() Tier {
	return TierFor(u.TotalPoints)
}

func (User) TableName() string {
	return "users"
}
