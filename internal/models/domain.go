package models

import "time"

// Collaborator tables. The ledger never touches these directly; only the
// metric sources in internal/metrics read them, and only as aggregates
// ("count of completed donations", "sum donated"). Writes belong to the
// domain services that own each table.

type Donation struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	UserID      string    `gorm:"index;type:text;not null" json:"userId"`
	TenantID    string    `gorm:"index;type:text" json:"tenantId"`
	Amount      float64   `json:"amount"`
	Status      string    `gorm:"index" json:"status"` // PENDING, COMPLETED, REFUNDED
	CompletedAt time.Time `json:"completedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Donation) TableName() string { return "donations" }

type EventAttendance struct {
	ID         string    `gorm:"primaryKey;type:text" json:"id"`
	UserID     string    `gorm:"index;type:text;not null" json:"userId"`
	TenantID   string    `gorm:"index;type:text" json:"tenantId"`
	EventID    string    `gorm:"index;type:text" json:"eventId"`
	AttendedAt time.Time `json:"attendedAt"`
	// Session length in minutes, for duration metrics
	DurationMinutes float64 `json:"durationMinutes"`
}

func (EventAttendance) TableName() string { return "event_attendances" }

type Mentorship struct {
	ID          string     `gorm:"primaryKey;type:text" json:"id"`
	MentorID    string     `gorm:"index;type:text;not null" json:"mentorId"`
	MenteeID    string     `gorm:"index;type:text" json:"menteeId"`
	TenantID    string     `gorm:"index;type:text" json:"tenantId"`
	Status      string     `gorm:"index" json:"status"` // ACTIVE, COMPLETED, CANCELLED
	HoursLogged float64    `json:"hoursLogged"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (Mentorship) TableName() string { return "mentorships" }

type JobPost struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	UserID    string    `gorm:"index;type:text;not null" json:"userId"`
	TenantID  string    `gorm:"index;type:text" json:"tenantId"`
	Status    string    `gorm:"index" json:"status"` // ACTIVE, CLOSED
	CreatedAt time.Time `json:"createdAt"`
}

func (JobPost) TableName() string { return "job_posts" }

type Referral struct {
	ID         string    `gorm:"primaryKey;type:text" json:"id"`
	ReferrerID string    `gorm:"index;type:text;not null" json:"referrerId"`
	TenantID   string    `gorm:"index;type:text" json:"tenantId"`
	Status     string    `gorm:"index" json:"status"` // PENDING, JOINED
	CreatedAt  time.Time `json:"createdAt"`
}

func (Referral) TableName() string { return "referrals" }

// EngagementEvent is the catch-all activity stream (logins, profile updates,
// posts) used by ENGAGEMENT and CUSTOM metrics.
type EngagementEvent struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	UserID    string    `gorm:"index;type:text;not null" json:"userId"`
	TenantID  string    `gorm:"index;type:text" json:"tenantId"`
	Kind      string    `gorm:"index" json:"kind"`
	Value     float64   `gorm:"default:1" json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

func (EngagementEvent) TableName() string { return "engagement_events" }
