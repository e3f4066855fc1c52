package metrics

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
)

// NewRegistry wires the production variants, one per action type, all backed
// by the collaborator tables.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{sources: map[models.ActionType]computer{
		models.ActionDonation:   &donationSource{db: db},
		models.ActionEvent:      &eventSource{db: db},
		models.ActionMentorship: &mentorshipSource{db: db},
		models.ActionJob:        &jobSource{db: db},
		models.ActionReferral:   &referralSource{db: db},
		models.ActionEngagement: &engagementSource{db: db},
		models.ActionCustom:     &engagementSource{db: db},
	}}
}

func tenantScoped(q *gorm.DB, tenantID string) *gorm.DB {
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}
	return q
}

type donationSource struct {
	db *gorm.DB
}

func (s *donationSource) compute(userID string, metric models.MetricKind, _ string, tenantID string) (float64, error) {
	q := tenantScoped(s.db.Model(&models.Donation{}).Where("user_id = ? AND status = ?", userID, "COMPLETED"), tenantID)
	switch metric {
	case models.MetricAmount:
		var total float64
		err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
		return total, err
	default:
		var count int64
		err := q.Count(&count).Error
		return float64(count), err
	}
}

type eventSource struct {
	db *gorm.DB
}

func (s *eventSource) compute(userID string, metric models.MetricKind, _ string, tenantID string) (float64, error) {
	q := tenantScoped(s.db.Model(&models.EventAttendance{}).Where("user_id = ?", userID), tenantID)
	switch metric {
	case models.MetricDuration:
		var minutes float64
		err := q.Select("COALESCE(SUM(duration_minutes), 0)").Scan(&minutes).Error
		return minutes, err
	default:
		var count int64
		err := q.Count(&count).Error
		return float64(count), err
	}
}

type mentorshipSource struct {
	db *gorm.DB
}

func (s *mentorshipSource) compute(userID string, metric models.MetricKind, _ string, tenantID string) (float64, error) {
	q := tenantScoped(s.db.Model(&models.Mentorship{}).
		Where("mentor_id = ? AND status = ?", userID, "COMPLETED"), tenantID)
	switch metric {
	case models.MetricDuration:
		var hours float64
		err := q.Select("COALESCE(SUM(hours_logged), 0)").Scan(&hours).Error
		return hours, err
	default:
		var count int64
		err := q.Count(&count).Error
		return float64(count), err
	}
}

type jobSource struct {
	db *gorm.DB
}

func (s *jobSource) compute(userID string, metric models.MetricKind, _ string, tenantID string) (float64, error) {
	if metric != models.MetricCount {
		return 0, fmt.Errorf("job metrics only support counts, got %s", metric)
	}
	var count int64
	err := tenantScoped(s.db.Model(&models.JobPost{}).
		Where("user_id = ? AND status = ?", userID, "ACTIVE"), tenantID).
		Count(&count).Error
	return float64(count), err
}

type referralSource struct {
	db *gorm.DB
}

func (s *referralSource) compute(userID string, metric models.MetricKind, _ string, tenantID string) (float64, error) {
	if metric != models.MetricCount {
		return 0, fmt.Errorf("referral metrics only support counts, got %s", metric)
	}
	var count int64
	err := tenantScoped(s.db.Model(&models.Referral{}).
		Where("referrer_id = ? AND status = ?", userID, "JOINED"), tenantID).
		Count(&count).Error
	return float64(count), err
}

// engagementSource serves both ENGAGEMENT and CUSTOM action types; the
// descriptor selects the event kind when set.
type engagementSource struct {
	db *gorm.DB
}

func (s *engagementSource) compute(userID string, metric models.MetricKind, descriptor string, tenantID string) (float64, error) {
	q := tenantScoped(s.db.Model(&models.EngagementEvent{}).Where("user_id = ?", userID), tenantID)
	if descriptor != "" {
		q = q.Where("kind = ?", descriptor)
	}
	switch metric {
	case models.MetricAmount, models.MetricDuration:
		var total float64
		err := q.Select("COALESCE(SUM(value), 0)").Scan(&total).Error
		return total, err
	default:
		var count int64
		err := q.Count(&count).Error
		return float64(count), err
	}
}
