package services

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	"github.com/dan404cipher/alumini-accel-sub000/pkg/logger"
)

// Sweeper expires in-flight activities whose parent reward's active window
// has closed. EARNED and REDEEMED records keep their points; only records
// that never completed can expire.
type Sweeper struct {
	DB *gorm.DB
}

func NewSweeper(db *gorm.DB) *Sweeper {
	return &Sweeper{DB: db}
}

// SweepExpired marks overdue activities EXPIRED and returns how many moved.
func (s *Sweeper) SweepExpired(now time.Time) (int64, error) {
	var stale []models.Activity
	err := s.DB.Joins("JOIN rewards ON rewards.id = activities.reward_id").
		Where("activities.status IN ?", []models.ActivityStatus{models.ActivityPending, models.ActivityInProgress}).
		Where("rewards.ends_at IS NOT NULL AND rewards.ends_at < ?", now).
		Find(&stale).Error
	if err != nil {
		return 0, err
	}

	var swept int64
	for i := range stale {
		res := s.DB.Model(&models.Activity{}).
			Where("id = ? AND status IN ?", stale[i].ID,
				[]models.ActivityStatus{models.ActivityPending, models.ActivityInProgress}).
			UpdateColumn("status", models.ActivityExpired)
		if res.Error != nil {
			return swept, res.Error
		}
		if res.RowsAffected > 0 {
			swept++
			s.DB.Create(&models.ActivityHistory{
				ActivityID: stale[i].ID,
				Action:     models.HistoryExpired,
				Value:      stale[i].ProgressValue,
				Note:       "Reward window closed",
			})
		}
	}
	if swept > 0 {
		logger.Info().Int64("count", swept).Msg("Expired stale activities")
	}
	return swept, nil
}

// StartScheduler runs the sweep on an interval until the process exits.
func (s *Sweeper) StartScheduler(interval time.Duration) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create expiry scheduler")
		return
	}
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := s.SweepExpired(time.Now()); err != nil {
				logger.Error().Err(err).Msg("Expiry sweep failed")
			}
		}),
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to register expiry sweep job")
	}
}
