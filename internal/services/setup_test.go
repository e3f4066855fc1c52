package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dan404cipher/alumini-accel-sub000/internal/metrics"
	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	"github.com/dan404cipher/alumini-accel-sub000/pkg/logger"
)

// stubMetrics is a scripted metric source keyed by (userID, actionType).
type stubMetrics struct {
	values map[string]float64
	errs   map[string]error
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{
		values: make(map[string]float64),
		errs:   make(map[string]error),
	}
}

func (s *stubMetrics) key(userID string, action models.ActionType) string {
	return userID + ":" + string(action)
}

func (s *stubMetrics) set(userID string, action models.ActionType, value float64) {
	s.values[s.key(userID, action)] = value
}

func (s *stubMetrics) fail(userID string, action models.ActionType, err error) {
	s.errs[s.key(userID, action)] = err
}

func (s *stubMetrics) GetMetric(userID string, action models.ActionType, metric models.MetricKind, descriptor string, tenantID string) (float64, error) {
	if err, ok := s.errs[s.key(userID, action)]; ok {
		return 0, &metrics.SourceError{Action: action, Err: err}
	}
	return s.values[s.key(userID, action)], nil
}

type testEnv struct {
	db       *gorm.DB
	metrics  *stubMetrics
	points   *PointsService
	badges   *BadgeService
	ledger   *LedgerService
	verify   *VerificationService
	board    *LeaderboardService
	sweeper  *Sweeper
	notifier *Notifier
}

var testDBSeq int

// setupTestDB initializes an in-memory SQLite DB and the full service graph.
func setupTestDB(t *testing.T) *testEnv {
	t.Helper()
	logger.Init("test")

	testDBSeq++
	dsn := fmt.Sprintf("file:ledger_test_%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Reward{},
		&models.RewardTask{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Activity{},
		&models.ActivityHistory{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test DB: %v", err)
	}

	// Cached leaderboards from a previous test must not leak into this one
	invalidateLeaderboardMemCache()

	stub := newStubMetrics()
	notifier := NewNotifier(db)
	points := NewPointsService(db)
	badges := NewBadgeService(db, notifier)
	ledger := NewLedgerService(db, stub, points, badges, notifier)

	return &testEnv{
		db:       db,
		metrics:  stub,
		points:   points,
		badges:   badges,
		ledger:   ledger,
		verify:   NewVerificationService(db, points, ledger, notifier),
		board:    NewLeaderboardService(db),
		sweeper:  NewSweeper(db),
		notifier: notifier,
	}
}

func (e *testEnv) createUser(t *testing.T, id, name string) *models.User {
	t.Helper()
	user := models.User{
		ID:    id,
		Name:  name,
		Email: id + "@alumni.example",
		Role:  models.RoleAlumni,
	}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", id, err)
	}
	return &user
}

func (e *testEnv) createReward(t *testing.T, reward *models.Reward) *models.Reward {
	t.Helper()
	if err := e.db.Create(reward).Error; err != nil {
		t.Fatalf("Failed to create reward %q: %v", reward.Name, err)
	}
	return reward
}

func (e *testEnv) createBadge(t *testing.T, badge *models.Badge) *models.Badge {
	t.Helper()
	if err := e.db.Create(badge).Error; err != nil {
		t.Fatalf("Failed to create badge %q: %v", badge.Name, err)
	}
	return badge
}
