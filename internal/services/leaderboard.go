package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/dan404cipher/alumini-accel-sub000/internal/database"
	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	apperrors "github.com/dan404cipher/alumini-accel-sub000/pkg/errors"
)

type LeaderboardEntry struct {
	Rank        int         `json:"rank"`
	UserID      string      `json:"userId"`
	Name        string      `json:"name"`
	Department  string      `json:"department"`
	Points      int         `json:"points"`
	Tier        models.Tier `json:"tier"`
	BadgeCount  int64       `json:"badgeCount"`
	EarnedCount int64       `json:"earnedCount"`
}

type DepartmentEntry struct {
	Rank          int     `json:"rank"`
	Department    string  `json:"department"`
	MemberCount   int64   `json:"memberCount"`
	TotalPoints   int     `json:"totalPoints"`
	AveragePoints float64 `json:"averagePoints"`
}

type LeaderboardFilters struct {
	TenantID   string
	Department string
	Period     string // "", "month" or "year"
	Limit      int
}

// In-memory cache: filter key -> {Entries, Expiry}
type cachedBoard struct {
	Entries   []LeaderboardEntry
	ExpiresAt time.Time
}

var (
	boardCache = make(map[string]cachedBoard)
	boardMutex sync.RWMutex
	boardTTL   = 10 * time.Second
)

func invalidateLeaderboardMemCache() {
	boardMutex.Lock()
	defer boardMutex.Unlock()
	boardCache = make(map[string]cachedBoard)
}

// SetLeaderboardCacheTTL overrides how long computed boards are served from
// cache. Called once at startup from config.
func SetLeaderboardCacheTTL(d time.Duration) {
	boardMutex.Lock()
	defer boardMutex.Unlock()
	boardTTL = d
}

// LeaderboardService is the read side over the accumulator and the activity
// ledger. Lifetime rankings come from users.total_points; windowed rankings
// sum points from activities earned inside the window. The two can disagree
// and both views are intentional.
type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// PointsLeaderboard ranks users by points. Deterministic order: points
// descending, then user id ascending, so pagination is stable across calls.
func (s *LeaderboardService) PointsLeaderboard(f LeaderboardFilters) ([]LeaderboardEntry, error) {
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 25
	}

	cacheKey := fmt.Sprintf("leaderboard:points:%s:%s:%s:%d", f.TenantID, f.Department, f.Period, f.Limit)

	boardMutex.RLock()
	if cached, ok := boardCache[cacheKey]; ok && time.Now().Before(cached.ExpiresAt) {
		boardMutex.RUnlock()
		return cached.Entries, nil
	}
	boardMutex.RUnlock()

	var entries []LeaderboardEntry
	if found, err := database.CacheGet(cacheKey, &entries); err == nil && found {
		return entries, nil
	}

	var err error
	if f.Period == "" {
		entries, err = s.lifetimeBoard(f)
	} else {
		entries, err = s.windowBoard(f)
	}
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].Rank = i + 1
	}

	boardMutex.Lock()
	boardCache[cacheKey] = cachedBoard{Entries: entries, ExpiresAt: time.Now().Add(boardTTL)}
	boardMutex.Unlock()
	database.CacheSet(cacheKey, entries, boardTTL)

	return entries, nil
}

func (s *LeaderboardService) lifetimeBoard(f LeaderboardFilters) ([]LeaderboardEntry, error) {
	var users []models.User
	query := s.DB.Model(&models.User{}).Where("total_points > 0")
	if f.TenantID != "" {
		query = query.Where("tenant_id = ?", f.TenantID)
	}
	if f.Department != "" {
		query = query.Where("department = ?", f.Department)
	}
	if err := query.Order("total_points DESC, id ASC").Limit(f.Limit).Find(&users).Error; err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		var badgeCount, earnedCount int64
		s.DB.Model(&models.UserBadge{}).Where("user_id = ?", u.ID).Count(&badgeCount)
		s.DB.Model(&models.Activity{}).
			Where("user_id = ? AND status IN ?", u.ID,
				[]models.ActivityStatus{models.ActivityEarned, models.ActivityRedeemed}).
			Count(&earnedCount)
		entries = append(entries, LeaderboardEntry{
			UserID:      u.ID,
			Name:        u.Name,
			Department:  u.Department,
			Points:      u.TotalPoints,
			Tier:        u.Tier(),
			BadgeCount:  badgeCount,
			EarnedCount: earnedCount,
		})
	}
	return entries, nil
}

func (s *LeaderboardService) windowBoard(f LeaderboardFilters) ([]LeaderboardEntry, error) {
	start, err := periodStart(f.Period, time.Now())
	if err != nil {
		return nil, err
	}

	type row struct {
		UserID string
		Points int
		Earned int64
	}
	var rows []row
	query := s.DB.Model(&models.Activity{}).
		Select("activities.user_id AS user_id, SUM(activities.points_awarded) AS points, COUNT(*) AS earned").
		Joins("JOIN users ON users.id = activities.user_id").
		Where("activities.points_awarded > 0 AND activities.earned_at >= ?", start)
	if f.TenantID != "" {
		query = query.Where("activities.tenant_id = ?", f.TenantID)
	}
	if f.Department != "" {
		query = query.Where("users.department = ?", f.Department)
	}
	if err := query.Group("activities.user_id").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		var u models.User
		if err := s.DB.Select("id", "name", "department", "total_points").First(&u, "id = ?", r.UserID).Error; err != nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			UserID:      r.UserID,
			Name:        u.Name,
			Department:  u.Department,
			Points:      r.Points,
			Tier:        u.Tier(),
			EarnedCount: r.Earned,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > f.Limit {
		entries = entries[:f.Limit]
	}
	return entries, nil
}

// DepartmentLeaderboard groups users by department with total and average
// points. Same tie-break discipline: totals descending, name ascending.
func (s *LeaderboardService) DepartmentLeaderboard(tenantID string) ([]DepartmentEntry, error) {
	type row struct {
		Department string
		Members    int64
		Total      int
	}
	var rows []row
	query := s.DB.Model(&models.User{}).
		Select("department, COUNT(*) AS members, SUM(total_points) AS total").
		Where("department <> ''")
	if tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}
	if err := query.Group("department").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]DepartmentEntry, 0, len(rows))
	for _, r := range rows {
		avg := 0.0
		if r.Members > 0 {
			avg = float64(r.Total) / float64(r.Members)
		}
		entries = append(entries, DepartmentEntry{
			Department:    r.Department,
			MemberCount:   r.Members,
			TotalPoints:   r.Total,
			AveragePoints: avg,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].Department < entries[j].Department
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func periodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case "month":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	case "year":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	default:
		return time.Time{}, apperrors.BadRequest("Period must be 'month' or 'year'")
	}
}
