package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dan404cipher/alumini-accel-sub000/internal/metrics"
	"github.com/dan404cipher/alumini-accel-sub000/internal/services"
	apperrors "github.com/dan404cipher/alumini-accel-sub000/pkg/errors"
	"github.com/dan404cipher/alumini-accel-sub000/pkg/logger"
)

// Handler-level service singletons, wired once at startup (and again per
// test database).
var (
	Points       *services.PointsService
	Badges       *services.BadgeService
	Ledger       *services.LedgerService
	Verification *services.VerificationService
	Leaderboard  *services.LeaderboardService
)

// InitServices builds the service graph on top of the given DB handle.
func InitServices(db *gorm.DB, source metrics.Source) {
	notifier := services.NewNotifier(db)
	Points = services.NewPointsService(db)
	Badges = services.NewBadgeService(db, notifier)
	Ledger = services.NewLedgerService(db, source, Points, Badges, notifier)
	Verification = services.NewVerificationService(db, Points, Ledger, notifier)
	Leaderboard = services.NewLeaderboardService(db)
}

// respondError maps service errors onto HTTP responses. Anything the
// services did not classify is a storage-layer failure and surfaces as a
// retryable 503.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unclassified error")
		appErr = apperrors.Transient("Temporary storage failure, please retry")
	}
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}
