package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	apperrors "github.com/dan404cipher/alumini-accel-sub000/pkg/errors"
)

func TestAddPoints_Accumulates(t *testing.T) {
	env := setupTestDB(t)
	user := env.createUser(t, "acc-1", "Accumulator")

	totals, err := env.points.AddPoints(user.ID, 120)
	assert.NoError(t, err)
	assert.Equal(t, 120, totals.TotalPoints)

	totals, err = env.points.AddPoints(user.ID, 80)
	assert.NoError(t, err)
	assert.Equal(t, 200, totals.TotalPoints)

	// Zero is a valid no-op credit
	totals, err = env.points.AddPoints(user.ID, 0)
	assert.NoError(t, err)
	assert.Equal(t, 200, totals.TotalPoints)
}

func TestAddPoints_RejectsNegativeDelta(t *testing.T) {
	env := setupTestDB(t)
	user := env.createUser(t, "acc-2", "No Debits")
	env.points.AddPoints(user.ID, 50)

	_, err := env.points.AddPoints(user.ID, -10)
	var appErr *apperrors.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)

	totals, _ := env.points.GetTotals(user.ID)
	assert.Equal(t, 50, totals.TotalPoints)
}

func TestAddPoints_UnknownUser(t *testing.T) {
	env := setupTestDB(t)
	_, err := env.points.AddPoints("ghost", 10)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTierBands(t *testing.T) {
	env := setupTestDB(t)
	user := env.createUser(t, "tier-1", "Climber")

	totals, _ := env.points.GetTotals(user.ID)
	assert.Equal(t, models.TierBronze, totals.Tier)

	// Threshold boundaries are inclusive on the upper band
	env.points.AddPoints(user.ID, 499)
	totals, _ = env.points.GetTotals(user.ID)
	assert.Equal(t, models.TierBronze, totals.Tier)

	env.points.AddPoints(user.ID, 1)
	totals, _ = env.points.GetTotals(user.ID)
	assert.Equal(t, models.TierSilver, totals.Tier)

	env.points.AddPoints(user.ID, 1500)
	totals, _ = env.points.GetTotals(user.ID)
	assert.Equal(t, models.TierGold, totals.Tier)

	env.points.AddPoints(user.ID, 3000)
	totals, _ = env.points.GetTotals(user.ID)
	assert.Equal(t, models.TierPlatinum, totals.Tier)
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, models.TierBronze, models.TierFor(0))
	assert.Equal(t, models.TierBronze, models.TierFor(499))
	assert.Equal(t, models.TierSilver, models.TierFor(500))
	assert.Equal(t, models.TierSilver, models.TierFor(1999))
	assert.Equal(t, models.TierGold, models.TierFor(2000))
	assert.Equal(t, models.TierGold, models.TierFor(4999))
	assert.Equal(t, models.TierPlatinum, models.TierFor(5000))
	assert.Equal(t, models.TierPlatinum, models.TierFor(100000))
}
