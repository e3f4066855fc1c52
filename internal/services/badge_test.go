package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	apperrors "github.com/dan404cipher/alumini-accel-sub000/pkg/errors"
)

func TestBadgeClaim_AwardAndIdempotency(t *testing.T) {
	env := setupTestDB(t)
	user := env.createUser(t, "user-1", "User One")
	badge := env.createBadge(t, &models.Badge{Name: "First Gift", IsActive: true})

	awarded, err := env.badges.Claim(badge.ID, user.ID, "first donation")
	assert.NoError(t, err)
	assert.True(t, awarded)

	// Claiming again is a benign no-op, not an error
	awarded, err = env.badges.Claim(badge.ID, user.ID, "first donation")
	assert.NoError(t, err)
	assert.False(t, awarded)

	var fresh models.Badge
	env.db.First(&fresh, "id = ?", badge.ID)
	assert.Equal(t, 1, fresh.CurrentRecipients)

	list, err := env.badges.ListUserBadges(user.ID)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "first donation", list[0].Reason)
}

func TestBadgeClaim_RecipientCap(t *testing.T) {
	env := setupTestDB(t)
	alice := env.createUser(t, "alice", "Alice")
	bob := env.createUser(t, "bob", "Bob")

	max := 1
	badge := env.createBadge(t, &models.Badge{
		Name:          "Founding Member",
		IsRare:        true,
		MaxRecipients: &max,
		IsActive:      true,
	})

	awarded, err := env.badges.Claim(badge.ID, alice.ID, "")
	assert.NoError(t, err)
	assert.True(t, awarded)

	awarded, err = env.badges.Claim(badge.ID, bob.ID, "")
	assert.False(t, awarded)
	assert.True(t, apperrors.IsCapacityExceeded(err))

	// Exactly one holder, counter never overshoots the cap
	var holders int64
	env.db.Model(&models.UserBadge{}).Where("badge_id = ?", badge.ID).Count(&holders)
	assert.Equal(t, int64(1), holders)

	var fresh models.Badge
	env.db.First(&fresh, "id = ?", badge.ID)
	assert.Equal(t, 1, fresh.CurrentRecipients)

	// The losing claim left no partial state; retrying still refuses
	awarded, err = env.badges.Claim(badge.ID, bob.ID, "")
	assert.False(t, awarded)
	assert.True(t, apperrors.IsCapacityExceeded(err))
}

func TestBadgeClaim_InactiveAndMissing(t *testing.T) {
	env := setupTestDB(t)
	user := env.createUser(t, "user-2", "User Two")

	badge := env.createBadge(t, &models.Badge{Name: "Retired", IsActive: true})
	env.db.Model(&models.Badge{}).Where("id = ?", badge.ID).UpdateColumn("is_active", false)

	awarded, err := env.badges.Claim(badge.ID, user.ID, "")
	assert.NoError(t, err)
	assert.False(t, awarded)

	_, err = env.badges.Claim("no-such-badge", user.ID, "")
	assert.True(t, apperrors.IsNotFound(err))
}
