package seeds

import (
	"log"

	"github.com/dan404cipher/alumini-accel-sub000/internal/database"
	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
)

func intPtr(n int) *int { return &n }

func SeedBadges() {
	log.Println("Seeding badges...")

	badges := []models.Badge{
		{
			Name:                "First Gift",
			Description:         "Made your first donation to the alumni fund.",
			Icon:                "heart",
			CriteriaType:        models.ActionDonation,
			CriteriaTarget:      1,
			CriteriaDescription: "Complete one donation",
			IsActive:            true,
		},
		{
			Name:                "Super Donor",
			Description:         "Donated a lifetime total of $10,000.",
			Icon:                "gem",
			CriteriaType:        models.ActionDonation,
			CriteriaTarget:      10000,
			CriteriaDescription: "Lifetime donation amount",
			IsRare:              true,
			IsActive:            true,
		},
		{
			Name:                "Mentor",
			Description:         "Completed your first mentorship.",
			Icon:                "users",
			CriteriaType:        models.ActionMentorship,
			CriteriaTarget:      1,
			CriteriaDescription: "Complete one mentorship",
			IsActive:            true,
		},
		{
			Name:                "Regular",
			Description:         "Attended 5 alumni events.",
			Icon:                "calendar-check",
			CriteriaType:        models.ActionEvent,
			CriteriaTarget:      5,
			CriteriaDescription: "Events attended",
			IsActive:            true,
		},
		{
			Name:                "Founding Member",
			Description:         "One of the first hundred supporters of the new alumni network.",
			Icon:                "crown",
			CriteriaType:        models.ActionEngagement,
			CriteriaTarget:      1,
			CriteriaDescription: "Join during the launch window",
			IsRare:              true,
			MaxRecipients:       intPtr(100),
			IsActive:            true,
		},
		{
			Name:                "Talent Scout",
			Description:         "Posted 3 active job openings for fellow alumni.",
			Icon:                "briefcase",
			CriteriaType:        models.ActionJob,
			CriteriaTarget:      3,
			CriteriaDescription: "Active job posts",
			IsActive:            true,
		},
	}

	for _, badge := range badges {
		var existing models.Badge
		if err := database.DB.Where("name = ?", badge.Name).First(&existing).Error; err == nil {
			continue
		}
		if err := database.DB.Create(&badge).Error; err != nil {
			log.Printf("Failed to seed badge %q: %v", badge.Name, err)
		}
	}
}
