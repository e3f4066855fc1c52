package seeds

import (
	"log"

	"github.com/dan404cipher/alumini-accel-sub000/internal/database"
	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
)

func SeedRewards() {
	log.Println("Seeding rewards...")

	var superDonorBadge, mentorBadge models.Badge
	database.DB.Where("name = ?", "Super Donor").First(&superDonorBadge)
	database.DB.Where("name = ?", "Mentor").First(&mentorBadge)

	rewards := []models.Reward{
		{
			Name:        "Super Donor",
			Description: "Donate a lifetime total of $10,000.",
			Category:    "giving",
			Type:        models.RewardTypeBadge,
			Tasks: []models.RewardTask{
				{
					Title:      "Donate $10,000 in total",
					ActionType: models.ActionDonation,
					Metric:     models.MetricAmount,
					Target:     10000,
					Points:     50,
					BadgeID:    idPtr(superDonorBadge.ID),
				},
			},
		},
		{
			Name:        "Community Mentor",
			Description: "Guide three fellow alumni through a mentorship.",
			Category:    "mentorship",
			Type:        models.RewardTypePoints,
			Tasks: []models.RewardTask{
				{
					Title:      "Complete your first mentorship",
					ActionType: models.ActionMentorship,
					Metric:     models.MetricCount,
					Target:     1,
					Points:     25,
					BadgeID:    idPtr(mentorBadge.ID),
				},
				{
					Title:                "Complete three mentorships",
					ActionType:           models.ActionMentorship,
					Metric:               models.MetricCount,
					Target:               3,
					Points:               100,
					RequiresVerification: true,
					DisplayOrder:         1,
				},
			},
		},
		{
			Name:            "Event Champion",
			Description:     "Attend ten alumni events and earn a campus store voucher.",
			Category:        "events",
			Type:            models.RewardTypeVoucher,
			VoucherTemplate: "EVENTS-{CODE}",
			VoucherValue:    25,
			Tasks: []models.RewardTask{
				{
					Title:      "Attend 10 events",
					ActionType: models.ActionEvent,
					Metric:     models.MetricCount,
					Target:     10,
					Points:     75,
				},
			},
		},
		{
			Name:        "Distinguished Service",
			Description: "Awarded by staff for exceptional contributions to the network.",
			Category:    "recognition",
			Type:        models.RewardTypePerk,
			Points:      200,
			// Zero tasks: issued manually by staff
		},
	}

	for i := range rewards {
		rewards[i].IsActive = true
		var existing models.Reward
		if err := database.DB.Where("name = ?", rewards[i].Name).First(&existing).Error; err == nil {
			continue
		}
		if err := database.DB.Create(&rewards[i]).Error; err != nil {
			log.Printf("Failed to seed reward %q: %v", rewards[i].Name, err)
		}
	}
}

func idPtr(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
