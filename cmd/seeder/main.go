package main

import (
	"log"

	"github.com/dan404cipher/alumini-accel-sub000/internal/config"
	"github.com/dan404cipher/alumini-accel-sub000/internal/database"
	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	"github.com/dan404cipher/alumini-accel-sub000/internal/seeds"
)

func main() {
	config.LoadConfig()
	database.Connect()

	// Ensure tables exist before seeding into a fresh database
	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.Reward{},
		&models.RewardTask{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Activity{},
		&models.ActivityHistory{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("Failed to migrate before seeding: %v", err)
	}

	seeds.SeedUsers()
	seeds.SeedBadges()
	seeds.SeedRewards()

	log.Println("Seeding complete")
}
