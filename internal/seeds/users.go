package seeds

import (
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/dan404cipher/alumini-accel-sub000/internal/database"
	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
	"github.com/dan404cipher/alumini-accel-sub000/pkg/utils"
)

func SeedUsers() {
	log.Println("Seeding demo users...")

	users := []models.User{
		{
			Name:       "Ava Administrator",
			Email:      "admin@alumni.example",
			Role:       models.RoleAdmin,
			Department: "Advancement",
			Password:   "admin1234",
		},
		{
			Name:       "Sam Staffer",
			Email:      "staff@alumni.example",
			Role:       models.RoleStaff,
			Department: "Alumni Relations",
			Password:   "staff1234",
		},
		{
			Name:           "Grace Graduate",
			Email:          "grace@alumni.example",
			Role:           models.RoleAlumni,
			Department:     "Engineering",
			GraduationYear: 2019,
			Program:        "Computer Science",
			Password:       "grace1234",
		},
	}

	for _, user := range users {
		var existing models.User
		if err := database.DB.Where("email = ?", user.Email).First(&existing).Error; err == nil {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Failed to hash password for %s: %v", user.Email, err)
			continue
		}
		user.ID = utils.GenerateID()
		user.Password = string(hash)
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Failed to seed user %s: %v", user.Email, err)
		}
	}
}
