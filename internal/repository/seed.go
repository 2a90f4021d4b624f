package repository

import (
	"fmt"
	"time"

	"agri_advisor/internal/model"
	"agri_advisor/internal/utils"
)

// SeedPassword is the password of the seeded officer and admin accounts.
const SeedPassword = "password123"

// Seed account identifiers.
const (
	SeedFarmerPhone  = "+91 9876543210"
	SeedOfficerEmail = "officer@agriculture.kerala.gov.in"
	SeedAdminEmail   = "admin@agriculture.kerala.gov.in"
)

// SeedUsers returns the pre-existing farmer, officer and admin accounts.
func SeedUsers(now time.Time) ([]*model.User, error) {
	hash, err := utils.HashPassword(SeedPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	land, exp := 2.5, 15
	return []*model.User{
		{
			ID:               "1",
			Role:             model.RoleFarmer,
			Phone:            SeedFarmerPhone,
			Name:             "രാജേഷ് കുമാർ",
			Panchayat:        "കൊട്ടയം",
			District:         "കൊട്ടയം",
			PrimaryCrops:     []string{"വാഴ", "റബ്ബർ", "നെല്ല്"},
			LandSize:         &land,
			Experience:       &exp,
			ProfileCompleted: true,
			Locale:           model.LocaleMalayalam,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		{
			ID:               "2",
			Role:             model.RoleOfficer,
			Email:            SeedOfficerEmail,
			PasswordHash:     hash,
			Name:             "Dr. Priya Nair",
			District:         "കൊട്ടയം",
			ProfileCompleted: true,
			Locale:           model.LocaleEnglish,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		{
			ID:               "3",
			Role:             model.RoleAdmin,
			Email:            SeedAdminEmail,
			PasswordHash:     hash,
			Name:             "സുരേഷ് കുമാർ (Block Officer)",
			District:         "എറണാകുളം",
			ProfileCompleted: true,
			Locale:           model.LocaleEnglish,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
	}, nil
}
