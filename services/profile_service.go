package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"kolayfit/models"
	"kolayfit/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProfileService struct {
	db    *gorm.DB
	goals *GoalService
}

func NewProfileService(db *gorm.DB, goals *GoalService) *ProfileService {
	return &ProfileService{db: db, goals: goals}
}

// DietProfileInput mirrors what the onboarding and profile-edit screens
// send. Zero values mean "leave unchanged" for numeric fields.
type DietProfileInput struct {
	Age               int                  `json:"age"`
	Gender            models.Gender        `json:"gender"`
	HeightCm          int                  `json:"height_cm"`
	WeightKg          float64              `json:"weight_kg"`
	Goal              models.WeightGoal    `json:"goal"`
	ActivityLevel     models.ActivityLevel `json:"activity_level"`
	DietType          models.DietType      `json:"diet_type"`
	Allergens         []models.Allergen    `json:"allergens"`
	DislikedFoods     string               `json:"disliked_foods"`
	PreferredCuisines string               `json:"preferred_cuisines"`
}

func validateProfileInput(in *DietProfileInput) error {
	if in.Age != 0 && (in.Age < 10 || in.Age > 100) {
		return fmt.Errorf("age must be between 10 and 100")
	}
	if in.HeightCm != 0 && (in.HeightCm < 100 || in.HeightCm > 250) {
		return fmt.Errorf("height must be between 100 and 250 cm")
	}
	if in.WeightKg != 0 && (in.WeightKg < 30 || in.WeightKg > 300) {
		return fmt.Errorf("weight must be between 30 and 300 kg")
	}
	return nil
}

func (s *ProfileService) GetProfile(userID uint) (*models.DietProfile, error) {
	var profile models.DietProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile applies the input to the user's diet profile and recomputes
// the daily goals, keeping them consistent with the profile at all times.
func (s *ProfileService) UpsertProfile(userID uint, in DietProfileInput) (*models.DietProfile, error) {
	if err := validateProfileInput(&in); err != nil {
		return nil, err
	}

	var profile models.DietProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.DietProfile{UserID: userID, DietType: models.DietNormal}
	} else if err != nil {
		return nil, err
	}

	if in.Age > 0 {
		profile.Age = in.Age
	}
	if in.Gender != "" {
		profile.Gender = in.Gender
	}
	if in.HeightCm > 0 {
		profile.HeightCm = in.HeightCm
	}
	if in.WeightKg > 0 {
		profile.WeightKg = in.WeightKg
	}
	if in.Goal != "" {
		profile.Goal = in.Goal
	}
	if in.ActivityLevel != "" {
		profile.ActivityLevel = in.ActivityLevel
	}
	if in.DietType != "" {
		profile.DietType = in.DietType
	}
	if in.Allergens != nil {
		raw, err := json.Marshal(in.Allergens)
		if err != nil {
			return nil, err
		}
		profile.Allergens = datatypes.JSON(raw)
	}
	if in.DislikedFoods != "" {
		profile.DislikedFoods = in.DislikedFoods
	}
	if in.PreferredCuisines != "" {
		profile.PreferredCuisines = in.PreferredCuisines
	}

	if err := s.db.Save(&profile).Error; err != nil {
		return nil, err
	}
	if _, err := s.goals.RecomputeGoals(userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CompleteOnboarding saves the wizard's answers and marks onboarding seen.
func (s *ProfileService) CompleteOnboarding(userID uint, in DietProfileInput) (*models.DietProfile, error) {
	profile, err := s.UpsertProfile(userID, in)
	if err != nil {
		return nil, err
	}
	if !profile.HasSeenOnboarding {
		profile.HasSeenOnboarding = true
		if err := s.db.Save(profile).Error; err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// Assessment summarizes the profile: BMI, category and the computed goals.
func (s *ProfileService) Assessment(userID uint) (map[string]any, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"profile_complete": profile.HasGoalInputs(),
		"goals":            utils.ComputeDailyGoals(profile),
	}
	if bmi, err := utils.CalculateBMI(float64(profile.HeightCm), profile.WeightKg); err == nil {
		out["bmi"] = bmi
		out["bmi_category"] = utils.BMICategory(bmi)
	}
	return out, nil
}
