package utils

import (
	"math"

	"kolayfit/models"
)

// Defaults used whenever the profile is missing any of age, gender, height
// or weight. The app shows these to brand-new users before onboarding.
const (
	DefaultCalorieGoal = 2000
	DefaultProteinGoal = 125
	DefaultCarbsGoal   = 200
	DefaultFatGoal     = 67
)

// BMR computes basal metabolic rate with the Mifflin-St Jeor equation.
// Any gender other than male uses the female constant, matching the
// behavior of the original profile flow.
func BMR(gender models.Gender, weightKg float64, heightCm, age int) float64 {
	bmr := 10*weightKg + 6.25*float64(heightCm) - 5*float64(age)
	if gender == models.GenderMale {
		return bmr + 5
	}
	return bmr - 161
}

// ComputeDailyGoals derives the calorie target and a 30/40/30 macro split
// from a diet profile. Pure and total: an incomplete profile yields the
// documented defaults instead of garbage arithmetic. Caller fills UserID.
func ComputeDailyGoals(p *models.DietProfile) models.DailyGoal {
	if !p.HasGoalInputs() {
		return models.DailyGoal{
			Calories: DefaultCalorieGoal,
			Protein:  DefaultProteinGoal,
			Carbs:    DefaultCarbsGoal,
			Fat:      DefaultFatGoal,
		}
	}

	bmr := BMR(p.Gender, p.WeightKg, p.HeightCm, p.Age)
	calories := math.Round(bmr*p.ActivityLevel.Multiplier() + p.Goal.CalorieDelta())

	// 30% protein, 40% carbs, 30% fat; protein and carbs at 4 kcal/g,
	// fat at 9 kcal/g.
	return models.DailyGoal{
		Calories: calories,
		Protein:  math.Round(calories * 0.30 / 4),
		Carbs:    math.Round(calories * 0.40 / 4),
		Fat:      math.Round(calories * 0.30 / 9),
	}
}
