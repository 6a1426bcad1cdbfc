package utils

import (
	"math"
	"testing"

	"kolayfit/models"
)

func TestBMR(t *testing.T) {
	tests := []struct {
		name     string
		gender   models.Gender
		weightKg float64
		heightCm int
		age      int
		want     float64
	}{
		{"male", models.GenderMale, 80, 180, 25, 1805},
		{"female", models.GenderFemale, 55, 160, 40, 1189},
		{"male 70kg", models.GenderMale, 70, 175, 30, 1648.75},
		// Anything that is not male uses the female constant.
		{"other uses female constant", models.GenderOther, 70, 175, 30, 1482.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BMR(tt.gender, tt.weightKg, tt.heightCm, tt.age)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("BMR() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeDailyGoals(t *testing.T) {
	tests := []struct {
		name    string
		profile models.DietProfile
		want    models.DailyGoal
	}{
		{
			name: "male moderately active maintain",
			profile: models.DietProfile{
				Age: 30, Gender: models.GenderMale, HeightCm: 175, WeightKg: 70,
				ActivityLevel: models.ActivityModeratelyActive,
				Goal:          models.GoalMaintainWeight,
			},
			// 1648.75 * 1.55 = 2555.5625 -> 2556
			want: models.DailyGoal{Calories: 2556, Protein: 192, Carbs: 256, Fat: 85},
		},
		{
			name: "female sedentary losing weight",
			profile: models.DietProfile{
				Age: 25, Gender: models.GenderFemale, HeightCm: 165, WeightKg: 60,
				ActivityLevel: models.ActivitySedentary,
				Goal:          models.GoalLoseWeight,
			},
			// 1345.25 * 1.2 - 500 = 1114.3 -> 1114
			want: models.DailyGoal{Calories: 1114, Protein: 84, Carbs: 111, Fat: 37},
		},
		{
			name: "unknown activity level falls back to sedentary",
			profile: models.DietProfile{
				Age: 25, Gender: models.GenderFemale, HeightCm: 165, WeightKg: 60,
				ActivityLevel: "super_active",
				Goal:          models.GoalLoseWeight,
			},
			want: models.DailyGoal{Calories: 1114, Protein: 84, Carbs: 111, Fat: 37},
		},
		{
			name:    "empty profile gets defaults",
			profile: models.DietProfile{},
			want: models.DailyGoal{
				Calories: DefaultCalorieGoal,
				Protein:  DefaultProteinGoal,
				Carbs:    DefaultCarbsGoal,
				Fat:      DefaultFatGoal,
			},
		},
		{
			name: "missing weight gets defaults",
			profile: models.DietProfile{
				Age: 30, Gender: models.GenderMale, HeightCm: 175,
				ActivityLevel: models.ActivityVeryActive,
				Goal:          models.GoalGainWeight,
			},
			want: models.DailyGoal{
				Calories: DefaultCalorieGoal,
				Protein:  DefaultProteinGoal,
				Carbs:    DefaultCarbsGoal,
				Fat:      DefaultFatGoal,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDailyGoals(&tt.profile)
			if got != tt.want {
				t.Errorf("ComputeDailyGoals() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeDailyGoalsDeterministic(t *testing.T) {
	p := models.DietProfile{
		Age: 45, Gender: models.GenderMale, HeightCm: 182, WeightKg: 90,
		ActivityLevel: models.ActivityVeryActive,
		Goal:          models.GoalGainWeight,
	}
	first := ComputeDailyGoals(&p)
	for i := 0; i < 10; i++ {
		if got := ComputeDailyGoals(&p); got != first {
			t.Fatalf("run %d: ComputeDailyGoals() = %+v, want %+v", i, got, first)
		}
	}
}

func TestCalculateBMI(t *testing.T) {
	bmi, err := CalculateBMI(175, 70)
	if err != nil {
		t.Fatalf("CalculateBMI() error = %v", err)
	}
	if math.Abs(bmi-22.857) > 0.01 {
		t.Errorf("CalculateBMI() = %v, want ~22.86", bmi)
	}

	if _, err := CalculateBMI(90, 70); err == nil {
		t.Error("expected error for out-of-range height")
	}
	if _, err := CalculateBMI(175, 0); err == nil {
		t.Error("expected error for zero weight")
	}
}

func TestBMICategory(t *testing.T) {
	tests := []struct {
		bmi  float64
		want string
	}{
		{17.0, "Zayıf"},
		{18.5, "Normal"},
		{24.9, "Normal"},
		{25.0, "Fazla Kilolu"},
		{30.0, "Obez"},
	}
	for _, tt := range tests {
		if got := BMICategory(tt.bmi); got != tt.want {
			t.Errorf("BMICategory(%v) = %q, want %q", tt.bmi, got, tt.want)
		}
	}
}
