package services

import (
	"errors"
	"time"

	"kolayfit/models"
	"kolayfit/utils"

	"gorm.io/gorm"
)

type GoalService struct {
	db    *gorm.DB
	meals *MealLogService
}

func NewGoalService(db *gorm.DB, meals *MealLogService) *GoalService {
	return &GoalService{db: db, meals: meals}
}

// RecomputeGoals derives targets from the current diet profile and upserts
// the stored row. Called whenever the profile changes; a user without a
// usable profile gets the default goal set.
func (s *GoalService) RecomputeGoals(userID uint) (*models.DailyGoal, error) {
	var profile models.DietProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	computed := utils.ComputeDailyGoals(&profile)

	var goal models.DailyGoal
	err = s.db.Where("user_id = ?", userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		goal = models.DailyGoal{UserID: userID}
	} else if err != nil {
		return nil, err
	}

	goal.Calories = computed.Calories
	goal.Protein = computed.Protein
	goal.Carbs = computed.Carbs
	goal.Fat = computed.Fat
	if err := s.db.Save(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// GetGoals returns the stored goals, computing and storing them first if
// the user has none yet.
func (s *GoalService) GetGoals(userID uint) (*models.DailyGoal, error) {
	var goal models.DailyGoal
	err := s.db.Where("user_id = ?", userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.RecomputeGoals(userID)
	}
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// progressReport pairs the day's consumed totals with the targets. Percent
// is uncapped: eating past the goal reads as more than 100.
func progressReport(goal *models.DailyGoal, totals models.NutritionTotals) map[string]any {
	pct := func(consumed, target float64) float64 {
		if target <= 0 {
			return 0
		}
		return consumed / target * 100
	}

	return map[string]any{
		"calories": map[string]float64{"consumed": totals.Calories, "goal": goal.Calories, "percent": pct(totals.Calories, goal.Calories)},
		"protein":  map[string]float64{"consumed": totals.Protein, "goal": goal.Protein, "percent": pct(totals.Protein, goal.Protein)},
		"carbs":    map[string]float64{"consumed": totals.Carbs, "goal": goal.Carbs, "percent": pct(totals.Carbs, goal.Carbs)},
		"fat":      map[string]float64{"consumed": totals.Fat, "goal": goal.Fat, "percent": pct(totals.Fat, goal.Fat)},
		"fiber":    map[string]float64{"consumed": totals.Fiber},
		"sugar":    map[string]float64{"consumed": totals.Sugar},
		"sodium":   map[string]float64{"consumed": totals.Sodium},
	}
}

// GetGoalsAndProgress pairs the targets with the day's consumed totals.
func (s *GoalService) GetGoalsAndProgress(userID uint, date time.Time) (*models.DailyGoal, map[string]any, error) {
	goal, err := s.GetGoals(userID)
	if err != nil {
		return nil, nil, err
	}

	totals, err := s.meals.DailyTotals(userID, date)
	if err != nil {
		return goal, nil, err
	}

	return goal, progressReport(goal, totals), nil
}
