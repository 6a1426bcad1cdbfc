package services

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"kolayfit/models"
	"kolayfit/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MealLogService struct {
	db *gorm.DB
}

func NewMealLogService(db *gorm.DB) *MealLogService {
	return &MealLogService{db: db}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Aggregate sums nutrition across food items. Calories and sodium round to
// whole units (kcal / mg), macro grams to one decimal. Summation happens on
// the raw values and rounding once at the end, so item order cannot change
// the result.
func Aggregate(items []models.FoodItem) models.NutritionTotals {
	var t models.NutritionTotals
	for _, it := range items {
		t.Calories += it.TotalNutrition.Calories
		t.Protein += it.TotalNutrition.Protein
		t.Carbs += it.TotalNutrition.Carbs
		t.Fat += it.TotalNutrition.Fat
		t.Fiber += it.TotalNutrition.Fiber
		t.Sugar += it.TotalNutrition.Sugar
		t.Sodium += it.TotalNutrition.Sodium
	}
	t.Calories = math.Round(t.Calories)
	t.Protein = round1(t.Protein)
	t.Carbs = round1(t.Carbs)
	t.Fat = round1(t.Fat)
	t.Fiber = round1(t.Fiber)
	t.Sugar = round1(t.Sugar)
	t.Sodium = math.Round(t.Sodium)
	return t
}

// Day truncates a timestamp to its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SaveMealLog persists one confirmed meal. All-or-nothing: if the photo
// upload or the insert fails, nothing is stored and the caller's in-memory
// state survives for a retry.
func (s *MealLogService) SaveMealLog(userID uint, date time.Time, mealType models.MealType, items []models.FoodItem, photoData string) (*models.MealLog, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("meal log requires at least one food item")
	}

	photoURL := ""
	if photoData != "" {
		url, err := utils.UploadMealPhoto(photoData, fmt.Sprintf("user-%d", userID))
		if err != nil {
			return nil, fmt.Errorf("failed to upload meal photo: %w", err)
		}
		photoURL = url
	}

	foodJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode food items: %w", err)
	}

	totals := Aggregate(items)
	log := &models.MealLog{
		UserID:        userID,
		Date:          Day(date),
		MealType:      string(mealType),
		FoodItems:     datatypes.JSON(foodJSON),
		TotalCalories: totals.Calories,
		TotalProtein:  totals.Protein,
		TotalCarbs:    totals.Carbs,
		TotalFat:      totals.Fat,
		TotalFiber:    totals.Fiber,
		TotalSugar:    totals.Sugar,
		TotalSodium:   totals.Sodium,
		PhotoURL:      photoURL,
	}
	if err := s.db.Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

func (s *MealLogService) ListMealLogsByDate(userID uint, date time.Time) ([]models.MealLog, error) {
	var logs []models.MealLog
	err := s.db.
		Where("user_id = ? AND date = ?", userID, Day(date)).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

func (s *MealLogService) GetMealLog(userID, logID uint) (*models.MealLog, error) {
	var log models.MealLog
	err := s.db.
		Where("id = ? AND user_id = ?", logID, userID).
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (s *MealLogService) DeleteMealLog(userID, logID uint) error {
	res := s.db.
		Where("id = ? AND user_id = ?", logID, userID).
		Delete(&models.MealLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// totalsFromLogs recomputes a day from the individual food items of its
// logs. Deletions never subtract from a running total; a full recompute is
// the only way to keep rounding drift out.
func totalsFromLogs(logs []models.MealLog) (models.NutritionTotals, error) {
	var all []models.FoodItem
	for i := range logs {
		items, err := logs[i].Items()
		if err != nil {
			return models.NutritionTotals{}, fmt.Errorf("corrupt food_items on meal log %d: %w", logs[i].ID, err)
		}
		all = append(all, items...)
	}
	return Aggregate(all), nil
}

// DailyTotals recomputes the day from scratch out of the individual food
// items of every surviving log.
func (s *MealLogService) DailyTotals(userID uint, date time.Time) (models.NutritionTotals, error) {
	logs, err := s.ListMealLogsByDate(userID, date)
	if err != nil {
		return models.NutritionTotals{}, err
	}
	return totalsFromLogs(logs)
}
