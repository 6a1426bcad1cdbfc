package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"kolayfit/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanGenerator is the remote plan-service boundary.
type PlanGenerator interface {
	GenerateDietPlan(profile *models.DietProfile) (*models.DietPlanData, error)
	ReplaceMeal(profile *models.DietProfile, current models.DietMeal) (*models.DietMeal, error)
}

// DietPlanService drives the profile → plan lifecycle: gated generation,
// confirmed regeneration and single-meal replacement. It also holds the
// pending request of a free user who still has to watch a rewarded ad.
type DietPlanService struct {
	db   *gorm.DB
	gate *AdLimitService
	ai   PlanGenerator

	mu      sync.Mutex
	pending map[uint]*models.DietProfile
}

func NewDietPlanService(db *gorm.DB, gate *AdLimitService, ai PlanGenerator) *DietPlanService {
	return &DietPlanService{
		db:      db,
		gate:    gate,
		ai:      ai,
		pending: make(map[uint]*models.DietProfile),
	}
}

// GenerateOutcome is what a generation attempt produced: a quota refusal,
// a parked request waiting for an ad, or a fresh plan.
type GenerateOutcome struct {
	Quota   *QuotaState     `json:"quota,omitempty"`
	Pending bool            `json:"pending,omitempty"`
	Plan    *models.DietPlan `json:"plan,omitempty"`
}

// GeneratePlan asks the gate first. Only a premium bypass reaches the
// remote service directly; a free user with quota left gets the request
// parked until the ad-completed callback replays it.
func (s *DietPlanService) GeneratePlan(user *models.User, profile *models.DietProfile) (*GenerateOutcome, error) {
	quota, err := s.gate.CheckAdLimit(user, FeatureDietPlan)
	if err != nil {
		return nil, err
	}
	if quota.LimitReached {
		return &GenerateOutcome{Quota: quota}, nil
	}
	if quota.RequiresAd {
		s.mu.Lock()
		s.pending[user.ID] = profile
		s.mu.Unlock()
		return &GenerateOutcome{Quota: quota, Pending: true}, nil
	}

	plan, err := s.generateAndActivate(user.ID, profile)
	if err != nil {
		return nil, err
	}
	return &GenerateOutcome{Quota: quota, Plan: plan}, nil
}

// OnAdCompleted replays the parked request exactly once. Called after the
// rewarded ad finished and the watch was recorded.
func (s *DietPlanService) OnAdCompleted(userID uint) (*models.DietPlan, error) {
	s.mu.Lock()
	profile, ok := s.pending[userID]
	delete(s.pending, userID)
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no pending plan request for this user")
	}
	return s.generateAndActivate(userID, profile)
}

// CancelPending discards the parked request. Nothing was consumed: the ad
// was not completed, so no quota was spent.
func (s *DietPlanService) CancelPending(userID uint) {
	s.mu.Lock()
	delete(s.pending, userID)
	s.mu.Unlock()
}

// generateAndActivate calls the remote service and swaps the active plan in
// one transaction. A remote failure leaves the previous plan untouched.
func (s *DietPlanService) generateAndActivate(userID uint, profile *models.DietProfile) (*models.DietPlan, error) {
	data, err := s.ai.GenerateDietPlan(profile)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan data: %w", err)
	}

	plan := &models.DietPlan{
		UserID:    userID,
		PlanData:  datatypes.JSON(raw),
		StartDate: Day(time.Now()),
		IsActive:  true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.DietPlan{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(plan).Error
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *DietPlanService) GetActivePlan(userID uint) (*models.DietPlan, error) {
	var plan models.DietPlan
	err := s.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// DefaultDayIndex maps today onto the plan's Monday-indexed days: Monday 0
// through Saturday 5, Sunday 6.
func DefaultDayIndex(t time.Time) int {
	weekday := int(t.Weekday())
	if weekday == 0 {
		return 6
	}
	return weekday - 1
}

// applyMealReplacement swaps the matching meal inside one day and recomputes
// that day's calorie total from the full meal list. dayIndex is the plan's
// 1-based index. Pure: operates on the decoded document only.
func applyMealReplacement(data *models.DietPlanData, dayIndex int, mealType models.MealType, newMeal models.DietMeal) (*models.DietDay, error) {
	var day *models.DietDay
	for i := range data.Days {
		if data.Days[i].DayIndex == dayIndex {
			day = &data.Days[i]
			break
		}
	}
	if day == nil {
		return nil, fmt.Errorf("day %d not found in plan", dayIndex)
	}

	mealIdx := -1
	for i := range day.Meals {
		if day.Meals[i].MealType == mealType {
			mealIdx = i
			break
		}
	}
	if mealIdx == -1 {
		return nil, fmt.Errorf("meal %q not found in day %d", mealType, dayIndex)
	}

	day.Meals[mealIdx] = newMeal

	// Always from the full list, never an incremental patch.
	var total float64
	for _, m := range day.Meals {
		total += m.Calories
	}
	day.TotalCalories = total

	return day, nil
}

// ReplaceMealInPlan replaces a single meal of a single day. The other six
// days are untouched; any failure leaves the stored plan exactly as it was.
func (s *DietPlanService) ReplaceMealInPlan(userID uint, planID uuid.UUID, dayIndex int, current models.DietMeal, profile *models.DietProfile) (*models.DietDay, error) {
	var plan models.DietPlan
	if err := s.db.
		Where("id = ? AND user_id = ?", planID, userID).
		First(&plan).Error; err != nil {
		return nil, fmt.Errorf("plan not found")
	}

	data, err := plan.Data()
	if err != nil {
		return nil, fmt.Errorf("corrupt plan data: %w", err)
	}

	newMeal, err := s.ai.ReplaceMeal(profile, current)
	if err != nil {
		return nil, err
	}

	day, err := applyMealReplacement(data, dayIndex, current.MealType, *newMeal)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan data: %w", err)
	}
	if err := s.db.Model(&plan).Update("plan_data", datatypes.JSON(raw)).Error; err != nil {
		return nil, err
	}
	return day, nil
}
