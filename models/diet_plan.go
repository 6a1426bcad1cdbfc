package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DietMeal is one AI-generated meal inside a plan day. Title, description
// and instructions come back from the generator in Turkish.
type DietMeal struct {
	MealType      MealType `json:"mealType"`
	TitleTr       string   `json:"titleTr"`
	DescriptionTr string   `json:"descriptionTr"`
	Calories      float64  `json:"calories"`
	Protein       float64  `json:"protein"`
	Carbs         float64  `json:"carbs"`
	Fat           float64  `json:"fat"`
	Instructions  string   `json:"instructions"`
}

// DietDay holds one day of the 7-day plan. DayIndex is 1-based
// (1 = Pazartesi). TotalCalories is always recomputed from Meals, never
// patched incrementally.
type DietDay struct {
	DayIndex      int        `json:"dayIndex"`
	DayName       string     `json:"dayName"`
	TotalCalories float64    `json:"totalCalories"`
	Meals         []DietMeal `json:"meals"`
	Notes         string     `json:"notes,omitempty"`
}

type DietPlanData struct {
	Days []DietDay `json:"days"`
}

// DietPlan stores the whole 7×meals document as one JSON column. At most
// one plan per user has IsActive set; regeneration deactivates the old row
// and inserts a new one.
type DietPlan struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	PlanData  datatypes.JSON `gorm:"not null" json:"plan_data"`
	StartDate time.Time      `gorm:"type:date" json:"start_date"`
	IsActive  bool           `gorm:"index;default:false" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
}

func (p *DietPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Data decodes the plan_data JSON column.
func (p *DietPlan) Data() (*DietPlanData, error) {
	var data DietPlanData
	if err := json.Unmarshal(p.PlanData, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
