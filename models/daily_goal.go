package models

import (
	"gorm.io/gorm"
)

// DailyGoal holds each user's daily energy and macro targets, recomputed
// whenever the diet profile changes.
type DailyGoal struct {
	gorm.Model
	UserID   uint    `gorm:"index;not null" json:"user_id"`
	Calories float64 `json:"calories"` // kcal
	Protein  float64 `json:"protein"`  // g
	Carbs    float64 `json:"carbs"`    // g
	Fat      float64 `json:"fat"`      // g
}
