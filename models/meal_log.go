package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MealLog is one confirmed meal. Rows are immutable: corrections happen
// before save, during verification; afterwards a log can only be deleted.
// The total_* columns are a denormalized sum of FoodItems.
type MealLog struct {
	gorm.Model
	UserID       uint           `gorm:"index;not null" json:"user_id"`
	Date         time.Time      `gorm:"type:date;index;not null" json:"date"` // calendar day, not timestamp
	MealType     string         `gorm:"size:20;not null" json:"meal_type"`
	FoodItems    datatypes.JSON `gorm:"not null" json:"food_items"`
	TotalCalories float64       `json:"total_calories"`
	TotalProtein  float64       `json:"total_protein"`
	TotalCarbs    float64       `json:"total_carbs"`
	TotalFat      float64       `json:"total_fat"`
	TotalFiber    float64       `json:"total_fiber"`
	TotalSugar    float64       `json:"total_sugar"`
	TotalSodium   float64       `json:"total_sodium"`
	PhotoURL      string        `json:"photo_url,omitempty"`
}

// Items decodes the food_items JSON column.
func (m *MealLog) Items() ([]FoodItem, error) {
	var items []FoodItem
	if len(m.FoodItems) == 0 {
		return items, nil
	}
	err := json.Unmarshal(m.FoodItems, &items)
	return items, err
}
