package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DietProfile drives both goal computation and AI plan generation. Mutated
// only by the onboarding / profile-edit flow.
type DietProfile struct {
	gorm.Model
	UserID            uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Age               int            `json:"age"`       // 10–100
	Gender            Gender         `gorm:"size:10" json:"gender"`
	HeightCm          int            `json:"height_cm"` // 100–250
	WeightKg          float64        `json:"weight_kg"` // 30–300
	Goal              WeightGoal     `gorm:"size:20" json:"goal"`
	ActivityLevel     ActivityLevel  `gorm:"size:20" json:"activity_level"`
	DietType          DietType       `gorm:"size:20;default:normal" json:"diet_type"`
	Allergens         datatypes.JSON `json:"allergens"` // JSON array of Allergen
	DislikedFoods     string         `gorm:"type:text" json:"disliked_foods"`
	PreferredCuisines string         `gorm:"type:text" json:"preferred_cuisines"`
	HasSeenOnboarding bool           `gorm:"default:false" json:"has_seen_onboarding"`
}

// HasGoalInputs reports whether the fields the goal calculator needs are all
// present. Activity level and goal have their own fallbacks and are not
// required here.
func (p *DietProfile) HasGoalInputs() bool {
	if p == nil {
		return false
	}
	return p.Age > 0 && p.Gender != "" && p.HeightCm > 0 && p.WeightKg > 0
}

// AllergenList decodes the allergens JSON column.
func (p *DietProfile) AllergenList() []Allergen {
	var out []Allergen
	if len(p.Allergens) == 0 {
		return out
	}
	_ = json.Unmarshal(p.Allergens, &out)
	return out
}
