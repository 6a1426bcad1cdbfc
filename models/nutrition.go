package models

// NutritionTotals carries every tracked nutrient. Calories in kcal, sodium
// in mg, everything else in grams.
type NutritionTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
	Sodium   float64 `json:"sodium"`
}

// FoodItem is one detected or manually entered food. TotalNutrition starts
// out as NutritionPer100g scaled by the estimated amount, but once the user
// corrects it during review the two are allowed to diverge: a manual
// correction is taken as authoritative and never re-derived.
type FoodItem struct {
	Name             string          `json:"name"`
	EstimatedAmount  string          `json:"estimatedAmount"` // e.g. "150 g", "1 porsiyon"
	NutritionPer100g NutritionTotals `json:"nutritionPer100g"`
	TotalNutrition   NutritionTotals `json:"totalNutrition"`
}

// AnalysisResult is what the recognizer returns for one submission. It is
// transient: only the confirmed food items ever reach the database.
// Confidence applies to the result as a whole, on a 0..1 scale once
// normalized at the workflow boundary.
type AnalysisResult struct {
	DetectedFoods []FoodItem `json:"detectedFoods"`
	Confidence    float64    `json:"confidence"`
	Suggestions   string     `json:"suggestions"`
}
