package services

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"kolayfit/models"

	"gorm.io/datatypes"
)

func item(cal, protein, carbs, fat float64) models.FoodItem {
	return models.FoodItem{
		Name: "test",
		TotalNutrition: models.NutritionTotals{
			Calories: cal, Protein: protein, Carbs: carbs, Fat: fat,
		},
	}
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil)
	if got != (models.NutritionTotals{}) {
		t.Errorf("Aggregate(nil) = %+v, want zero totals", got)
	}
}

func TestAggregateRounding(t *testing.T) {
	// 100.3 + 100.4 = 200.7 kcal. Summed raw then rounded once: 201.
	// Rounding each item first would give 100 + 100 = 200.
	items := []models.FoodItem{
		item(100.3, 10.25, 20.33, 5.55),
		item(100.4, 10.24, 20.33, 5.54),
	}
	got := Aggregate(items)

	if got.Calories != 201 {
		t.Errorf("Calories = %v, want 201", got.Calories)
	}
	if got.Protein != 20.5 {
		t.Errorf("Protein = %v, want 20.5", got.Protein)
	}
	if got.Carbs != 40.7 {
		t.Errorf("Carbs = %v, want 40.7", got.Carbs)
	}
	if got.Fat != 11.1 {
		t.Errorf("Fat = %v, want 11.1", got.Fat)
	}
}

func TestAggregateSodiumWholeUnits(t *testing.T) {
	items := []models.FoodItem{
		{TotalNutrition: models.NutritionTotals{Sodium: 120.4}},
		{TotalNutrition: models.NutritionTotals{Sodium: 80.3}},
	}
	if got := Aggregate(items).Sodium; got != 201 {
		t.Errorf("Sodium = %v, want 201", got)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	items := []models.FoodItem{
		item(250.33, 12.15, 30.05, 8.88),
		item(410.67, 25.55, 45.45, 18.01),
		item(99.99, 3.33, 10.1, 1.11),
	}
	reversed := []models.FoodItem{items[2], items[1], items[0]}

	if a, b := Aggregate(items), Aggregate(reversed); a != b {
		t.Errorf("order changed the totals: %+v vs %+v", a, b)
	}
}

func logRow(t *testing.T, items ...models.FoodItem) models.MealLog {
	t.Helper()
	raw, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("marshal items: %v", err)
	}
	return models.MealLog{FoodItems: datatypes.JSON(raw)}
}

func TestTotalsFromLogsDeleteEqualsNeverExisted(t *testing.T) {
	breakfast := logRow(t, item(100.3, 10.26, 20, 5))
	lunch := logRow(t, item(100.3, 10.24, 20, 5))
	snack := logRow(t, item(100.3, 10.26, 20, 5))

	full, err := totalsFromLogs([]models.MealLog{breakfast, lunch, snack})
	if err != nil {
		t.Fatalf("totalsFromLogs() error = %v", err)
	}
	deleted, err := totalsFromLogs([]models.MealLog{lunch})
	if err != nil {
		t.Fatalf("totalsFromLogs() error = %v", err)
	}
	afterDelete, err := totalsFromLogs([]models.MealLog{breakfast, snack})
	if err != nil {
		t.Fatalf("totalsFromLogs() error = %v", err)
	}

	// The day with lunch deleted must read exactly like a day where lunch
	// never existed.
	neverExisted := Aggregate([]models.FoodItem{
		item(100.3, 10.26, 20, 5),
		item(100.3, 10.26, 20, 5),
	})
	if afterDelete != neverExisted {
		t.Errorf("after delete = %+v, never existed = %+v", afterDelete, neverExisted)
	}

	// Subtracting the deleted log's rounded totals would give a different
	// (wrong) answer: 30.8 - 10.2 = 20.6 g protein versus the recomputed 20.5.
	naive := full.Protein - deleted.Protein
	if math.Abs(naive-afterDelete.Protein) < 1e-9 {
		t.Fatal("fixture does not separate recompute from subtraction; adjust values")
	}
	if afterDelete.Protein != 20.5 {
		t.Errorf("recomputed protein = %v, want 20.5", afterDelete.Protein)
	}
}

func TestTotalsFromLogsCorruptItems(t *testing.T) {
	bad := models.MealLog{FoodItems: datatypes.JSON([]byte(`{not json`))}
	if _, err := totalsFromLogs([]models.MealLog{bad}); err == nil {
		t.Error("expected error for corrupt food_items")
	}
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("TRT", 3*60*60)
	ts := time.Date(2026, 8, 29, 23, 45, 12, 999, loc)
	want := time.Date(2026, 8, 29, 0, 0, 0, 0, loc)
	if got := Day(ts); !got.Equal(want) {
		t.Errorf("Day() = %v, want %v", got, want)
	}
}
