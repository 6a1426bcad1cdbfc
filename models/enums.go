package models

// The app historically stored Turkish and English labels interchangeably in
// different tables. Canonical values are the English snake_case ones below;
// the Turkish strings exist only in the label maps, and parsers accept the
// legacy Turkish forms.

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLight            ActivityLevel = "light"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivityExtraActive      ActivityLevel = "extra_active"
)

// Multiplier returns the TDEE activity factor. Only the three canonical
// levels carry their own factor; anything else falls back to sedentary.
func (a ActivityLevel) Multiplier() float64 {
	switch a {
	case ActivitySedentary:
		return 1.2
	case ActivityModeratelyActive:
		return 1.55
	case ActivityVeryActive:
		return 1.725
	default:
		return 1.2
	}
}

var activityLevelLabels = map[ActivityLevel]string{
	ActivitySedentary:        "Çok Düşük (Hareketsiz)",
	ActivityLight:            "Hafif (Haftada 1-3 gün egzersiz)",
	ActivityModeratelyActive: "Orta (Haftada 3-5 gün egzersiz)",
	ActivityVeryActive:       "Yüksek (Haftada 6-7 gün egzersiz)",
	ActivityExtraActive:      "Çok Yüksek (Günde 2 kez egzersiz)",
}

func (a ActivityLevel) Label() string { return activityLevelLabels[a] }

type WeightGoal string

const (
	GoalLoseWeight     WeightGoal = "lose_weight"
	GoalMaintainWeight WeightGoal = "maintain_weight"
	GoalGainWeight     WeightGoal = "gain_weight"
)

// CalorieDelta is added to TDEE: a fixed 500 kcal deficit or surplus.
func (g WeightGoal) CalorieDelta() float64 {
	switch g {
	case GoalLoseWeight:
		return -500
	case GoalGainWeight:
		return 500
	default:
		return 0
	}
}

var weightGoalLabels = map[WeightGoal]string{
	GoalLoseWeight:     "Kilo Vermek",
	GoalGainWeight:     "Kilo Almak",
	GoalMaintainWeight: "Kilomu Korumak",
}

func (g WeightGoal) Label() string { return weightGoalLabels[g] }

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

var mealTypeLabels = map[MealType]string{
	MealBreakfast: "Kahvaltı",
	MealLunch:     "Öğle Yemeği",
	MealDinner:    "Akşam Yemeği",
	MealSnack:     "Ara Öğün",
}

func (m MealType) Label() string { return mealTypeLabels[m] }

func (m MealType) Valid() bool {
	_, ok := mealTypeLabels[m]
	return ok
}

// ParseMealType maps either a canonical value or a legacy Turkish label to
// the enum. Old mobile clients still send "Öğle" for lunch.
func ParseMealType(s string) (MealType, bool) {
	if MealType(s).Valid() {
		return MealType(s), true
	}
	switch s {
	case "Kahvaltı":
		return MealBreakfast, true
	case "Öğle", "Öğle Yemeği":
		return MealLunch, true
	case "Akşam", "Akşam Yemeği":
		return MealDinner, true
	case "Ara Öğün", "Atıştırmalık":
		return MealSnack, true
	}
	return "", false
}

type DietType string

const (
	DietNormal      DietType = "normal"
	DietVegan       DietType = "vegan"
	DietVegetarian  DietType = "vegetarian"
	DietPescatarian DietType = "pescatarian"
	DietLowCarb     DietType = "low_carb"
	DietHighProtein DietType = "high_protein"
	DietGlutenFree  DietType = "gluten_free"
)

var dietTypeLabels = map[DietType]string{
	DietNormal:      "Normal",
	DietVegan:       "Vegan",
	DietVegetarian:  "Vejetaryen",
	DietPescatarian: "Balık Ağırlıklı (Pescetarian)",
	DietLowCarb:     "Düşük Karbonhidrat",
	DietHighProtein: "Yüksek Protein",
	DietGlutenFree:  "Glutensiz",
}

func (d DietType) Label() string { return dietTypeLabels[d] }

type Allergen string

const (
	AllergenDairy     Allergen = "dairy"
	AllergenGluten    Allergen = "gluten"
	AllergenEggs      Allergen = "eggs"
	AllergenNuts      Allergen = "nuts"
	AllergenPeanuts   Allergen = "peanuts"
	AllergenShellfish Allergen = "shellfish"
	AllergenSoy       Allergen = "soy"
	AllergenFish      Allergen = "fish"
	AllergenSesame    Allergen = "sesame"
)

var allergenLabels = map[Allergen]string{
	AllergenDairy:     "Süt Ürünleri",
	AllergenGluten:    "Gluten",
	AllergenEggs:      "Yumurta",
	AllergenNuts:      "Fındık/Ceviz",
	AllergenPeanuts:   "Yer Fıstığı",
	AllergenShellfish: "Kabuklu Deniz Ürünleri",
	AllergenSoy:       "Soya",
	AllergenFish:      "Balık",
	AllergenSesame:    "Susam",
}

func (a Allergen) Label() string { return allergenLabels[a] }

// DayNames indexes Monday=0 through Sunday=6, matching plan dayIndex-1.
var DayNames = [7]string{
	"Pazartesi", "Salı", "Çarşamba", "Perşembe", "Cuma", "Cumartesi", "Pazar",
}
