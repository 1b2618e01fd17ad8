package view

import (
	"github.com/hitoshi/nutriapp/internal/model"
	"github.com/hitoshi/nutriapp/internal/nutrition"
)

// fieldLabels はフォーム項目の表示名。
var fieldLabels = map[string]string{
	"username":                 "Username",
	"password":                 "Password",
	"email":                    "Email",
	"full_name":                "Full Name",
	"confirm":                  "Confirmation",
	"log_date":                 "Date",
	"food":                     "Food Item",
	"meal_type":                "Meal Type",
	"age":                      "Age",
	"gender":                   "Gender",
	"height_cm":                "Height (cm)",
	"weight_kg":                "Weight (kg)",
	"chronic_disease":          "Chronic Disease",
	"cholesterol_level":        "Cholesterol Level (mg/dL)",
	"blood_sugar_level":        "Blood Sugar Level (mg/dL)",
	"blood_pressure_systolic":  "Blood Pressure Systolic (mmHg)",
	"blood_pressure_diastolic": "Blood Pressure Diastolic (mmHg)",
	"daily_steps":              "Daily Steps",
	"exercise_frequency":       "Exercise Frequency (days/week)",
	"sleep_hours":              "Sleep Hours",
	"alcohol_consumption":      "Alcohol Consumption",
	"smoking_habit":            "Smoking Habit",
	"dietary_habits":           "Dietary Habits",
	"preferred_cuisine":        "Preferred Cuisine",
	"food_aversions":           "Food Aversions",
	"allergies":                "Allergies",
	"genetic_risk_factor":      "Genetic Risk Factor",
	"calorie_intake":           "Calorie Intake (kcal)",
	"protein_intake":           "Protein Intake (g)",
	"fat_intake":               "Fat Intake (g)",
	"carbohydrate_intake":      "Carbohydrate Intake (g)",
}

// nutrientInputLabels は食事記録フォームの栄養素入力欄の表示名。
var nutrientInputLabels = map[model.Nutrient]string{
	model.NutrientCalories:           "Calories",
	model.NutrientCarbs:              "Carbs (g)",
	model.NutrientProtein:            "Protein (g)",
	model.NutrientFat:                "Fat (g)",
	model.NutrientSugar:              "Sugar (g)",
	model.NutrientSodium:             "Sodium (mg)",
	model.NutrientPotassium:          "Potassium (mg)",
	model.NutrientFiber:              "Fiber (g)",
	model.NutrientIron:               "Iron (mg)",
	model.NutrientCalcium:            "Calcium (mg)",
	model.NutrientCholesterol:        "Cholesterol (mg)",
	model.NutrientVitaminA:           "Vitamin A (IU)",
	model.NutrientVitaminC:           "Vitamin C (mg)",
	model.NutrientSaturatedFat:       "Saturated Fat (g)",
	model.NutrientTransFat:           "Trans Fat (g)",
	model.NutrientPolyunsaturatedFat: "Polyunsaturated Fat (g)",
	model.NutrientMonounsaturatedFat: "Monounsaturated Fat (g)",
}

// FieldLabel はフォーム項目名の表示名を返す。
func FieldLabel(name string) string {
	if l, ok := fieldLabels[name]; ok {
		return l
	}
	if l, ok := nutrientInputLabels[model.Nutrient(name)]; ok {
		return l
	}
	return nutrition.DisplayName(name)
}
