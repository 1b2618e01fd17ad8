package model

// Nutrient は栄養素のキー（バックエンドのJSONフィールド名）を表す。
type Nutrient string

// 栄養素
const (
	NutrientCalories           Nutrient = "calories"
	NutrientCarbs              Nutrient = "carbs"
	NutrientProtein            Nutrient = "protein"
	NutrientFat                Nutrient = "fat"
	NutrientSugar              Nutrient = "sugar"
	NutrientSodium             Nutrient = "sodium"
	NutrientPotassium          Nutrient = "potassium"
	NutrientFiber              Nutrient = "fiber"
	NutrientIron               Nutrient = "iron"
	NutrientCalcium            Nutrient = "calcium"
	NutrientCholesterol        Nutrient = "cholesterol"
	NutrientVitaminA           Nutrient = "vitamin_a"
	NutrientVitaminC           Nutrient = "vitamin_c"
	NutrientSaturatedFat       Nutrient = "saturated_fat"
	NutrientTransFat           Nutrient = "trans_fat"
	NutrientPolyunsaturatedFat Nutrient = "polyunsaturated_fat"
	NutrientMonounsaturatedFat Nutrient = "monounsaturated_fat"
)

// AllNutrients は食事記録フォームと表示で使う栄養素の標準順序。
var AllNutrients = []Nutrient{
	NutrientCalories,
	NutrientCarbs,
	NutrientProtein,
	NutrientFat,
	NutrientSugar,
	NutrientSodium,
	NutrientPotassium,
	NutrientFiber,
	NutrientIron,
	NutrientCalcium,
	NutrientCholesterol,
	NutrientVitaminA,
	NutrientVitaminC,
	NutrientSaturatedFat,
	NutrientTransFat,
	NutrientPolyunsaturatedFat,
	NutrientMonounsaturatedFat,
}

// NutrientSummary は平均摂取量と推奨摂取量を栄養素ごとに保持する。
type NutrientSummary struct {
	Average     map[string]OptFloat `json:"average"`
	Recommended map[string]OptFloat `json:"recommended"`
}
