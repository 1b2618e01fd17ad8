package model

// UserProfile はユーザーの身体情報・生活習慣・食事嗜好・摂取目標を表す。
// バックエンドが所有し、このアプリケーションはスナップショット全体を読み書きする。
// validateタグは入力フォームの許容範囲と一致させる。
type UserProfile struct {
	Age                    int     `json:"age" validate:"min=1,max=120"`
	Gender                 string  `json:"gender" validate:"oneof=Male Female Other"`
	HeightCm               float64 `json:"height_cm" validate:"min=50,max=300"`
	WeightKg               float64 `json:"weight_kg" validate:"min=20,max=500"`
	ChronicDisease         string  `json:"chronic_disease" validate:"oneof='NA' 'Diabetes' 'Heart Disease' 'Hypertension' 'Obesity'"`
	CholesterolLevel       float64 `json:"cholesterol_level" validate:"min=0"`
	BloodSugarLevel        float64 `json:"blood_sugar_level" validate:"min=0"`
	BloodPressureSystolic  int     `json:"blood_pressure_systolic" validate:"min=0"`
	BloodPressureDiastolic int     `json:"blood_pressure_diastolic" validate:"min=0"`
	DailySteps             int     `json:"daily_steps" validate:"min=0"`
	ExerciseFrequency      int     `json:"exercise_frequency" validate:"min=0,max=7"`
	SleepHours             float64 `json:"sleep_hours" validate:"min=0,max=24"`
	AlcoholConsumption     string  `json:"alcohol_consumption" validate:"oneof=No Yes"`
	SmokingHabit           string  `json:"smoking_habit" validate:"oneof=No Yes"`
	DietaryHabits          string  `json:"dietary_habits" validate:"oneof=Regular Keto Vegetarian Vegan"`
	PreferredCuisine       string  `json:"preferred_cuisine" validate:"oneof=Indian Asian Western Mediterranean"`
	FoodAversions          string  `json:"food_aversions" validate:"oneof=NA Spicy Sweet Salty"`
	Allergies              string  `json:"allergies" validate:"oneof='NA' 'Lactose Intolerance' 'Nut Allergy' 'Gluten Intolerance'"`
	GeneticRiskFactor      string  `json:"genetic_risk_factor" validate:"oneof=No Yes"`
	CalorieIntake          float64 `json:"calorie_intake" validate:"min=0"`
	ProteinIntake          float64 `json:"protein_intake" validate:"min=0"`
	FatIntake              float64 `json:"fat_intake" validate:"min=0"`
	CarbohydrateIntake     float64 `json:"carbohydrate_intake" validate:"min=0"`

	// BMI はバックエンドが算出して返す値。送信時は含めない。
	BMI *float64 `json:"bmi,omitempty" validate:"-"`
}

// DefaultUserProfile はプロフィール未登録時のフォーム初期値を返す。
func DefaultUserProfile() UserProfile {
	return UserProfile{
		Age:                    25,
		Gender:                 "Male",
		HeightCm:               170,
		WeightKg:               70,
		ChronicDisease:         "NA",
		CholesterolLevel:       180,
		BloodSugarLevel:        90,
		BloodPressureSystolic:  120,
		BloodPressureDiastolic: 80,
		DailySteps:             5000,
		ExerciseFrequency:      3,
		SleepHours:             7,
		AlcoholConsumption:     "No",
		SmokingHabit:           "No",
		DietaryHabits:          "Regular",
		PreferredCuisine:       "Indian",
		FoodAversions:          "NA",
		Allergies:              "NA",
		GeneticRiskFactor:      "No",
		CalorieIntake:          2000,
		ProteinIntake:          50,
		FatIntake:              70,
		CarbohydrateIntake:     250,
	}
}

// プロフィールの選択肢。フォームのselectとvalidateタグの両方で使う。
var (
	Genders         = []string{"Male", "Female", "Other"}
	ChronicDiseases = []string{"NA", "Diabetes", "Heart Disease", "Hypertension", "Obesity"}
	YesNoOptions    = []string{"No", "Yes"}
	DietaryHabits   = []string{"Regular", "Keto", "Vegetarian", "Vegan"}
	Cuisines        = []string{"Indian", "Asian", "Western", "Mediterranean"}
	FoodAversions   = []string{"NA", "Spicy", "Sweet", "Salty"}
	Allergies       = []string{"NA", "Lactose Intolerance", "Nut Allergy", "Gluten Intolerance"}
)
