package view

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hitoshi/nutriapp/internal/model"
)

// SignInForm はサインインフォームの入力。
type SignInForm struct {
	Username string
	Password string
	Next     string
}

// DecodeSignInForm はフォーム値からSignInFormを生成する。
func DecodeSignInForm(vals url.Values) SignInForm {
	return SignInForm{
		Username: strings.TrimSpace(vals.Get("username")),
		Password: vals.Get("password"),
		Next:     vals.Get("next"),
	}
}

// SignUpForm はアカウント作成フォームの入力。
type SignUpForm struct {
	Email    string `form:"email" validate:"required,email,max=255"`
	Password string `form:"password" validate:"required,min=8,max=40"`
	FullName string `form:"full_name" validate:"omitempty,max=255"`
}

// DecodeSignUpForm はフォーム値からSignUpFormを生成する。
func DecodeSignUpForm(vals url.Values) SignUpForm {
	return SignUpForm{
		Email:    strings.TrimSpace(vals.Get("email")),
		Password: vals.Get("password"),
		FullName: strings.TrimSpace(vals.Get("full_name")),
	}
}

// ProfileForm はプロフィールフォームの入力。
// Createは新規登録（POST）か更新（PATCH）かを表す。
type ProfileForm struct {
	Create  bool
	Profile model.UserProfile
	Errors  []model.FieldError
}

// DecodeProfileForm はフォーム値からProfileFormを生成する。
// 数値として解釈できない項目はErrorsに記録する。
func DecodeProfileForm(vals url.Values) ProfileForm {
	p := formParser{vals: vals}
	prof := model.UserProfile{
		Age:                    p.int("age"),
		Gender:                 p.str("gender"),
		HeightCm:               p.float("height_cm"),
		WeightKg:               p.float("weight_kg"),
		ChronicDisease:         p.str("chronic_disease"),
		CholesterolLevel:       p.float("cholesterol_level"),
		BloodSugarLevel:        p.float("blood_sugar_level"),
		BloodPressureSystolic:  p.int("blood_pressure_systolic"),
		BloodPressureDiastolic: p.int("blood_pressure_diastolic"),
		DailySteps:             p.int("daily_steps"),
		ExerciseFrequency:      p.int("exercise_frequency"),
		SleepHours:             p.float("sleep_hours"),
		AlcoholConsumption:     p.str("alcohol_consumption"),
		SmokingHabit:           p.str("smoking_habit"),
		DietaryHabits:          p.str("dietary_habits"),
		PreferredCuisine:       p.str("preferred_cuisine"),
		FoodAversions:          p.str("food_aversions"),
		Allergies:              p.str("allergies"),
		GeneticRiskFactor:      p.str("genetic_risk_factor"),
		CalorieIntake:          p.float("calorie_intake"),
		ProteinIntake:          p.float("protein_intake"),
		FatIntake:              p.float("fat_intake"),
		CarbohydrateIntake:     p.float("carbohydrate_intake"),
	}
	return ProfileForm{
		Create:  vals.Get("mode") == "create",
		Profile: prof,
		Errors:  p.errs,
	}
}

// FoodLogForm は食事記録フォームの入力。
type FoodLogForm struct {
	Date      string                     `form:"log_date" validate:"required,datetime=2006-01-02"`
	Food      string                     `form:"food"`
	MealType  string                     `form:"meal_type" validate:"oneof=Breakfast Lunch Dinner Snack"`
	Nutrients map[model.Nutrient]float64 `form:"nutrients" validate:"dive,gte=0"`
	Errors    []model.FieldError         `validate:"-"`
}

// DecodeFoodLogForm はフォーム値からFoodLogFormを生成する。
// 栄養素の入力欄が空の場合は0とする。
func DecodeFoodLogForm(vals url.Values) FoodLogForm {
	p := formParser{vals: vals, blankIsZero: true}
	f := FoodLogForm{
		Date:      strings.TrimSpace(vals.Get("log_date")),
		Food:      vals.Get("food"),
		MealType:  strings.TrimSpace(vals.Get("meal_type")),
		Nutrients: make(map[model.Nutrient]float64, len(model.AllNutrients)),
	}
	for _, n := range model.AllNutrients {
		f.Nutrients[n] = p.float(string(n))
	}
	f.Errors = p.errs
	return f
}

// newFoodLogForm は空の食事記録フォームを生成する。
func newFoodLogForm(today time.Time) FoodLogForm {
	f := FoodLogForm{
		Date:      today.Format(time.DateOnly),
		MealType:  model.MealTypeLabel(model.MealBreakfast),
		Nutrients: make(map[model.Nutrient]float64, len(model.AllNutrients)),
	}
	for _, n := range model.AllNutrients {
		f.Nutrients[n] = 0
	}
	return f
}

// DeleteAccountForm はアカウント削除フォームの入力。
type DeleteAccountForm struct {
	Password string
	Confirm  bool
}

// DecodeDeleteAccountForm はフォーム値からDeleteAccountFormを生成する。
func DecodeDeleteAccountForm(vals url.Values) DeleteAccountForm {
	confirm, _ := strconv.ParseBool(vals.Get("confirm"))
	if vals.Get("confirm") == "on" {
		confirm = true
	}
	return DeleteAccountForm{Password: vals.Get("password"), Confirm: confirm}
}

// formParser はフォーム値を型変換し、失敗した項目を記録する。
type formParser struct {
	vals        url.Values
	blankIsZero bool
	errs        []model.FieldError
}

func (p *formParser) str(name string) string {
	return strings.TrimSpace(p.vals.Get(name))
}

func (p *formParser) int(name string) int {
	s := p.str(name)
	if s == "" && p.blankIsZero {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.fail(name, "must be a whole number")
		return 0
	}
	return v
}

func (p *formParser) float(name string) float64 {
	s := p.str(name)
	if s == "" && p.blankIsZero {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		p.fail(name, "must be a number")
		return 0
	}
	return v
}

func (p *formParser) fail(name, msg string) {
	p.errs = append(p.errs, model.FieldError{Field: FieldLabel(name), Message: msg})
}

// formValidator はvalidateタグによる入力検証を行う。
type formValidator struct {
	v *validator.Validate
}

func newFormValidator() *formValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		}
		return name
	})
	return &formValidator{v: v}
}

// check は構造体を検証し、違反した項目を表示名付きで返す。
func (f *formValidator) check(s any) []model.FieldError {
	err := f.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []model.FieldError{{Field: "Form", Message: err.Error()}}
	}
	out := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, model.FieldError{Field: FieldLabel(fieldKey(fe.Field())), Message: fieldMessage(fe)})
	}
	return out
}

// fieldKey は"nutrients[calories]"のような名前から要素のキーを取り出す。
func fieldKey(name string) string {
	if i := strings.Index(name, "["); i >= 0 && strings.HasSuffix(name, "]") {
		return name[i+1 : len(name)-1]
	}
	return name
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be " + fe.Param() + " or greater"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a date (YYYY-MM-DD)"
	default:
		return "is invalid"
	}
}
