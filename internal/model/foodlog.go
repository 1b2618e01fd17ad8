package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MealType は食事区分を表す。
type MealType int

// 食事区分
const (
	MealUnknown MealType = iota
	MealBreakfast
	MealLunch
	MealDinner
	MealSnack
)

// MealTypes はフォームで選択可能な食事区分。
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// mealTypeLabels は食事区分の表示名。バックエンドにもこの値を送る。
var mealTypeLabels = map[MealType]string{
	MealBreakfast: "Breakfast",
	MealLunch:     "Lunch",
	MealDinner:    "Dinner",
	MealSnack:     "Snack",
}

// MealTypeLabel は食事区分の表示名を返す。
func MealTypeLabel(m MealType) string {
	return mealTypeLabels[m]
}

// ParseMealType は大文字小文字を区別せずに食事区分を解釈する。
func ParseMealType(s string) (MealType, bool) {
	s = strings.TrimSpace(s)
	for m, label := range mealTypeLabels {
		if strings.EqualFold(label, s) {
			return m, true
		}
	}
	return MealUnknown, false
}

// LogID は食事記録の識別子。バックエンドは数値または文字列で返す。
type LogID string

// UnmarshalJSON は数値と文字列の両方を受け付ける。
func (id *LogID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = LogID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid food log id: %s", string(data))
	}
	*id = LogID(n.String())
	return nil
}

// FoodLogEntry は1件の食事記録を表す。
type FoodLogEntry struct {
	ID        LogID
	LogDate   string
	Food      string
	MealType  string
	UserID    string
	Nutrients map[Nutrient]OptFloat
}

// Nutrient は指定栄養素の値を返す。
func (e *FoodLogEntry) Nutrient(n Nutrient) OptFloat {
	if e.Nutrients == nil {
		return OptFloat{}
	}
	return e.Nutrients[n]
}

// UnmarshalJSON はバックエンドのフラットなJSONから食事記録を読み取る。
// 栄養素は既知のキーのみを取り込み、数値に変換できない値は欠損とする。
func (e *FoodLogEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = FoodLogEntry{Nutrients: make(map[Nutrient]OptFloat, len(AllNutrients))}

	if v, ok := raw["id"]; ok {
		if err := json.Unmarshal(v, &e.ID); err != nil {
			return err
		}
	}
	e.LogDate = rawString(raw["log_date"])
	e.Food = rawString(raw["food"])
	e.MealType = rawString(raw["meal_type"])
	e.UserID = rawString(raw["user_id"])

	for _, n := range AllNutrients {
		v, ok := raw[string(n)]
		if !ok {
			continue
		}
		var f OptFloat
		if err := json.Unmarshal(v, &f); err != nil {
			return err
		}
		e.Nutrients[n] = f
	}
	return nil
}

// MarshalJSON はバックエンドが受け付けるフラットなJSONを書き出す。
// 欠損した栄養素は0として送る。
func (e FoodLogEntry) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(AllNutrients)+5)
	if e.ID != "" {
		out["id"] = string(e.ID)
	}
	out["log_date"] = e.LogDate
	out["food"] = e.Food
	out["meal_type"] = e.MealType
	if e.UserID != "" {
		out["user_id"] = e.UserID
	}
	for _, n := range AllNutrients {
		out[string(n)] = e.Nutrient(n).Value
	}
	return json.Marshal(out)
}

// rawString はJSON値を文字列として取り出す。文字列以外はJSON表現のまま返す。
func rawString(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	trimmed := strings.TrimSpace(string(v))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}
