package nutrition

import (
	"strings"
	"unicode"
)

// displayNames は栄養素キーの表示名。
var displayNames = map[string]string{
	"calories":            "Calories (kcal)",
	"protein":             "Protein (g)",
	"fat":                 "Fat (g)",
	"carbs":               "Carbohydrate (g)",
	"fiber":               "Fiber (g)",
	"sugar":               "Sugar (g)",
	"sodium":              "Sodium (g)",
	"potassium":           "Potassium (g)",
	"iron":                "Iron (g)",
	"calcium":             "Calcium (g)",
	"cholesterol":         "Cholesterol (mg)",
	"vitamin_a":           "Vitamin A (IU)",
	"vitamin_c":           "Vitamin C (IU)",
	"saturated_fat":       "Saturated Fat",
	"trans_fat":           "Trans Fat",
	"polyunsaturated_fat": "Polyunsaturated Fat",
	"monounsaturated_fat": "Monounsaturated Fat",
}

// DisplayName は栄養素キーの表示名を返す。
// 未知のキーは"_"を空白に置き換えて各単語の先頭を大文字にする。
func DisplayName(key string) string {
	if name, ok := displayNames[key]; ok {
		return name
	}
	return TitleCase(strings.ReplaceAll(key, "_", " "))
}

// TitleCase は各単語の先頭を大文字、残りを小文字にする。
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
