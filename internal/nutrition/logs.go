package nutrition

import (
	"slices"
	"strings"
	"time"

	"github.com/hitoshi/nutriapp/internal/model"
)

// logDateLayouts はバックエンドが返しうる日付書式。
var logDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseLogDate は食事記録の日付を解釈する。解釈できない場合はfalseを返す。
func ParseLogDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range logDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DatePart は日付の年月日部分（YYYY-MM-DD）を返す。
// 解釈できない場合は元の文字列をそのまま返す。
func DatePart(s string) string {
	if t, ok := ParseLogDate(s); ok {
		return t.Format(time.DateOnly)
	}
	return s
}

// SortLogsDesc は食事記録を日付の新しい順に並べた新しいスライスを返す。
// 同じ日付の順序は保たれ、日付を解釈できない記録は末尾に置く。
func SortLogsDesc(entries []model.FoodLogEntry) []model.FoodLogEntry {
	type keyed struct {
		entry model.FoodLogEntry
		at    time.Time
		ok    bool
	}
	tmp := make([]keyed, len(entries))
	for i, e := range entries {
		at, ok := ParseLogDate(e.LogDate)
		tmp[i] = keyed{entry: e, at: at, ok: ok}
	}
	slices.SortStableFunc(tmp, func(a, b keyed) int {
		switch {
		case a.ok && !b.ok:
			return -1
		case !a.ok && b.ok:
			return 1
		case !a.ok && !b.ok:
			return 0
		}
		return b.at.Compare(a.at)
	})

	out := make([]model.FoodLogEntry, len(tmp))
	for i, k := range tmp {
		out[i] = k.entry
	}
	return out
}

// RoundNutrients は栄養素を小数点以下2桁に丸めた記録のコピーを返す。
func RoundNutrients(e model.FoodLogEntry) model.FoodLogEntry {
	rounded := make(map[model.Nutrient]model.OptFloat, len(e.Nutrients))
	for n, v := range e.Nutrients {
		if v.Valid {
			v.Value = Round(v.Value, 2)
		}
		rounded[n] = v
	}
	e.Nutrients = rounded
	return e
}

// PanelTitle は一覧の折りたたみパネルの見出し「日付 - 食事区分 - 食品名」を返す。
func PanelTitle(e model.FoodLogEntry) string {
	return DatePart(e.LogDate) + " - " + MealLabel(e.MealType) + " - " + e.Food
}

// MealLabel はバックエンドの食事区分を表示名にする。未知の値は先頭だけ大文字にする。
func MealLabel(raw string) string {
	if m, ok := model.ParseMealType(raw); ok {
		return model.MealTypeLabel(m)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	return strings.ToUpper(raw[:1]) + strings.ToLower(raw[1:])
}

// DetailField は詳細パネルの1項目。
type DetailField struct {
	Name  string
	Value string
}

// DetailFields は詳細パネルに表示する栄養素を標準順序で返す。欠損値は表示しない。
func DetailFields(e model.FoodLogEntry) []DetailField {
	fields := make([]DetailField, 0, len(model.AllNutrients))
	for _, n := range model.AllNutrients {
		v := e.Nutrient(n)
		if !v.Valid {
			continue
		}
		fields = append(fields, DetailField{Name: DisplayName(string(n)), Value: FormatNumber(v.Value)})
	}
	return fields
}
