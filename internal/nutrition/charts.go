package nutrition

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/hitoshi/nutriapp/internal/model"
)

// AverageCalories は記録のカロリー平均を小数点以下1桁に丸めて返す。
// カロリーが欠損した記録は平均に含めない。
func AverageCalories(entries []model.FoodLogEntry) (float64, bool) {
	var sum float64
	var n int
	for _, e := range entries {
		if v := e.Nutrient(model.NutrientCalories); v.Valid {
			sum += v.Value
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return Round(sum/float64(n), 1), true
}

// DailyTotal は1日分のカロリー合計。
type DailyTotal struct {
	Day      string
	Calories float64
}

// DailyCalories は日ごとのカロリー合計を日付の昇順で返す。日付を解釈できない記録は除く。
func DailyCalories(entries []model.FoodLogEntry) []DailyTotal {
	totals := make(map[string]float64)
	var days []string
	for _, e := range entries {
		at, ok := ParseLogDate(e.LogDate)
		if !ok {
			continue
		}
		day := at.Format(time.DateOnly)
		if _, seen := totals[day]; !seen {
			days = append(days, day)
		}
		totals[day] += e.Nutrient(model.NutrientCalories).Value
	}

	// YYYY-MM-DDは文字列順がそのまま日付順になる
	sort.Strings(days)
	out := make([]DailyTotal, 0, len(days))
	for _, day := range days {
		out = append(out, DailyTotal{Day: day, Calories: Round(totals[day], 2)})
	}
	return out
}

// Macros は三大栄養素の合計(g)。
type Macros struct {
	Protein float64
	Fat     float64
	Carbs   float64
}

// MacroTotals はたんぱく質・脂質・炭水化物の合計を返す。
func MacroTotals(entries []model.FoodLogEntry) Macros {
	var m Macros
	for _, e := range entries {
		m.Protein += e.Nutrient(model.NutrientProtein).Value
		m.Fat += e.Nutrient(model.NutrientFat).Value
		m.Carbs += e.Nutrient(model.NutrientCarbs).Value
	}
	m.Protein = Round(m.Protein, 2)
	m.Fat = Round(m.Fat, 2)
	m.Carbs = Round(m.Carbs, 2)
	return m
}

// MealCount は食事区分ごとの記録件数。
type MealCount struct {
	Meal  string
	Count int
}

// MealDistribution は食事区分ごとの件数を返す。
// 既知の区分は朝食・昼食・夕食・間食の順、未知の区分は初出順で後ろに続く。
func MealDistribution(entries []model.FoodLogEntry) []MealCount {
	counts := make(map[string]int)
	var unknown []string
	for _, e := range entries {
		label := MealLabel(e.MealType)
		if label == "" {
			continue
		}
		if _, ok := model.ParseMealType(label); !ok && counts[label] == 0 {
			unknown = append(unknown, label)
		}
		counts[label]++
	}

	out := make([]MealCount, 0, len(counts))
	for _, m := range model.MealTypes {
		label := model.MealTypeLabel(m)
		if c := counts[label]; c > 0 {
			out = append(out, MealCount{Meal: label, Count: c})
		}
	}
	for _, label := range unknown {
		out = append(out, MealCount{Meal: label, Count: counts[label]})
	}
	return out
}

// Chart はクライアント側のChart.jsに渡すグラフ定義。
type Chart struct {
	Type    string    `json:"type"`
	Title   string    `json:"title,omitempty"`
	XLabel  string    `json:"xLabel,omitempty"`
	YLabel  string    `json:"yLabel,omitempty"`
	Labels  []string  `json:"labels"`
	Dataset []Dataset `json:"datasets"`
}

// Dataset はグラフの系列。
type Dataset struct {
	Label  string    `json:"label"`
	Data   []float64 `json:"data"`
	Colors []string  `json:"colors,omitempty"`
}

// JSON はdata属性に埋め込むJSON文字列を返す。
func (c Chart) JSON() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var paletteColors = []string{"#4CAF50", "#2196F3", "#FF9800", "#9C27B0", "#F44336", "#00BCD4"}

// CaloriesLineChart は日ごとのカロリー推移の折れ線グラフを作る。
func CaloriesLineChart(days []DailyTotal) Chart {
	c := Chart{Type: "line", XLabel: "Date", YLabel: "Calories (kcal)", Labels: make([]string, 0, len(days))}
	data := make([]float64, 0, len(days))
	for _, d := range days {
		c.Labels = append(c.Labels, d.Day)
		data = append(data, d.Calories)
	}
	c.Dataset = []Dataset{{Label: "Calories", Data: data}}
	return c
}

// MacroBarChart は三大栄養素の棒グラフを作る。
func MacroBarChart(m Macros) Chart {
	return Chart{
		Type:   "bar",
		XLabel: "Macronutrient",
		YLabel: "Grams (g)",
		Labels: []string{"Protein", "Fat", "Carbs"},
		Dataset: []Dataset{{
			Label:  "g",
			Data:   []float64{m.Protein, m.Fat, m.Carbs},
			Colors: paletteColors[:3],
		}},
	}
}

// MealPieChart は食事区分の円グラフを作る。
func MealPieChart(dist []MealCount) Chart {
	c := Chart{Type: "pie", Labels: make([]string, 0, len(dist))}
	data := make([]float64, 0, len(dist))
	for _, m := range dist {
		c.Labels = append(c.Labels, m.Meal)
		data = append(data, float64(m.Count))
	}
	c.Dataset = []Dataset{{Label: "Meals", Data: data, Colors: palette(len(dist))}}
	return c
}

// IntakeComparisonChart は平均摂取量と推奨量を並べた棒グラフを作る。欠損値は0として描く。
func IntakeComparisonChart(rows []NutrientRow) Chart {
	c := Chart{Type: "bar", XLabel: "Nutrient", YLabel: "Intake Value (mg)", Labels: make([]string, 0, len(rows))}
	avg := make([]float64, 0, len(rows))
	rec := make([]float64, 0, len(rows))
	for _, r := range rows {
		c.Labels = append(c.Labels, r.Name)
		avg = append(avg, r.Average.Value)
		rec = append(rec, r.Recommended.Value)
	}
	c.Dataset = []Dataset{
		{Label: "Average Intake", Data: avg, Colors: []string{paletteColors[1]}},
		{Label: "Recommended Intake", Data: rec, Colors: []string{paletteColors[0]}},
	}
	return c
}

func palette(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = paletteColors[i%len(paletteColors)]
	}
	return out
}
