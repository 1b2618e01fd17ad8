package nutrition

import (
	"sort"

	"github.com/hitoshi/nutriapp/internal/model"
)

// NutrientRow は栄養素分析表の1行を表す。
type NutrientRow struct {
	Key         string
	Name        string
	Average     model.OptFloat
	Recommended model.OptFloat
	Percent     float64
	PercentOK   bool
	Band        Band
}

// PercentText は充足率の表示文字列を返す。定義できない場合は"—"。
func (r NutrientRow) PercentText() string {
	if !r.PercentOK {
		return Missing
	}
	return FormatPercent(r.Percent)
}

// BandClass はセルの色分けに使うCSSクラス名を返す。
func (r NutrientRow) BandClass() string {
	if !r.PercentOK {
		return ""
	}
	return "band-" + BandName(r.Band)
}

// NutrientRows は平均値と推奨値を栄養素キーで突き合わせて表の行を作る。
// 行は標準順序の栄養素を先に並べ、未知のキーはアルファベット順で後ろに続ける。
// 片方にしか無いキーも行として残し、欠けた値は欠損とする。
func NutrientRows(s model.NutrientSummary) []NutrientRow {
	keys := summaryKeys(s)
	rows := make([]NutrientRow, 0, len(keys))
	for _, key := range keys {
		row := NutrientRow{
			Key:         key,
			Name:        DisplayName(key),
			Average:     s.Average[key],
			Recommended: s.Recommended[key],
		}
		if row.Average.Valid && row.Recommended.Valid {
			if pct, ok := PercentMet(row.Average.Value, row.Recommended.Value); ok {
				row.Percent = pct
				row.PercentOK = true
				row.Band = BandFor(pct)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func summaryKeys(s model.NutrientSummary) []string {
	seen := make(map[string]bool, len(s.Average)+len(s.Recommended))
	for k := range s.Average {
		seen[k] = true
	}
	for k := range s.Recommended {
		seen[k] = true
	}

	keys := make([]string, 0, len(seen))
	for _, n := range model.AllNutrients {
		if seen[string(n)] {
			keys = append(keys, string(n))
			delete(seen, string(n))
		}
	}
	extra := make([]string, 0, len(seen))
	for k := range seen {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
