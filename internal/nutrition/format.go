package nutrition

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hitoshi/nutriapp/internal/model"
)

// Missing は値が欠損・未定義の場合の表示。
const Missing = "—"

// FormatNumber は小数点以下2桁までに丸め、末尾の0を除いて表示する（1500, 66.67, 0.5）。
func FormatNumber(v float64) string {
	return humanize.FtoaWithDigits(Round(v, 2), 2)
}

// FormatOpt は欠損値を"—"として表示する。
func FormatOpt(o model.OptFloat) string {
	if !o.Valid {
		return Missing
	}
	return FormatNumber(o.Value)
}

// FormatPercent は充足率を表示する。整数でも小数点以下1桁を付ける（75.0, 66.67）。
func FormatPercent(pct float64) string {
	s := FormatNumber(pct)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
