// Package nutrition はバックエンドから受け取ったデータを表示用に整形する。
// BMI区分、栄養素の充足率、表示名、グラフ用の集計を含む。全て副作用のない関数。
package nutrition

import (
	"math"

	"github.com/hitoshi/nutriapp/internal/model"
)

// BMI区分の境界値。下限を含み上限を含まない。
const (
	bmiNormalFrom     = 18.5
	bmiOverweightFrom = 25.0
	bmiObeseFrom      = 30.0
)

// ClassifyBMI はBMIを4区分に分類する。比較前に丸めは行わない。
func ClassifyBMI(bmi float64) model.BMICategory {
	switch {
	case bmi < bmiNormalFrom:
		return model.BMIUnderweight
	case bmi < bmiOverweightFrom:
		return model.BMINormal
	case bmi < bmiObeseFrom:
		return model.BMIOverweight
	default:
		return model.BMIObese
	}
}

// bmiColors は区分ごとの表示色。
var bmiColors = map[model.BMICategory]string{
	model.BMIUnderweight: "#FFC107",
	model.BMINormal:      "#4CAF50",
	model.BMIOverweight:  "#FF9800",
	model.BMIObese:       "#F44336",
}

// BMIColor は区分の表示色を返す。未知の区分はグレー。
func BMIColor(c model.BMICategory) string {
	if color, ok := bmiColors[c]; ok {
		return color
	}
	return "#9E9E9E"
}

// ComputeBMI は身長(cm)と体重(kg)からBMIを計算する。
// いずれかが0以下の場合は計算できないためfalseを返す。
func ComputeBMI(heightCm, weightKg float64) (float64, bool) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, false
	}
	h := heightCm / 100
	return Round(weightKg/(h*h), 2), true
}

// ProfileBMI はプロフィールのBMIを返す。バックエンドが返さなかった場合は身長と体重から計算する。
func ProfileBMI(p model.UserProfile) (float64, bool) {
	if p.BMI != nil && !math.IsNaN(*p.BMI) {
		return *p.BMI, true
	}
	return ComputeBMI(p.HeightCm, p.WeightKg)
}

// Round はvを小数点以下digits桁に四捨五入する。
func Round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
