package model

// BMICategory はBMIの区分を表す。
type BMICategory int

// BMI区分
const (
	BMIUnknown BMICategory = iota
	BMIUnderweight
	BMINormal
	BMIOverweight
	BMIObese
)

// bmiCategoryLabels は区分の表示名。
var bmiCategoryLabels = map[BMICategory]string{
	BMIUnderweight: "Underweight",
	BMINormal:      "Normal",
	BMIOverweight:  "Overweight",
	BMIObese:       "Obese",
}

// BMICategoryLabel は区分の表示名を返す。未知の区分は空文字列。
func BMICategoryLabel(c BMICategory) string {
	return bmiCategoryLabels[c]
}
