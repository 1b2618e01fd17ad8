package nutrition

// Band は充足率の色分け区分。
type Band int

// 充足率の区分
const (
	BandNone Band = iota
	BandRed
	BandYellow
	BandGreen
)

// bandNames はCSSクラス名として使う区分名。
var bandNames = map[Band]string{
	BandRed:    "red",
	BandYellow: "yellow",
	BandGreen:  "green",
}

// BandName は区分名を返す。BandNoneは空文字列。
func BandName(b Band) string {
	return bandNames[b]
}

// PercentMet は平均摂取量の推奨量に対する割合(%)を小数点以下2桁に丸めて返す。
// 推奨量が0以下の場合は定義できないためfalseを返す。
func PercentMet(avg, rec float64) (float64, bool) {
	if rec <= 0 {
		return 0, false
	}
	return Round(avg/rec*100, 2), true
}

// BandFor は充足率を区分に変換する。70未満は赤、70以上100未満は黄、100以上は緑。
func BandFor(pct float64) Band {
	switch {
	case pct < 70:
		return BandRed
	case pct < 100:
		return BandYellow
	default:
		return BandGreen
	}
}
