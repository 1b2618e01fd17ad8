package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// OptFloat は欠損しうる数値を表す。
// バックエンドは栄養素を数値または数値文字列で返すことがあるため、
// どちらも受け付け、解釈できない値は欠損として扱う。
type OptFloat struct {
	Value float64
	Valid bool
}

// Float は有効な値からOptFloatを生成する。
func Float(v float64) OptFloat {
	return OptFloat{Value: v, Valid: true}
}

// UnmarshalJSON は数値、数値文字列、nullを受け付ける。
// それ以外の値もエラーにはせず欠損として扱う。
func (o *OptFloat) UnmarshalJSON(data []byte) error {
	*o = OptFloat{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if v, err := n.Float64(); err == nil {
			*o = Float(v)
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*o = Float(v)
		}
	}
	return nil
}

// MarshalJSON は欠損値をnullとして書き出す。
func (o OptFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
