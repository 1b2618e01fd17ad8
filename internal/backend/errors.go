package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ConnectivityError はバックエンドに到達できなかったことを表す。
// DNS解決失敗、接続拒否、タイムアウトなどの通信レベルの失敗が該当する。
type ConnectivityError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *ConnectivityError) Error() string {
	kind := "unreachable"
	if e.Timeout {
		kind = "timed out"
	}
	return fmt.Sprintf("backend %s: %s: %v", e.Op, kind, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// RejectedError はバックエンドが想定外のステータスコードを返したことを表す。
// Detailはレスポンスのdetailフィールド（存在する場合）、Bodyは生のレスポンス本文。
type RejectedError struct {
	Op         string
	StatusCode int
	Detail     string
	Body       string
}

func (e *RejectedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend %s: status %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend %s: status %d", e.Op, e.StatusCode)
}

// Text は画面に表示する拒否理由を返す。detailがなければ本文をそのまま使う。
func (e *RejectedError) Text() string {
	if e.Detail != "" {
		return e.Detail
	}
	return strings.TrimSpace(e.Body)
}

// IsStatus はerrが指定ステータスのRejectedErrorかどうかを返す。
func IsStatus(err error, status int) bool {
	var rej *RejectedError
	return errors.As(err, &rej) && rej.StatusCode == status
}

// IsTimeout はerrがタイムアウトによるConnectivityErrorかどうかを返す。
func IsTimeout(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce) && ce.Timeout
}

// IsConnectivity はerrがConnectivityErrorかどうかを返す。
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}

// IsRejected はerrがRejectedErrorかどうかを返す。
func IsRejected(err error) bool {
	var rej *RejectedError
	return errors.As(err, &rej)
}

// DetailOf はerrがRejectedErrorであればdetailを返す。
func DetailOf(err error) string {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej.Detail
	}
	return ""
}

// isTimeout はトランスポートエラーがタイムアウトかどうかを判定する。
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// parseDetail はFastAPI形式のエラーレスポンスからdetailを取り出す。
// detailは文字列、または{msg}オブジェクトの配列のいずれか。
func parseDetail(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return ""
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
