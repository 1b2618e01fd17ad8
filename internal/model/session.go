package model

import "time"

// Session はブラウザ1つ分のログイン状態を表す。
// 永続化されるのはログイン済みのセッションのみで、LoggedInは常にtrueとして保存される。
type Session struct {
	ID        string
	LoggedIn  bool
	Username  string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired はセッションが期限切れかどうかを返す。ExpiresAtが未設定の場合は期限なし。
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
