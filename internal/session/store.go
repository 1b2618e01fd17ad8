// Package session はブラウザセッションごとのログイン状態を管理する。
package session

import (
	"sync"
	"time"

	"github.com/hitoshi/nutriapp/internal/model"
)

// Store は1つのブラウザセッションのログイン状態を保持する。
// 4つのフィールド（ログインフラグ、ユーザー名、ユーザーID、トークン）は常にまとめて更新され、
// 部分的に更新された状態が観測されることはない。
type Store struct {
	mu          sync.Mutex
	rec         model.Session
	initialized bool
	now         func() time.Time
}

// NewStore は未初期化のStoreを生成する。
func NewStore() *Store {
	return &Store{now: time.Now}
}

// newStoreFrom は永続化されたセッションからStoreを復元する。
func newStoreFrom(rec model.Session, now func() time.Time) *Store {
	return &Store{rec: rec, initialized: true, now: now}
}

// Initialize は未初期化の場合のみ既定値を設定する。何度呼んでも結果は同じ。
func (s *Store) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return
	}
	s.resetLocked()
	s.initialized = true
}

// IsAuthenticated はログイン済みかつ期限内の場合にtrueを返す。
// ゼロ値のStoreでは現在時刻にtime.Nowを使う。
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now
	if now == nil {
		now = time.Now
	}
	return s.rec.LoggedIn && !s.rec.Expired(now())
}

// SetAuthenticated はログイン状態を一括で設定する。
func (s *Store) SetAuthenticated(username, userID, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.LoggedIn = true
	s.rec.Username = username
	s.rec.UserID = userID
	s.rec.Token = token
	s.rec.ExpiresAt = time.Time{}
	s.initialized = true
}

// Clear はログイン状態を既定値に戻す。
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.initialized = true
}

// Snapshot は現在の状態のコピーを返す。
func (s *Store) Snapshot() model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec
}

// Token はバックエンド呼び出しに使うベアラートークンを返す。
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Token
}

// UserID はログイン中のユーザーIDを返す。
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.UserID
}

// Username はログイン中のユーザー名を返す。
func (s *Store) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Username
}

// resetLocked はmuを保持した状態で呼び出すこと。
// セッションIDはCommit時の削除対象として残す。
func (s *Store) resetLocked() {
	id := s.rec.ID
	s.rec = model.Session{ID: id}
}

// bind はCommit時に新しいIDと期限を設定する。
func (s *Store) bind(id string, expiresAt, createdAt time.Time) model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.ID = id
	s.rec.ExpiresAt = expiresAt
	s.rec.CreatedAt = createdAt
	return s.rec
}

// detach はCommit時にセッションIDを切り離して返す。
func (s *Store) detach() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.rec.ID
	s.rec.ID = ""
	return id
}
