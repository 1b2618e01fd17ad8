package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/nutriapp/internal/model"
)

// MemorySessionRepo はプロセス内のマップにセッションを保持するリポジトリ。
// プロセス再起動でセッションは失われる。
type MemorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]model.Session
	now      func() time.Time
}

// NewMemorySessionRepo はMemorySessionRepoを生成する。
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{
		sessions: make(map[string]model.Session),
		now:      time.Now,
	}
}

// Create はセッションを保存する。
func (r *MemorySessionRepo) Create(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := *session
	s.LoggedIn = true
	r.sessions[s.ID] = s
	return nil
}

// FindByID は指定IDのセッションのコピーを返す。期限切れの場合はnilを返す。
func (r *MemorySessionRepo) FindByID(_ context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Expired(r.now()) {
		return nil, nil
	}
	return &s, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *MemorySessionRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// DeleteExpired は期限切れのセッションを削除する。
func (r *MemorySessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

// Ping は常に成功する。
func (r *MemorySessionRepo) Ping(context.Context) error {
	return nil
}

// Len は保持しているセッション数を返す。
func (r *MemorySessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

var _ SessionRepository = (*MemorySessionRepo)(nil)
