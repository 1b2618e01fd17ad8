// Package repository はセッションデータの永続化を提供する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/nutriapp/internal/model"
)

// SessionRepository はセッションデータの永続化インターフェース。
// 保存されるのはログイン済みのセッションのみ。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。存在しないか期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。存在しなくてもエラーにしない。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired はnow時点で期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	// Ping はストアが利用可能かを確認する。
	Ping(ctx context.Context) error
}
