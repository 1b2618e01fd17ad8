package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/nutriapp/internal/model"
)

// SQLiteSessionRepo はSQLiteを使用したセッションリポジトリ。
// 時刻はUNIX秒で保存する。
type SQLiteSessionRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteSessionRepo はSQLiteSessionRepoを生成する。
func NewSQLiteSessionRepo(db *sql.DB) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: db, now: time.Now}
}

// Create はセッションを作成する。
func (r *SQLiteSessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, username, user_id, token, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID, session.Username, session.UserID, session.Token,
		session.ExpiresAt.Unix(), session.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
func (r *SQLiteSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session := &model.Session{LoggedIn: true}
	var expiresAt, createdAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, user_id, token, expires_at, created_at
		 FROM sessions
		 WHERE id = ? AND expires_at > ?`,
		id, r.now().Unix(),
	).Scan(&session.ID, &session.Username, &session.UserID, &session.Token, &expiresAt, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	session.ExpiresAt = time.Unix(expiresAt, 0)
	session.CreatedAt = time.Unix(createdAt, 0)
	return session, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *SQLiteSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れのセッションを削除する。
func (r *SQLiteSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	return n, nil
}

// Ping はデータベース接続を確認する。
func (r *SQLiteSessionRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

var _ SessionRepository = (*SQLiteSessionRepo)(nil)
