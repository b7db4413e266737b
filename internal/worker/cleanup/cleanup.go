// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// expires_atを過ぎたセッション行を日次バッチで削除する。
// トークン検証は期限切れセッションを即座に拒否するため、
// このジョブはテーブル肥大を防ぐためのものであり、削除が遅れても認証には影響しない。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CleanupJob は期限切れセッションの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	db     Executor
	logger *slog.Logger
	// GracePeriod は期限切れ後も行を残す猶予期間。
	// 期限切れ直後の調査（不正アクセスの追跡など）のために短期間残す。
	GracePeriod time.Duration
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの猶予期間は24時間。
func NewCleanupJob(db Executor, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		db:          db,
		logger:      logger,
		GracePeriod: 24 * time.Hour,
	}
}

// Run は期限切れセッションを削除する。
// expires_atが現在時刻からGracePeriodを引いた時点より古い行をDELETEする。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	cutoff := start.Add(-j.GracePeriod)

	query := `DELETE FROM sessions WHERE expires_at < $1`
	result, err := j.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		j.logger.Error("session cleanup failed",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("failed to read deleted session count",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to read deleted session count: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("session cleanup completed",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
