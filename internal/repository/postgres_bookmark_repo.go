package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresBookmarkRepo はPostgreSQLを使用したブックマークリポジトリ。
type PostgresBookmarkRepo struct {
	db *sql.DB
}

// NewPostgresBookmarkRepo はPostgresBookmarkRepoを生成する。
func NewPostgresBookmarkRepo(db *sql.DB) *PostgresBookmarkRepo {
	return &PostgresBookmarkRepo{db: db}
}

// Set はブックマーク状態を冪等に設定する。
// 付与はON CONFLICT DO NOTHING、解除は単純DELETEで、どちらも繰り返し実行できる。
func (r *PostgresBookmarkRepo) Set(ctx context.Context, userID, listingID string, on bool) error {
	if on {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO bookmarks (user_id, listing_id)
			 VALUES ($1, $2)
			 ON CONFLICT (user_id, listing_id) DO NOTHING`,
			userID, listingID,
		)
		if err != nil {
			return fmt.Errorf("failed to add bookmark: %w", err)
		}
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1 AND listing_id = $2`,
		userID, listingID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove bookmark: %w", err)
	}
	return nil
}

// ListListingIDsByUser はユーザーがブックマークした掲示IDの集合を返す。
func (r *PostgresBookmarkRepo) ListListingIDsByUser(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT listing_id FROM bookmarks WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookmarks: %w", err)
	}

	return ids, nil
}

// DeleteByUserID はユーザーの全ブックマークを削除する。
func (r *PostgresBookmarkRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user bookmarks: %w", err)
	}
	return nil
}

// compile-time interface check
var _ BookmarkRepository = (*PostgresBookmarkRepo)(nil)
