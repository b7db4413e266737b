package repository

import (
	"context"
	"sync"
)

// MemoryBookmarkRepo はメモリ上にブックマークを保持するリポジトリ。
// デモモードとテストで使用する。
type MemoryBookmarkRepo struct {
	mu    sync.RWMutex
	marks map[string]map[string]bool // userID -> listingID -> true
}

// NewMemoryBookmarkRepo はMemoryBookmarkRepoを生成する。
func NewMemoryBookmarkRepo() *MemoryBookmarkRepo {
	return &MemoryBookmarkRepo{marks: make(map[string]map[string]bool)}
}

// Set はブックマーク状態を冪等に設定する。
func (r *MemoryBookmarkRepo) Set(_ context.Context, userID, listingID string, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.marks[userID] == nil {
		r.marks[userID] = make(map[string]bool)
	}
	if on {
		r.marks[userID][listingID] = true
	} else {
		delete(r.marks[userID], listingID)
	}
	return nil
}

// ListListingIDsByUser はユーザーがブックマークした掲示IDの集合を返す。
func (r *MemoryBookmarkRepo) ListListingIDsByUser(_ context.Context, userID string) (map[string]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]bool, len(r.marks[userID]))
	for id := range r.marks[userID] {
		out[id] = true
	}
	return out, nil
}

// DeleteByUserID はユーザーの全ブックマークを削除する。
func (r *MemoryBookmarkRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.marks, userID)
	return nil
}

// compile-time interface check
var _ BookmarkRepository = (*MemoryBookmarkRepo)(nil)
