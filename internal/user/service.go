// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/unihouse/api/internal/model"
	"github.com/unihouse/api/internal/repository"
)

// BookmarkDeleter はブックマークの一括削除インターフェース。
type BookmarkDeleter interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// Service はユーザー管理のサービス層。
// 退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo        repository.UserRepository
	sessionRepo     repository.SessionRepository
	bookmarkDeleter BookmarkDeleter
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	bookmarkDeleter BookmarkDeleter,
) *Service {
	return &Service{
		userRepo:        userRepo,
		sessionRepo:     sessionRepo,
		bookmarkDeleter: bookmarkDeleter,
	}
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: bookmarks → sessions → user（+ CASCADE: identities）
// 掲示は掲示板の共有データとして残す。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	// ユーザー存在確認
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("user withdrawal started",
		slog.String("user_id", userID),
	)

	// 1. ブックマークを削除
	if s.bookmarkDeleter != nil {
		if err := s.bookmarkDeleter.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete bookmarks: %w", err)
		}
	}

	// 2. セッションを削除
	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete sessions: %w", err)
		}
	}

	// 3. ユーザーを削除（identitiesはCASCADE削除）
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("user withdrawal completed",
		slog.String("user_id", userID),
	)

	return nil
}
