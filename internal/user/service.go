// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/jobportal/internal/model"
	"github.com/hitoshi/jobportal/internal/repository"
)

// SessionDeleter はセッションの一括削除インターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionDeleter interface {
	DeleteByUserID(ctx context.Context, userID int64) error
}

// Service はユーザー管理のサービス層。
// 退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo       repository.UserRepository
	sessionDeleter SessionDeleter
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, sessionDeleter SessionDeleter) *Service {
	return &Service{
		userRepo:       userRepo,
		sessionDeleter: sessionDeleter,
	}
}

// Withdraw は呼び出し元ユーザーの退会処理を実行する。
// 削除順序: sessions → user（+ CASCADE: jobs, job_applications）
// 雇用者が退会した場合、掲載した求人とそれへの応募も削除される。
func (s *Service) Withdraw(ctx context.Context, caller model.Caller) error {
	user, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("退会処理を開始します",
		slog.Int64("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	// 1. セッションを削除
	if s.sessionDeleter != nil {
		if err := s.sessionDeleter.DeleteByUserID(ctx, user.ID); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	// 2. ユーザーを削除（jobs, job_applicationsはCASCADE削除）
	if err := s.userRepo.DeleteByID(ctx, user.ID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.Int64("user_id", user.ID),
	)

	return nil
}
