// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/jobportal/internal/model"
)

// ErrDuplicate は一意制約違反により作成できなかったことを表す。
// サービス層はerrors.Isで判定し、409 Conflictのエラーへ変換する。
var ErrDuplicate = errors.New("duplicate key")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDをuser.IDに設定する。
	// メールアドレスが重複する場合はErrDuplicateをラップしたエラーを返す。
	Create(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するsessions、jobs、job_applicationsはCASCADE削除される。
	DeleteByID(ctx context.Context, id int64) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID int64) error
	// DeleteExpiredBefore はexpires_atがbeforeより前のセッションを削除し、削除件数を返す。
	DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error)
}

// JobRepository は求人データの永続化インターフェース。
type JobRepository interface {
	// Create は求人を作成し、採番されたIDをjob.IDに設定する。
	Create(ctx context.Context, job *model.Job) error

	// FindByID は指定IDの求人を掲載者名付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.JobWithPoster, error)

	// List は求人を指定の並び順でページング取得し、総件数とともに返す。
	List(ctx context.Context, sort model.JobSort, page model.PageRequest) ([]model.JobWithPoster, int64, error)

	// Search はタイトル・勤務地の部分一致（大文字小文字を区別しない）で求人を検索する。
	// 空の条件は無視する。結果はcreated_at降順。
	Search(ctx context.Context, filter model.JobSearchFilter, page model.PageRequest) ([]model.JobWithPoster, int64, error)
}

// ApplicationRepository は応募データの永続化インターフェース。
type ApplicationRepository interface {
	// Create は応募を作成し、採番されたIDをapp.IDに設定する。
	// (job_id, user_id)が重複する場合はErrDuplicateをラップしたエラーを返す。
	Create(ctx context.Context, app *model.JobApplication) error

	// ExistsByJobAndUser は指定求人・ユーザーの応募が存在するかを返す。
	ExistsByJobAndUser(ctx context.Context, jobID, userID int64) (bool, error)

	// FindDetailByID は指定IDの応募を求人・応募者情報付きで取得する。見つからない場合はnilを返す。
	FindDetailByID(ctx context.Context, id int64) (*model.ApplicationDetail, error)

	// ListDetailsByUserID はユーザーの応募一覧をapplied_at降順で返す。
	ListDetailsByUserID(ctx context.Context, userID int64) ([]model.ApplicationDetail, error)

	// ListDetailsByJobID は求人への応募一覧をapplied_at降順で返す。
	ListDetailsByJobID(ctx context.Context, jobID int64) ([]model.ApplicationDetail, error)

	// UpdateStatus は応募の状態を上書きする。
	UpdateStatus(ctx context.Context, id int64, status model.ApplicationStatus) error
}

// isUniqueViolation はPostgreSQLの一意制約違反（SQLSTATE 23505）かを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
