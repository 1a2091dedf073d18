package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/jobportal/internal/model"
)

// PostgresApplicationRepo はPostgreSQLを使用した応募リポジトリ。
type PostgresApplicationRepo struct {
	db *sqlx.DB
}

// NewPostgresApplicationRepo はPostgresApplicationRepoを生成する。
func NewPostgresApplicationRepo(db *sql.DB) *PostgresApplicationRepo {
	return &PostgresApplicationRepo{db: sqlx.NewDb(db, "postgres")}
}

// applicationRow は応募と求人・応募者をJOINした1行を表す。
type applicationRow struct {
	ID            int64     `db:"id"`
	JobID         int64     `db:"job_id"`
	UserID        int64     `db:"user_id"`
	Status        string    `db:"status"`
	AppliedAt     time.Time `db:"applied_at"`
	JobTitle      string    `db:"job_title"`
	CompanyName   string    `db:"company_name"`
	JobPostedBy   int64     `db:"job_posted_by"`
	ApplicantName string    `db:"applicant_name"`
}

func (r applicationRow) toModel() model.ApplicationDetail {
	return model.ApplicationDetail{
		JobApplication: model.JobApplication{
			ID:        r.ID,
			JobID:     r.JobID,
			UserID:    r.UserID,
			Status:    model.ApplicationStatus(r.Status),
			AppliedAt: r.AppliedAt,
		},
		JobTitle:      r.JobTitle,
		CompanyName:   r.CompanyName,
		JobPostedBy:   r.JobPostedBy,
		ApplicantName: r.ApplicantName,
	}
}

const applicationSelect = `SELECT a.id, a.job_id, a.user_id, a.status, a.applied_at,
	j.title AS job_title, j.company_name, j.posted_by AS job_posted_by,
	u.name AS applicant_name
	FROM job_applications a
	JOIN jobs j ON j.id = a.job_id
	JOIN users u ON u.id = a.user_id`

// Create は応募を作成し、採番されたIDをapp.IDに設定する。
// (job_id, user_id)の一意制約違反はErrDuplicateとして返す。
func (r *PostgresApplicationRepo) Create(ctx context.Context, app *model.JobApplication) error {
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`INSERT INTO job_applications (job_id, user_id, status, applied_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`),
		app.JobID, app.UserID, string(app.Status), app.AppliedAt,
	).Scan(&app.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to insert application: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// ExistsByJobAndUser は指定求人・ユーザーの応募が存在するかを返す。
func (r *PostgresApplicationRepo) ExistsByJobAndUser(ctx context.Context, jobID, userID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(
		`SELECT EXISTS (SELECT 1 FROM job_applications WHERE job_id = ? AND user_id = ?)`),
		jobID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to check application existence: %w", err)
	}
	return exists, nil
}

// FindDetailByID は指定IDの応募を取得する。見つからない場合はnilを返す。
func (r *PostgresApplicationRepo) FindDetailByID(ctx context.Context, id int64) (*model.ApplicationDetail, error) {
	var row applicationRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(applicationSelect+` WHERE a.id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find application by ID: %w", err)
	}
	detail := row.toModel()
	return &detail, nil
}

// ListDetailsByUserID はユーザーの応募一覧をapplied_at降順で返す。
func (r *PostgresApplicationRepo) ListDetailsByUserID(ctx context.Context, userID int64) ([]model.ApplicationDetail, error) {
	return r.listDetails(ctx, `a.user_id = ?`, userID)
}

// ListDetailsByJobID は求人への応募一覧をapplied_at降順で返す。
func (r *PostgresApplicationRepo) ListDetailsByJobID(ctx context.Context, jobID int64) ([]model.ApplicationDetail, error) {
	return r.listDetails(ctx, `a.job_id = ?`, jobID)
}

func (r *PostgresApplicationRepo) listDetails(ctx context.Context, cond string, arg int64) ([]model.ApplicationDetail, error) {
	query := r.db.Rebind(applicationSelect + ` WHERE ` + cond + ` ORDER BY a.applied_at DESC, a.id DESC`)
	var rows []applicationRow
	if err := r.db.SelectContext(ctx, &rows, query, arg); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	details := make([]model.ApplicationDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.toModel())
	}
	return details, nil
}

// UpdateStatus は応募の状態を上書きする。
func (r *PostgresApplicationRepo) UpdateStatus(ctx context.Context, id int64, status model.ApplicationStatus) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE job_applications SET status = ? WHERE id = ?`),
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("application not found: %d", id)
	}
	return nil
}

// compile-time interface check
var _ ApplicationRepository = (*PostgresApplicationRepo)(nil)
