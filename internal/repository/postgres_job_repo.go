package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/jobportal/internal/model"
)

// PostgresJobRepo はPostgreSQLを使用した求人リポジトリ。
// 行のスキャンにはsqlxの構造体マッピングを使用する。
type PostgresJobRepo struct {
	db *sqlx.DB
}

// NewPostgresJobRepo はPostgresJobRepoを生成する。
func NewPostgresJobRepo(db *sql.DB) *PostgresJobRepo {
	return &PostgresJobRepo{db: sqlx.NewDb(db, "postgres")}
}

// jobRow はjobsとusersをJOINした1行を表す。
type jobRow struct {
	ID           int64     `db:"id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	Location     string    `db:"location"`
	CompanyName  string    `db:"company_name"`
	Salary       *float64  `db:"salary"`
	JobType      string    `db:"job_type"`
	PostedBy     int64     `db:"posted_by"`
	CreatedAt    time.Time `db:"created_at"`
	PostedByName string    `db:"posted_by_name"`
}

func (r jobRow) toModel() model.JobWithPoster {
	return model.JobWithPoster{
		Job: model.Job{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Location:    r.Location,
			CompanyName: r.CompanyName,
			Salary:      r.Salary,
			JobType:     model.JobType(r.JobType),
			PostedBy:    r.PostedBy,
			CreatedAt:   r.CreatedAt,
		},
		PostedByName: r.PostedByName,
	}
}

const jobSelect = `SELECT j.id, j.title, j.description, j.location, j.company_name, j.salary,
	j.job_type, j.posted_by, j.created_at, u.name AS posted_by_name
	FROM jobs j
	JOIN users u ON u.id = j.posted_by`

// jobSortColumns はAPI上のフィールド名とORDER BYに使用するカラムの対応表。
// ここに無いフィールドはSQLに埋め込まない。
var jobSortColumns = map[model.JobSortField]string{
	model.JobSortID:          "j.id",
	model.JobSortTitle:       "j.title",
	model.JobSortLocation:    "j.location",
	model.JobSortCompanyName: "j.company_name",
	model.JobSortSalary:      "j.salary",
	model.JobSortJobType:     "j.job_type",
	model.JobSortCreatedAt:   "j.created_at",
}

// jobOrderBy はJobSortからORDER BY句を組み立てる。
// 未知のフィールドはcreated_atとして扱い、同順位はidで安定させる。
func jobOrderBy(sort model.JobSort) string {
	col, ok := jobSortColumns[sort.Field]
	if !ok {
		col = "j.created_at"
	}
	dir := "ASC"
	if sort.Direction == model.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, j.id %s", col, dir, dir)
}

// escapeLike はLIKEパターンのワイルドカードをエスケープする。
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// buildJobSearchWhere は検索条件からWHERE句とバインド引数を組み立てる。
// プレースホルダは?で出力し、呼び出し側でRebindする。
func buildJobSearchWhere(filter model.JobSearchFilter) (string, []any) {
	var conds []string
	var args []any

	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		conds = append(conds, `j.title ILIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(kw)+"%")
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		conds = append(conds, `j.location ILIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(loc)+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// Create は求人を作成し、採番されたIDをjob.IDに設定する。
func (r *PostgresJobRepo) Create(ctx context.Context, job *model.Job) error {
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`INSERT INTO jobs (title, description, location, company_name, salary, job_type, posted_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		job.Title, job.Description, job.Location, job.CompanyName, job.Salary,
		string(job.JobType), job.PostedBy, job.CreatedAt,
	).Scan(&job.ID)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

// FindByID は指定IDの求人を掲載者名付きで取得する。見つからない場合はnilを返す。
func (r *PostgresJobRepo) FindByID(ctx context.Context, id int64) (*model.JobWithPoster, error) {
	var row jobRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(jobSelect+` WHERE j.id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find job by ID: %w", err)
	}
	job := row.toModel()
	return &job, nil
}

// List は求人を指定の並び順でページング取得し、総件数とともに返す。
func (r *PostgresJobRepo) List(ctx context.Context, sort model.JobSort, page model.PageRequest) ([]model.JobWithPoster, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT count(*) FROM jobs`); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	query := r.db.Rebind(jobSelect + " " + jobOrderBy(sort) + " LIMIT ? OFFSET ?")
	var rows []jobRow
	if err := r.db.SelectContext(ctx, &rows, query, page.Size, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	return toJobModels(rows), total, nil
}

// Search はタイトル・勤務地の部分一致で求人を検索する。結果はcreated_at降順。
func (r *PostgresJobRepo) Search(ctx context.Context, filter model.JobSearchFilter, page model.PageRequest) ([]model.JobWithPoster, int64, error) {
	where, args := buildJobSearchWhere(filter)

	var total int64
	countQuery := r.db.Rebind(`SELECT count(*) FROM jobs j ` + where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count searched jobs: %w", err)
	}

	query := r.db.Rebind(jobSelect + " " + where + " ORDER BY j.created_at DESC, j.id DESC LIMIT ? OFFSET ?")
	args = append(args, page.Size, page.Offset())
	var rows []jobRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search jobs: %w", err)
	}

	return toJobModels(rows), total, nil
}

func toJobModels(rows []jobRow) []model.JobWithPoster {
	jobs := make([]model.JobWithPoster, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, row.toModel())
	}
	return jobs
}

// compile-time interface check
var _ JobRepository = (*PostgresJobRepo)(nil)
