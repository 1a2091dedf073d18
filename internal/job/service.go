// Package job は求人の掲載・一覧・検索のドメインロジックを提供する。
package job

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/jobportal/internal/metrics"
	"github.com/hitoshi/jobportal/internal/model"
	"github.com/hitoshi/jobportal/internal/repository"
	"github.com/hitoshi/jobportal/internal/security"
)

// CreateJobInput は求人作成の入力値。
type CreateJobInput struct {
	Title       string
	Description string
	Location    string
	CompanyName string
	Salary      *float64
	JobType     model.JobType
}

// JobResponse はAPIに返す求人の表現。
// PostedByは掲載した雇用者の名前。
type JobResponse struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	CompanyName string        `json:"companyName"`
	Salary      *float64      `json:"salary"`
	JobType     model.JobType `json:"jobType"`
	PostedBy    string        `json:"postedBy"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Service は求人のサービス層。
type Service struct {
	jobRepo   repository.JobRepository
	userRepo  repository.UserRepository
	sanitizer security.Sanitizer
	metrics   metrics.MetricsCollector
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい。
func NewService(
	jobRepo repository.JobRepository,
	userRepo repository.UserRepository,
	sanitizer security.Sanitizer,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		jobRepo:   jobRepo,
		userRepo:  userRepo,
		sanitizer: sanitizer,
		metrics:   collector,
		now:       time.Now,
	}
}

// CreateJob は呼び出し元の雇用者を掲載者として求人を作成する。
// ロールの検査はルートガードで行われる前提だが、雇用者以外が到達した場合もForbiddenとする。
func (s *Service) CreateJob(ctx context.Context, caller model.Caller, in CreateJobInput) (*JobResponse, error) {
	employer, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("雇用者の取得に失敗しました: %w", err)
	}
	if employer == nil {
		return nil, model.NewEmployerNotFoundError()
	}
	if employer.Role != model.RoleEmployer {
		return nil, model.NewForbiddenError("Only employers can post jobs")
	}

	if !in.JobType.Valid() {
		return nil, model.NewInvalidRequestError(fmt.Sprintf("unknown jobType %q", in.JobType))
	}

	title, err := s.plainText("title", in.Title)
	if err != nil {
		return nil, err
	}
	location, err := s.plainText("location", in.Location)
	if err != nil {
		return nil, err
	}
	companyName, err := s.plainText("companyName", in.CompanyName)
	if err != nil {
		return nil, err
	}

	job := &model.Job{
		Title:       title,
		Description: s.sanitizer.SanitizeHTML(in.Description),
		Location:    location,
		CompanyName: companyName,
		Salary:      in.Salary,
		JobType:     in.JobType,
		PostedBy:    employer.ID,
		CreatedAt:   s.now(),
	}
	if job.Title == "" {
		return nil, model.NewInvalidRequestError("title is required")
	}
	if job.CompanyName == "" {
		return nil, model.NewInvalidRequestError("companyName is required")
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("求人の作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordJobCreated(string(job.JobType))
	}
	slog.Info("求人を作成しました",
		slog.Int64("job_id", job.ID),
		slog.Int64("user_id", employer.ID),
	)

	resp := toResponse(model.JobWithPoster{Job: *job, PostedByName: employer.Name})
	return &resp, nil
}

// plainText はプレーンテキスト項目を検証する。
// タグを含む値は黙って書き換えず、400として拒否する。
func (s *Service) plainText(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if s.sanitizer.StripTags(trimmed) != trimmed {
		return "", model.NewInvalidRequestError(fmt.Sprintf("%s must not contain markup", field))
	}
	return trimmed, nil
}

// GetAllJobs は求人一覧を指定の並び順でページング取得する。
// ソート対象外のフィールドはバリデーションエラーとする。
func (s *Service) GetAllJobs(ctx context.Context, page model.PageRequest, sort model.JobSort) (model.Page[JobResponse], error) {
	if !sort.Field.Valid() {
		return model.Page[JobResponse]{}, model.NewInvalidSortFieldError(string(sort.Field))
	}

	jobs, total, err := s.jobRepo.List(ctx, sort, page)
	if err != nil {
		return model.Page[JobResponse]{}, fmt.Errorf("求人一覧の取得に失敗しました: %w", err)
	}

	return model.MapPage(model.NewPage(jobs, page, total), toResponse), nil
}

// GetJobByID は指定IDの求人を取得する。
func (s *Service) GetJobByID(ctx context.Context, id int64) (*JobResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗しました: %w", err)
	}
	if job == nil {
		return nil, model.NewJobNotFoundError()
	}
	resp := toResponse(*job)
	return &resp, nil
}

// SearchJobs はタイトルのキーワードと勤務地で求人を検索する。
// 空白のみの条件は指定なしとして扱い、両方とも無い場合は全件をcreated_at降順で返す。
func (s *Service) SearchJobs(ctx context.Context, filter model.JobSearchFilter, page model.PageRequest) (model.Page[JobResponse], error) {
	jobs, total, err := s.jobRepo.Search(ctx, filter, page)
	if err != nil {
		return model.Page[JobResponse]{}, fmt.Errorf("求人の検索に失敗しました: %w", err)
	}

	return model.MapPage(model.NewPage(jobs, page, total), toResponse), nil
}

func toResponse(j model.JobWithPoster) JobResponse {
	return JobResponse{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		Location:    j.Location,
		CompanyName: j.CompanyName,
		Salary:      j.Salary,
		JobType:     j.JobType,
		PostedBy:    j.PostedByName,
		CreatedAt:   j.CreatedAt,
	}
}
