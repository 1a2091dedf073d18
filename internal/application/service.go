// Package application は求人への応募と審査のドメインロジックを提供する。
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/jobportal/internal/metrics"
	"github.com/hitoshi/jobportal/internal/model"
	"github.com/hitoshi/jobportal/internal/repository"
)

// ApplicationResponse はAPIに返す応募の表現。
type ApplicationResponse struct {
	ApplicationID int64                   `json:"applicationId"`
	JobID         int64                   `json:"jobId"`
	JobTitle      string                  `json:"jobTitle"`
	CompanyName   string                  `json:"companyName"`
	ApplicantName string                  `json:"applicantName"`
	Status        model.ApplicationStatus `json:"status"`
	AppliedAt     time.Time               `json:"appliedAt"`
}

// Service は応募のサービス層。
// 全ての操作は呼び出し元を明示的に受け取り、所有者チェックをここで行う。
type Service struct {
	appRepo  repository.ApplicationRepository
	jobRepo  repository.JobRepository
	userRepo repository.UserRepository
	metrics  metrics.MetricsCollector
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	appRepo repository.ApplicationRepository,
	jobRepo repository.JobRepository,
	userRepo repository.UserRepository,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		appRepo:  appRepo,
		jobRepo:  jobRepo,
		userRepo: userRepo,
		metrics:  collector,
		now:      time.Now,
	}
}

// Apply は呼び出し元として求人に応募する。
// 同じ求人への応募が既にある場合は409 Conflictのエラーを返す。
func (s *Service) Apply(ctx context.Context, caller model.Caller, jobID int64) (*ApplicationResponse, error) {
	user, err := s.loadCaller(ctx, caller)
	if err != nil {
		return nil, err
	}

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗しました: %w", err)
	}
	if job == nil {
		return nil, model.NewJobNotFoundError()
	}

	exists, err := s.appRepo.ExistsByJobAndUser(ctx, job.ID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("応募の存在確認に失敗しました: %w", err)
	}
	if exists {
		s.recordDuplicate()
		return nil, model.NewAlreadyAppliedError()
	}

	app := &model.JobApplication{
		JobID:     job.ID,
		UserID:    user.ID,
		Status:    model.ApplicationStatusApplied,
		AppliedAt: s.now(),
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		// 存在確認とINSERTの間に同じ応募が作成された場合
		if errors.Is(err, repository.ErrDuplicate) {
			s.recordDuplicate()
			return nil, model.NewAlreadyAppliedError()
		}
		return nil, fmt.Errorf("応募の作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordApplicationSubmitted()
	}
	slog.Info("応募を受け付けました",
		slog.Int64("application_id", app.ID),
		slog.Int64("job_id", job.ID),
		slog.Int64("user_id", user.ID),
	)

	return &ApplicationResponse{
		ApplicationID: app.ID,
		JobID:         job.ID,
		JobTitle:      job.Title,
		CompanyName:   job.CompanyName,
		ApplicantName: user.Name,
		Status:        app.Status,
		AppliedAt:     app.AppliedAt,
	}, nil
}

// ListByUser は指定ユーザーの応募一覧を返す。
// 本人または雇用者ロールのみ閲覧できる。
func (s *Service) ListByUser(ctx context.Context, caller model.Caller, userID int64) ([]ApplicationResponse, error) {
	user, err := s.loadCaller(ctx, caller)
	if err != nil {
		return nil, err
	}
	if user.ID != userID && user.Role != model.RoleEmployer {
		return nil, model.NewForbiddenError("Unauthorized to view these applications")
	}

	details, err := s.appRepo.ListDetailsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	return toResponses(details), nil
}

// ListMine は呼び出し元自身の応募一覧を返す。
func (s *Service) ListMine(ctx context.Context, caller model.Caller) ([]ApplicationResponse, error) {
	user, err := s.loadCaller(ctx, caller)
	if err != nil {
		return nil, err
	}

	details, err := s.appRepo.ListDetailsByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	return toResponses(details), nil
}

// ListByJob は求人への応募一覧を返す。
// 求人を掲載した雇用者のみ閲覧できる。
func (s *Service) ListByJob(ctx context.Context, caller model.Caller, jobID int64) ([]ApplicationResponse, error) {
	user, err := s.loadCaller(ctx, caller)
	if err != nil {
		return nil, err
	}

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗しました: %w", err)
	}
	if job == nil {
		return nil, model.NewJobNotFoundError()
	}
	if job.PostedBy != user.ID {
		return nil, model.NewForbiddenError("Unauthorized to view applications for this job")
	}

	details, err := s.appRepo.ListDetailsByJobID(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	return toResponses(details), nil
}

// UpdateStatus は応募の審査状態を更新する。
// 応募先の求人を掲載した雇用者のみ更新できる。状態遷移に制約はない。
func (s *Service) UpdateStatus(ctx context.Context, caller model.Caller, applicationID int64, status model.ApplicationStatus) (*ApplicationResponse, error) {
	if !status.Valid() {
		return nil, model.NewInvalidStatusError(string(status))
	}

	user, err := s.loadCaller(ctx, caller)
	if err != nil {
		return nil, err
	}

	detail, err := s.appRepo.FindDetailByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("応募の取得に失敗しました: %w", err)
	}
	if detail == nil {
		return nil, model.NewApplicationNotFoundError()
	}
	if detail.JobPostedBy != user.ID {
		return nil, model.NewForbiddenError("Unauthorized to update this application")
	}

	if err := s.appRepo.UpdateStatus(ctx, detail.ID, status); err != nil {
		return nil, fmt.Errorf("応募状態の更新に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordStatusUpdated(string(status))
	}
	slog.Info("応募状態を更新しました",
		slog.Int64("application_id", detail.ID),
		slog.String("from", string(detail.Status)),
		slog.String("to", string(status)),
		slog.Int64("user_id", user.ID),
	)

	detail.Status = status
	resp := toResponse(*detail)
	return &resp, nil
}

// loadCaller は呼び出し元のユーザーを取得する。
// セッション発行後に退会済みの場合はUserNotFoundを返す。
func (s *Service) loadCaller(ctx context.Context, caller model.Caller) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

func (s *Service) recordDuplicate() {
	if s.metrics != nil {
		s.metrics.RecordDuplicateApplication()
	}
}

func toResponse(d model.ApplicationDetail) ApplicationResponse {
	return ApplicationResponse{
		ApplicationID: d.ID,
		JobID:         d.JobID,
		JobTitle:      d.JobTitle,
		CompanyName:   d.CompanyName,
		ApplicantName: d.ApplicantName,
		Status:        d.Status,
		AppliedAt:     d.AppliedAt,
	}
}

func toResponses(details []model.ApplicationDetail) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toResponse(d))
	}
	return out
}
