package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/hitoshi/jobportal/internal/job"
	"github.com/hitoshi/jobportal/internal/model"
)

const (
	defaultSortField     = string(model.JobSortCreatedAt)
	defaultSortDirection = "desc"
)

// JobServiceInterface は求人ハンドラーが必要とするサービスインターフェース。
type JobServiceInterface interface {
	CreateJob(ctx context.Context, caller model.Caller, in job.CreateJobInput) (*job.JobResponse, error)
	GetAllJobs(ctx context.Context, page model.PageRequest, sort model.JobSort) (model.Page[job.JobResponse], error)
	GetJobByID(ctx context.Context, id int64) (*job.JobResponse, error)
	SearchJobs(ctx context.Context, filter model.JobSearchFilter, page model.PageRequest) (model.Page[job.JobResponse], error)
}

// JobHandler は求人のHTTPハンドラー。
type JobHandler struct {
	service JobServiceInterface
}

// NewJobHandler はJobHandlerを生成する。
func NewJobHandler(service JobServiceInterface) *JobHandler {
	return &JobHandler{service: service}
}

// createJobRequest は求人作成リクエストのボディ。
type createJobRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=20000"`
	Location    string   `json:"location" validate:"required,max=200"`
	CompanyName string   `json:"companyName" validate:"required,max=200"`
	Salary      *float64 `json:"salary" validate:"omitempty,gte=0"`
	JobType     string   `json:"jobType" validate:"required,oneof=FULL_TIME PART_TIME CONTRACT INTERNSHIP FREELANCE"`
}

// CreateJob は求人を作成する。
// POST /api/jobs
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req createJobRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	created, err := h.service.CreateJob(r.Context(), caller, job.CreateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		CompanyName: req.CompanyName,
		Salary:      req.Salary,
		JobType:     model.JobType(req.JobType),
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, "Job created successfully", created)
}

// GetAllJobs は求人一覧を返す。
// GET /api/jobs?page=0&size=10&sortBy=createdAt&sortDirection=desc
func (h *JobHandler) GetAllJobs(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequestFromQuery(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	sortBy := strings.TrimSpace(q.Get("sortBy"))
	if sortBy == "" {
		sortBy = defaultSortField
	}
	direction := q.Get("sortDirection")
	if direction == "" {
		direction = defaultSortDirection
	}

	result, err := h.service.GetAllJobs(r.Context(), page, model.JobSort{
		Field:     model.JobSortField(sortBy),
		Direction: model.ParseSortDirection(direction),
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "Jobs fetched successfully", result)
}

// GetJobByID は求人詳細を返す。
// GET /api/jobs/{jobId}
func (h *JobHandler) GetJobByID(w http.ResponseWriter, r *http.Request) {
	jobID, apiErr := int64URLParam(r, "jobId")
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	found, err := h.service.GetJobByID(r.Context(), jobID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "Job fetched successfully", found)
}

// SearchJobs はキーワードと勤務地で求人を検索する。
// GET /api/jobs/search?keyword=engineer&location=tokyo&page=0&size=10
func (h *JobHandler) SearchJobs(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequestFromQuery(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	result, err := h.service.SearchJobs(r.Context(), model.JobSearchFilter{
		Keyword:  q.Get("keyword"),
		Location: q.Get("location"),
	}, page)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "Jobs fetched successfully", result)
}
