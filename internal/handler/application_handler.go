package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/jobportal/internal/application"
	"github.com/hitoshi/jobportal/internal/model"
)

// ApplicationServiceInterface は応募ハンドラーが必要とするサービスインターフェース。
type ApplicationServiceInterface interface {
	Apply(ctx context.Context, caller model.Caller, jobID int64) (*application.ApplicationResponse, error)
	ListByUser(ctx context.Context, caller model.Caller, userID int64) ([]application.ApplicationResponse, error)
	ListMine(ctx context.Context, caller model.Caller) ([]application.ApplicationResponse, error)
	ListByJob(ctx context.Context, caller model.Caller, jobID int64) ([]application.ApplicationResponse, error)
	UpdateStatus(ctx context.Context, caller model.Caller, applicationID int64, status model.ApplicationStatus) (*application.ApplicationResponse, error)
}

// ApplicationHandler は応募のHTTPハンドラー。
type ApplicationHandler struct {
	service ApplicationServiceInterface
}

// NewApplicationHandler はApplicationHandlerを生成する。
func NewApplicationHandler(service ApplicationServiceInterface) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// applyRequest は応募リクエストのボディ。
type applyRequest struct {
	JobID int64 `json:"jobId" validate:"required,gt=0"`
}

// updateStatusRequest は応募状態更新リクエストのボディ。
// 値の検証はサービス層で行い、未定義の状態はINVALID_STATUSとして返す。
type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Apply は求人に応募する。
// POST /api/applications
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req applyRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	app, err := h.service.Apply(r.Context(), caller, req.JobID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "Job applied successfully", app)
}

// ListByUser は指定ユーザーの応募一覧を返す。
// GET /api/applications/user/{userId}
func (h *ApplicationHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	userID, apiErr := int64URLParam(r, "userId")
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	apps, err := h.service.ListByUser(r.Context(), caller, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "List of applications fetched successfully", apps)
}

// ListMine は呼び出し元自身の応募一覧を返す。
// GET /api/applications/my-applications
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	apps, err := h.service.ListMine(r.Context(), caller)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "List of applications fetched successfully", apps)
}

// ListByJob は求人への応募一覧を返す。
// GET /api/applications/job/{jobId}
func (h *ApplicationHandler) ListByJob(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	jobID, apiErr := int64URLParam(r, "jobId")
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	apps, err := h.service.ListByJob(r.Context(), caller, jobID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "List of applications fetched successfully", apps)
}

// UpdateStatus は応募の審査状態を更新する。
// PUT /api/applications/{applicationId}/status
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	applicationID, apiErr := int64URLParam(r, "applicationId")
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	var req updateStatusRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	app, err := h.service.UpdateStatus(r.Context(), caller, applicationID, model.ApplicationStatus(req.Status))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "Application status updated successfully", app)
}
