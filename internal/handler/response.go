// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/jobportal/internal/middleware"
	"github.com/hitoshi/jobportal/internal/model"
)

// maxRequestBodyBytes はJSONリクエストボディの上限サイズ。
const maxRequestBodyBytes = 1 << 20

// validate はリクエストDTOのstructタグを検証する。
var validate = validator.New(validator.WithRequiredStructEnabled())

// envelope は全ての成功レスポンスを包む統一フォーマット。
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// writeJSON は統一フォーマットで成功レスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope{Message: message, Data: data})
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは詳細をログのみに残し、内部サーバーエラーとして扱う
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUserNotFound, model.ErrCodeEmployerNotFound,
		model.ErrCodeJobNotFound, model.ErrCodeApplicationNotFound:
		return http.StatusNotFound
	case model.ErrCodeAlreadyApplied, model.ErrCodeEmailAlreadyExists:
		return http.StatusConflict
	case model.ErrCodeUnauthenticated, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeInvalidRequest, model.ErrCodeInvalidSortField,
		model.ErrCodeInvalidStatus, model.ErrCodeInvalidPage:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON はリクエストボディをdstにデコードし、structタグで検証する。
// 未知のフィールドは無視する。失敗した場合はレスポンスに書き込むべきAPIErrorを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) *model.APIError {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewInvalidRequestError("malformed JSON body")
	}

	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError はvalidatorのエラーを最初の違反フィールドのメッセージに変換する。
func validationError(err error) *model.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return model.NewInvalidRequestError(err.Error())
	}
	fe := verrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return model.NewInvalidRequestError(fmt.Sprintf("%s is required", field))
	case "email":
		return model.NewInvalidRequestError(fmt.Sprintf("%s must be a valid email address", field))
	case "oneof":
		return model.NewInvalidRequestError(fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
	case "min", "gte", "gt":
		return model.NewInvalidRequestError(fmt.Sprintf("%s must be at least %s", field, fe.Param()))
	case "max", "lte":
		return model.NewInvalidRequestError(fmt.Sprintf("%s must be at most %s", field, fe.Param()))
	default:
		return model.NewInvalidRequestError(fmt.Sprintf("%s is invalid", field))
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// int64URLParam はパスパラメータを正の整数IDとして取り出す。
func int64URLParam(r *http.Request, name string) (int64, *model.APIError) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewInvalidRequestError(fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}

// intQueryParam はクエリパラメータを整数として取り出す。未指定の場合はdefaultValを返す。
func intQueryParam(r *http.Request, name string, defaultVal int) (int, *model.APIError) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewInvalidRequestError(fmt.Sprintf("%s must be an integer", name))
	}
	return v, nil
}

// pageRequestFromQuery はpage, sizeクエリパラメータからPageRequestを組み立てる。
func pageRequestFromQuery(r *http.Request) (model.PageRequest, error) {
	page, apiErr := intQueryParam(r, "page", 0)
	if apiErr != nil {
		return model.PageRequest{}, apiErr
	}
	size, apiErr := intQueryParam(r, "size", model.DefaultPageSize)
	if apiErr != nil {
		return model.PageRequest{}, apiErr
	}
	return model.NewPageRequest(page, size)
}

// callerOrUnauthorized はコンテキストから呼び出し元を取り出す。
// セッションミドルウェアを通過していない場合は401を書き込みfalseを返す。
func callerOrUnauthorized(w http.ResponseWriter, r *http.Request) (model.Caller, bool) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		middleware.WriteUnauthorized(w)
		return model.Caller{}, false
	}
	return caller, true
}
