package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobportal/internal/middleware"
	"github.com/hitoshi/jobportal/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CallerResolver    middleware.CallerResolver
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	HTTPRecorder      middleware.HTTPRecorder

	// 運用エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 求人・応募
	JobService         JobServiceInterface
	ApplicationService ApplicationServiceInterface

	// ユーザー
	UserService UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → SecurityHeaders → CORS
//	  公開ルート:   RateLimit(General, IP単位)
//	  認証ルート:   Session → RateLimit(General, ユーザー単位) → CSRF [→ RequireRole / RateLimit(Apply)]
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(log, deps.HTTPRecorder))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusNotFound, &model.APIError{
			Code:     "NOT_FOUND",
			Message:  "Resource not found",
			Category: "system",
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusMethodNotAllowed, &model.APIError{
			Code:     "METHOD_NOT_ALLOWED",
			Message:  "Method not allowed",
			Category: "system",
		})
	})

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	jobHandler := NewJobHandler(deps.JobService)
	appHandler := NewApplicationHandler(deps.ApplicationService)
	userHandler := NewUserHandler(deps.UserService)

	// --- 運用エンドポイント ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- 認証不要のルート ---
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

		r.Post("/api/auth/register", authHandler.Register)
		r.Post("/api/auth/login", authHandler.Login)
		r.Post("/api/auth/logout", authHandler.Logout)

		r.Get("/api/jobs", jobHandler.GetAllJobs)
		r.Get("/api/jobs/search", jobHandler.SearchJobs)
		r.Get("/api/jobs/{jobId}", jobHandler.GetJobByID)
	})

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.CallerResolver))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.Get("/api/auth/me", authHandler.Me)

		// POST /api/jobs - 雇用者のみ
		r.With(middleware.RequireRole(model.RoleEmployer)).Post("/api/jobs", jobHandler.CreateJob)

		r.Route("/api/applications", func(r chi.Router) {
			// POST /api/applications - 応募専用レート制限を追加
			r.With(deps.RateLimiter.ApplyMiddleware()).Post("/", appHandler.Apply)
			r.Get("/my-applications", appHandler.ListMine)
			r.Get("/user/{userId}", appHandler.ListByUser)
			r.Get("/job/{jobId}", appHandler.ListByJob)
			r.Put("/{applicationId}/status", appHandler.UpdateStatus)
		})

		r.Delete("/api/users/me", userHandler.Withdraw)
	})

	return r
}
