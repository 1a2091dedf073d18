// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/jobportal/internal/model"
)

// SessionCookieName はセッションIDを保持するCookie名。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// callerContextKey はリクエストコンテキストに呼び出し元を格納するためのキー。
var callerContextKey = contextKey("caller")

// CallerResolver はセッションIDから呼び出し元を解決するインターフェース。
// 無効なセッションの場合は nil, nil を返す。
type CallerResolver interface {
	ResolveCaller(ctx context.Context, sessionID string) (*model.Caller, error)
}

// NewSessionMiddleware はCookieまたはAuthorizationヘッダーからセッションを読み取り、
// 呼び出し元を解決するミドルウェアを返す。
// 認証済みの呼び出し元をリクエストコンテキストに注入する。
// 未認証リクエストには401を返す。
func NewSessionMiddleware(resolver CallerResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := SessionIDFromRequest(r)
			if sessionID == "" {
				WriteUnauthorized(w)
				return
			}

			caller, err := resolver.ResolveCaller(r.Context(), sessionID)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to resolve caller",
					slog.String("error", err.Error()),
				)
				WriteUnauthorized(w)
				return
			}
			if caller == nil {
				WriteUnauthorized(w)
				return
			}

			setLoggedUserID(r.Context(), caller.UserID)

			ctx := ContextWithCaller(r.Context(), *caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromRequest はリクエストからセッションIDを取り出す。
// Cookieを優先し、なければ "Authorization: Bearer <id>" を参照する。
func SessionIDFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return bearerToken(r)
}

// bearerToken はAuthorizationヘッダーのBearerトークンを返す。
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// RequireRole は呼び出し元が指定ロールを持つ場合のみ後続へ委譲するミドルウェアを返す。
// セッションミドルウェアの後に配置する。
func RequireRole(role model.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok {
				WriteUnauthorized(w)
				return
			}
			if caller.Role != role {
				WriteErrorResponse(w, http.StatusForbidden,
					model.NewForbiddenError("Access denied for role "+string(caller.Role)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CallerFromContext はリクエストコンテキストから呼び出し元を取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func CallerFromContext(ctx context.Context) (model.Caller, bool) {
	caller, ok := ctx.Value(callerContextKey).(model.Caller)
	if !ok || caller.UserID == 0 {
		return model.Caller{}, false
	}
	return caller, true
}

// ContextWithCaller はコンテキストに呼び出し元を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithCaller(ctx context.Context, caller model.Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}
