package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/jobportal/internal/middleware"
	"github.com/hitoshi/jobportal/internal/model"
)

// withCaller はリクエストコンテキストに呼び出し元を注入する。
func withCaller(req *http.Request, userID int64, role model.Role) *http.Request {
	return req.WithContext(middleware.ContextWithCaller(req.Context(), model.Caller{UserID: userID, Role: role}))
}

// testEnvelope は成功レスポンスのデコード用。dataは遅延デコードする。
type testEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v\nbody: %s", err, w.Body.String())
	}
	return env
}

func decodeAPIError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v\nbody: %s", err, w.Body.String())
	}
	return body
}
