package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// mockDeleter はDeleteExpiredBeforeの呼び出しを記録する。
type mockDeleter struct {
	mu      sync.Mutex
	calls   int
	before  time.Time
	deleted int64
	err     error
}

func (m *mockDeleter) DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.before = before
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return m.deleted, m.err
}

func (m *mockDeleter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockMetrics struct {
	cleaned []int64
}

func (m *mockMetrics) RecordHTTPRequest(string, string, int, time.Duration) {}
func (m *mockMetrics) RecordJobCreated(string)                              {}
func (m *mockMetrics) RecordApplicationSubmitted()                          {}
func (m *mockMetrics) RecordDuplicateApplication()                          {}
func (m *mockMetrics) RecordStatusUpdated(string)                           {}
func (m *mockMetrics) RecordSessionsCleaned(n int64)                        { m.cleaned = append(m.cleaned, n) }

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// findLogField はJSONログ行の中から指定キーを持つ最初の値を返す。
func findLogField(t *testing.T, buf *bytes.Buffer, key string) (any, bool) {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if v, ok := entry[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func TestNewCleanupJob_DefaultRetention(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockDeleter{}, newTestLogger(&buf), nil)

	if job == nil {
		t.Fatal("NewCleanupJob は nil を返してはならない")
	}
	if job.Retention != 7*24*time.Hour {
		t.Errorf("Retention = %v, want 168h", job.Retention)
	}
}

func TestCleanupJob_Run_UsesRetentionCutoff(t *testing.T) {
	var buf bytes.Buffer
	deleter := &mockDeleter{deleted: 3}
	job := NewCleanupJob(deleter, newTestLogger(&buf), nil)
	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }
	job.Retention = 48 * time.Hour

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC)
	if !deleter.before.Equal(want) {
		t.Errorf("cutoff = %v, want %v", deleter.before, want)
	}
}

func TestCleanupJob_Run_LogsAndRecordsDeletedCount(t *testing.T) {
	var buf bytes.Buffer
	m := &mockMetrics{}
	job := NewCleanupJob(&mockDeleter{deleted: 42}, newTestLogger(&buf), m)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	v, ok := findLogField(t, &buf, "deleted_count")
	if !ok || v != float64(42) {
		t.Errorf("ログに deleted_count=42 が記録されていない。ログ出力: %s", buf.String())
	}
	if _, ok := findLogField(t, &buf, "duration_ms"); !ok {
		t.Errorf("ログに duration_ms が記録されていない。ログ出力: %s", buf.String())
	}
	if len(m.cleaned) != 1 || m.cleaned[0] != 42 {
		t.Errorf("metrics cleaned = %v, want [42]", m.cleaned)
	}
}

func TestCleanupJob_Run_Idempotent_ZeroRows(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockDeleter{deleted: 0}, newTestLogger(&buf), nil)

	for i := 0; i < 2; i++ {
		if err := job.Run(context.Background()); err != nil {
			t.Fatalf("Run #%d returned error: %v", i+1, err)
		}
	}
	v, ok := findLogField(t, &buf, "deleted_count")
	if !ok || v != float64(0) {
		t.Errorf("0件削除時にもログに deleted_count=0 が記録されるべき。ログ出力: %s", buf.String())
	}
}

func TestCleanupJob_Run_ReturnsErrorOnDBFailure(t *testing.T) {
	var buf bytes.Buffer
	dbErr := errors.New("connection refused")
	job := NewCleanupJob(&mockDeleter{err: dbErr}, newTestLogger(&buf), nil)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("DB エラー時には error を返すべき")
	}
	if !errors.Is(err, dbErr) {
		t.Errorf("error should wrap the DB error: %v", err)
	}
	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Errorf("エラーログが出力されていない。ログ出力: %s", buf.String())
	}
}

func TestCleanupJob_Start_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	deleter := &mockDeleter{}
	job := NewCleanupJob(deleter, newTestLogger(&buf), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for deleter.callCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after context cancel")
	}
	if deleter.callCount() < 2 {
		t.Errorf("expected at least 2 runs, got %d", deleter.callCount())
	}
}
