package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

const (
	// initialBackoff は接続リトライの初回遅延。
	initialBackoff = 500 * time.Millisecond
	// maxBackoff は接続リトライの最大遅延。
	maxBackoff = 10 * time.Second
)

// Pinger はDB疎通確認のインターフェース。*sql.DBが満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CalculateBackoff は連続失敗回数に基づいて指数バックオフ遅延を計算する。
// 初回500ms、2倍ずつ増加、最大10秒。
func CalculateBackoff(consecutiveFailures int) time.Duration {
	delay := initialBackoff
	for i := 0; i < consecutiveFailures; i++ {
		delay *= 2
		if delay > maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// WaitForConnection はPingが成功するまで最大attempts回、指数バックオフで再試行する。
// docker-compose等でDBの起動がアプリより遅れる場合に使う。
// ctxがキャンセルされた場合は即座に返る。
func WaitForConnection(ctx context.Context, db Pinger, attempts int, sleep func(time.Duration) <-chan time.Time) error {
	if attempts < 1 {
		attempts = 1
	}
	if sleep == nil {
		sleep = time.After
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = db.PingContext(ctx); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		delay := CalculateBackoff(i)
		slog.Warn("database not ready, retrying",
			slog.Int("attempt", i+1),
			slog.Duration("retry_in", delay),
			slog.String("error", lastErr.Error()),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for database cancelled: %w", ctx.Err())
		case <-sleep(delay):
		}
	}
	return fmt.Errorf("database unreachable after %d attempts: %w", attempts, lastErr)
}

var _ Pinger = (*sql.DB)(nil)
