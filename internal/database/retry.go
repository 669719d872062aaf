package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// initialRetryBackoff は接続リトライの初回待機時間。
	initialRetryBackoff = 500 * time.Millisecond
	// maxRetryBackoff は接続リトライの最大待機時間。
	maxRetryBackoff = 8 * time.Second
)

// Pinger は疎通確認できる接続を表す。*sql.DBが満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RetryConfig は起動時の接続リトライ設定。
type RetryConfig struct {
	Attempts       int           // 試行回数（1以上）
	PingTimeout    time.Duration // 1回あたりのタイムアウト
	InitialBackoff time.Duration // 0の場合はinitialRetryBackoff
	MaxBackoff     time.Duration // 0の場合はmaxRetryBackoff
}

// CalculateBackoff は連続失敗回数に基づいて指数バックオフ遅延を計算する。
// 初回initial、2倍ずつ増加、最大ceiling。
func CalculateBackoff(failures int, initial, ceiling time.Duration) time.Duration {
	delay := initial
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay > ceiling {
			return ceiling
		}
	}
	return delay
}

// WaitForReady はデータベースに到達できるまで指数バックオフでPingを繰り返す。
// コンテナ同時起動時にDBの準備が遅れるケースを吸収する。
// Attempts回失敗するかctxがキャンセルされた場合は最後のエラーを返す。
func WaitForReady(ctx context.Context, p Pinger, cfg RetryConfig) error {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	initial := cfg.InitialBackoff
	if initial <= 0 {
		initial = initialRetryBackoff
	}
	ceiling := cfg.MaxBackoff
	if ceiling <= 0 {
		ceiling = maxRetryBackoff
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = Ping(ctx, p, cfg.PingTimeout)
		if lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		delay := CalculateBackoff(i, initial, ceiling)
		slog.Warn("データベースに接続できません。再試行します",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", attempts),
			slog.Duration("retry_in", delay),
			slog.String("error", lastErr.Error()),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for database: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("database not ready after %d attempts: %w", attempts, lastErr)
}
