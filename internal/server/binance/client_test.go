package binance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterWithinWindow(t *testing.T) {
	r := newRateLimiter(3)
	now := time.Date(2025, 6, 1, 12, 0, 10, 0, time.UTC)
	r.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Wait(ctx))
	}
	assert.Equal(t, 3, r.count)
}

func TestRateLimiterBlocksUntilNextWindow(t *testing.T) {
	r := newRateLimiter(2)
	now := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)
	r.now = func() time.Time { return now }

	var slept time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		slept += d
		now = now.Add(d) // 模拟时间流逝
		return nil
	}

	ctx := context.Background()
	require.NoError(t, r.Wait(ctx))
	require.NoError(t, r.Wait(ctx))

	// 第三次请求需等到下一分钟窗口
	require.NoError(t, r.Wait(ctx))
	assert.Equal(t, 30*time.Second, slept)
	assert.Equal(t, 1, r.count)
}

func TestRateLimiterResetOnNewWindow(t *testing.T) {
	r := newRateLimiter(2)
	now := time.Date(2025, 6, 1, 12, 0, 59, 0, time.UTC)
	r.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, r.Wait(ctx))
	require.NoError(t, r.Wait(ctx))

	// 进入新窗口后计数归零
	now = now.Add(2 * time.Second)
	require.NoError(t, r.Wait(ctx))
	assert.Equal(t, 1, r.count)
}

func TestIntervalTables(t *testing.T) {
	for _, interval := range SupportedIntervals {
		assert.True(t, IsSupported(interval), interval)
		assert.Greater(t, IntervalMinutes(interval), 0, interval)
		assert.Greater(t, RetentionDays[interval], 0, interval)
		assert.Greater(t, MaxInitialDays[interval], 0, interval)
	}

	assert.False(t, IsSupported("2h"))
	assert.Equal(t, 0, IntervalMinutes("2h"))
	assert.Equal(t, 240, IntervalMinutes("4h"))
	assert.Equal(t, 1, RetentionDays["1m"])
	assert.Equal(t, 90, MaxInitialDays["3d"])
}
