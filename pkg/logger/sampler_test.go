package logger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestSampler() (*Sampler, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewSampler(DefaultSamplerCapacity)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestSamplerWindowSuppression(t *testing.T) {
	s, now := newTestSampler()

	// 1. 首次放行
	allowed, suppressed := s.Allow("req:/api/symbols|500", 30*time.Second)
	assert.True(t, allowed)
	assert.Equal(t, 0, suppressed)

	// 2. 窗口内全部抑制
	for i := 0; i < 5; i++ {
		*now = now.Add(time.Second)
		allowed, _ = s.Allow("req:/api/symbols|500", 30*time.Second)
		assert.False(t, allowed)
	}

	// 3. 窗口过后再次放行，并带回抑制次数
	*now = now.Add(30 * time.Second)
	allowed, suppressed = s.Allow("req:/api/symbols|500", 30*time.Second)
	assert.True(t, allowed)
	assert.Equal(t, 5, suppressed)
}

func TestSamplerPerCallWindow(t *testing.T) {
	s, now := newTestSampler()

	allowed, _ := s.Allow("sync:BTCUSDT", 30*time.Second)
	require.True(t, allowed)

	// 同一键不同调用可用不同窗口，10秒后30秒窗口仍抑制
	*now = now.Add(10 * time.Second)
	allowed, _ = s.Allow("sync:BTCUSDT", 30*time.Second)
	assert.False(t, allowed)

	// 以5秒窗口再查则已超窗放行
	allowed, suppressed := s.Allow("sync:BTCUSDT", 5*time.Second)
	assert.True(t, allowed)
	assert.Equal(t, 1, suppressed)

	// 窗口非法时退回默认30秒
	allowed, _ = s.Allow("sync:BTCUSDT", 0)
	assert.False(t, allowed)
}

func TestSamplerIndependentKeys(t *testing.T) {
	s, _ := newTestSampler()

	allowed, _ := s.Allow("a", 30*time.Second)
	assert.True(t, allowed)

	// 不同键互不影响
	allowed, _ = s.Allow("b", 30*time.Second)
	assert.True(t, allowed)

	allowed, _ = s.Allow("a", 30*time.Second)
	assert.False(t, allowed)
}

func TestSamplerEviction(t *testing.T) {
	s, _ := newTestSampler()

	first, _ := s.Allow("key-0", time.Hour)
	require.True(t, first)

	// 填满缓存，key-0成为最久未更新的键
	for i := 1; i < DefaultSamplerCapacity; i++ {
		s.Allow(fmt.Sprintf("key-%d", i), time.Hour)
	}
	assert.Equal(t, DefaultSamplerCapacity, s.Len())

	// 新键挤掉key-0
	s.Allow("key-new", time.Hour)
	assert.Equal(t, DefaultSamplerCapacity, s.Len())

	// key-0被淘汰后视为新键，窗口未过也会放行
	allowed, _ := s.Allow("key-0", time.Hour)
	assert.True(t, allowed)
}

func TestSamplerEvictionKeepsRecentlyUpdated(t *testing.T) {
	s, _ := newTestSampler()

	for i := 0; i < DefaultSamplerCapacity; i++ {
		s.Allow(fmt.Sprintf("key-%d", i), time.Hour)
	}

	// 再次访问key-0使其变为最近更新，淘汰目标应变成key-1
	s.Allow("key-0", time.Hour)
	s.Allow("key-new", time.Hour)

	allowed, _ := s.Allow("key-1", time.Hour)
	assert.True(t, allowed, "key-1应已被淘汰")

	// key-0仍在缓存中，窗口内被抑制
	allowed, _ = s.Allow("key-0", time.Hour)
	assert.False(t, allowed)
}

func TestSampledLoggerModeFloor(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	zl := zap.New(core)

	l := NewSampledLogger("production", 30*time.Second)
	l.log = func() *zap.Logger { return zl }

	// 生产模式下非错误级别全部丢弃
	l.Debug("k1", "调试日志")
	l.Info("k2", "信息日志")
	l.Warn("k3", "警告日志")
	assert.Equal(t, 0, logs.Len())

	l.Error("k4", "错误日志")
	assert.Equal(t, 1, logs.Len())
}

func TestSampledLoggerSuppressedField(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	zl := zap.New(core)

	l := NewSampledLogger("development", 30*time.Second)
	l.log = func() *zap.Logger { return zl }

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.sampler.now = func() time.Time { return now }

	l.Error("req", "请求失败", zap.Int("status", 502))
	l.Error("req", "请求失败", zap.Int("status", 502))
	l.Error("req", "请求失败", zap.Int("status", 502))
	require.Equal(t, 1, logs.Len())

	now = now.Add(time.Minute)
	l.sampler.now = func() time.Time { return now }

	l.Error("req", "请求失败", zap.Int("status", 502))
	require.Equal(t, 2, logs.Len())

	fields := logs.All()[1].ContextMap()
	assert.EqualValues(t, 2, fields["suppressed"])
}

func TestSampleKey(t *testing.T) {
	assert.Equal(t, "GET|/api/alerts|500", SampleKey("GET", "/api/alerts", "500"))
}
