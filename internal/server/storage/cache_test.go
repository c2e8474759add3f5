package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

func TestCircularQueueSlidingWindow(t *testing.T) {
	cq := NewCircularQueue(5 * time.Minute)

	now := time.Now()
	// 窗口外的旧数据点在新增时被清理
	cq.Add(types.PriceDataPoint{Price: 100, Timestamp: now.Add(-10 * time.Minute)})
	cq.Add(types.PriceDataPoint{Price: 101, Timestamp: now.Add(-2 * time.Minute)})
	cq.Add(types.PriceDataPoint{Price: 102, Timestamp: now})

	assert.Equal(t, 2, cq.Length())
	require.NotNil(t, cq.GetOldest())
	assert.Equal(t, 101.0, cq.GetOldest().Price)
	assert.Equal(t, 102.0, cq.GetLatest().Price)
}

func TestCircularQueueFindAroundTime(t *testing.T) {
	cq := NewCircularQueue(10 * time.Minute)

	now := time.Now()
	cq.Add(types.PriceDataPoint{Price: 100, Timestamp: now.Add(-5 * time.Minute)})
	cq.Add(types.PriceDataPoint{Price: 105, Timestamp: now})

	point := cq.FindPriceAroundTime(now.Add(-4 * time.Minute))
	require.NotNil(t, point)
	assert.Equal(t, 100.0, point.Price)

	// 相差超过2分钟视为数据不足
	assert.Nil(t, cq.FindPriceAroundTime(now.Add(-9*time.Minute)))
}

func TestPriceCacheMemoryMode(t *testing.T) {
	pc := NewPriceCache(types.RedisConfig{}, 5*time.Minute)

	_, ok := pc.LatestPrice("BTCUSDT")
	assert.False(t, ok)

	pc.Store("BTCUSDT", 65000, time.Now())
	pc.Store("ETHUSDT", 3500, time.Now())

	price, ok := pc.LatestPrice("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, 65000.0, price)

	assert.ElementsMatch(t, []string{"BTCUSDT", "ETHUSDT"}, pc.GetAllSymbols())

	stats := pc.Stats()
	assert.Equal(t, false, stats["redis_enabled"])
	assert.Equal(t, 2, stats["memory_symbols"])
}

func TestPriceCacheWindow(t *testing.T) {
	pc := NewPriceCache(types.RedisConfig{}, 5*time.Minute)

	now := time.Now()
	pc.Store("BTCUSDT", 64000, now.Add(-5*time.Minute))
	pc.Store("BTCUSDT", 65000, now)

	current, past := pc.PriceWindow("BTCUSDT")
	require.NotNil(t, current)
	require.NotNil(t, past)
	assert.Equal(t, 65000.0, current.Price)
	assert.Equal(t, 64000.0, past.Price)
}
