package console

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

func TestConfigStoreVersionAndGetters(t *testing.T) {
	store := NewConfigStore()
	assert.Equal(t, 0, store.Version())

	store.Replace([]types.ConfigItem{
		{Key: "1_volume_percent", Value: "12.5"},
		{Key: "1_reminder_interval", Value: "60"},
		{Key: "3_dedup_enabled", Value: "true"},
	})
	assert.Equal(t, 1, store.Version())

	assert.Equal(t, 12.5, store.Float("1_volume_percent", 0))
	assert.Equal(t, 60, store.Int("1_reminder_interval", 0))
	assert.True(t, store.Bool("3_dedup_enabled", false))

	// 缺失和非法值都回退默认
	assert.Equal(t, 10.0, store.Float("2_rise_percent", 10.0))
	store.Set("1_reminder_interval", "abc")
	assert.Equal(t, 30, store.Int("1_reminder_interval", 30))
	assert.Equal(t, 2, store.Version())
}

func TestConfigStoreSubscribe(t *testing.T) {
	store := NewConfigStore()

	var versions []int
	unsubscribe := store.Subscribe(func(v int) {
		versions = append(versions, v)
	})

	store.Set("2_rise_percent", "10.0")
	store.Set("2_rise_percent", "15.0")
	unsubscribe()
	store.Set("2_rise_percent", "20.0")

	assert.Equal(t, []int{1, 2}, versions)
	assert.Equal(t, 3, store.Version())
}

func TestPaginationPageSizeResetsPage(t *testing.T) {
	p := NewPagination(20)
	p.SetPage(5)
	require.Equal(t, 5, p.Page)
	require.Equal(t, 80, p.Skip())

	p.SetPageSize(50)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 50, p.PageSize)

	// 翻页不影响每页大小
	p.SetPage(3)
	assert.Equal(t, 50, p.PageSize)
	assert.Equal(t, 100, p.Skip())
}

func TestPaginationBounds(t *testing.T) {
	p := NewPagination(20)
	assert.Equal(t, 1, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(20))
	assert.Equal(t, 2, p.TotalPages(21))
	assert.Equal(t, 5, p.TotalPages(100))

	p.Prev()
	assert.Equal(t, 1, p.Page)

	p.Next(100)
	assert.Equal(t, 2, p.Page)
	p.SetPage(5)
	p.Next(100)
	assert.Equal(t, 5, p.Page)
}

func TestListStateDiscardsStaleResponse(t *testing.T) {
	var state ListState[types.Symbol]

	first := state.Begin()
	second := state.Begin()

	// 先到的新响应生效
	ok := state.Resolve(second, 1, []types.Symbol{{Symbol: "ETHUSDT"}}, nil)
	require.True(t, ok)

	// 慢到的旧响应被丢弃
	ok = state.Resolve(first, 99, []types.Symbol{{Symbol: "BTCUSDT"}}, nil)
	assert.False(t, ok)

	total, items, loading, err := state.Snapshot()
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "ETHUSDT", items[0].Symbol)
	assert.False(t, loading)
	assert.NoError(t, err)
}

func TestListStateKeepsItemsOnError(t *testing.T) {
	var state ListState[types.Symbol]

	gen := state.Begin()
	require.True(t, state.Resolve(gen, 1, []types.Symbol{{Symbol: "BTCUSDT"}}, nil))

	gen = state.Begin()
	require.True(t, state.Resolve(gen, 0, nil, errors.New("网络连接失败")))

	total, items, _, err := state.Snapshot()
	assert.Error(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
}
