package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

func TestBulkAddStateAccumulates(t *testing.T) {
	var state BulkAddState

	state.Apply(types.BulkAddMessage{Phase: types.PhaseInfo, Total: 50, Existing: 10})
	for n := 1; n <= 10; n++ {
		state.Apply(types.BulkAddMessage{
			Phase:    types.PhaseAdding,
			Current:  n,
			Total:    50,
			Progress: n * 2,
			Symbol:   "SYMUSDT",
			Status:   types.StatusSuccess,
		})
	}
	state.Apply(types.BulkAddMessage{Phase: types.PhaseComplete, Added: 45, Synced: 10000, Failed: 5})

	assert.Equal(t, 50, state.Total)
	assert.Equal(t, 10, state.Current)
	assert.Equal(t, 45, state.Added)
	assert.Equal(t, int64(10000), state.Synced)
	assert.Equal(t, 5, state.Failed)
	assert.True(t, state.Done)
	assert.False(t, state.Err)
}

func TestBulkAddCompleteOverwritesCounts(t *testing.T) {
	var state BulkAddState
	state.Added = 99
	state.Failed = 99
	state.Synced = 99

	state.Apply(types.BulkAddMessage{Phase: types.PhaseComplete, Added: 3, Failed: 1, Synced: 500})

	assert.Equal(t, 3, state.Added)
	assert.Equal(t, 1, state.Failed)
	assert.Equal(t, int64(500), state.Synced)
	assert.True(t, state.Done)
}

func TestBulkAddErrorIsTerminal(t *testing.T) {
	var state BulkAddState

	state.Apply(types.BulkAddMessage{Phase: types.PhaseError, Message: "获取交易所币种失败"})

	assert.True(t, state.Done)
	assert.True(t, state.Err)
	assert.Equal(t, "获取交易所币种失败", state.Message)
}

func TestSyncStateTracksIntervals(t *testing.T) {
	var state SyncState

	state.Apply(types.SyncMessage{Progress: 0, Interval: "1m", Status: types.StatusSyncing})
	state.Apply(types.SyncMessage{Progress: 14, Interval: "1m", Status: types.StatusDone, Count: 1440})
	state.Apply(types.SyncMessage{Progress: 14, Interval: "15m", Status: types.StatusSyncing})
	state.Apply(types.SyncMessage{Progress: 14, Interval: "15m", Status: types.StatusError, Message: "请求超时"})

	assert.Equal(t, int64(1440), state.Total)
	assert.Equal(t, 1, state.Failed)
	assert.False(t, state.Done)
	assert.Len(t, state.Intervals, 2)
	assert.Equal(t, types.StatusDone, state.Intervals[0].Status)
	assert.Equal(t, types.StatusError, state.Intervals[1].Status)
	assert.Equal(t, "请求超时", state.Intervals[1].Message)
}

func TestSyncStateCompleteSetsTotal(t *testing.T) {
	var state SyncState
	state.Total = 123

	state.Apply(types.SyncMessage{Progress: 100, Status: types.PhaseComplete, Count: 2112})

	assert.True(t, state.Done)
	assert.Equal(t, 100, state.Progress)
	assert.Equal(t, int64(2112), state.Total)
}
