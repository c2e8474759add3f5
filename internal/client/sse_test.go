package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

func sseHandler(t *testing.T, path string, payloads []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		for _, payload := range payloads {
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func TestStreamEventsDispatches(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, "/api/events", []string{
		`{"type":"connected","data":{"subscribers":1},"timestamp":"2026-08-31T10:00:00+08:00"}`,
		`{"type":"sync_complete","data":{"symbols":3,"klines":42},"timestamp":"2026-08-31T10:01:00+08:00"}`,
	}))
	defer server.Close()

	var events []types.Event
	err := newTestClient(server.URL).StreamEvents(context.Background(), func(e types.Event) {
		events = append(events, e)
	})
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, types.EventConnected, events[0].Type)
	assert.Equal(t, types.EventSyncComplete, events[1].Type)
}

func TestStreamEventsSkipsMalformedPayload(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, "/api/events", []string{
		`{not valid json`,
		`{"type":"monitor_complete","data":{"checked":5},"timestamp":"2026-08-31T10:00:00+08:00"}`,
	}))
	defer server.Close()

	var events []types.Event
	err := newTestClient(server.URL).StreamEvents(context.Background(), func(e types.Event) {
		events = append(events, e)
	})
	require.NoError(t, err)

	// 解析失败的消息不触发回调，后续消息正常处理
	require.Len(t, events, 1)
	assert.Equal(t, types.EventMonitorComplete, events[0].Type)
}

func TestStreamEventsIgnoresHeartbeat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": heartbeat\n\n")
		fmt.Fprint(w, "data: {\"type\":\"connected\",\"data\":null,\"timestamp\":\"t\"}\n\n")
	}))
	defer server.Close()

	count := 0
	err := newTestClient(server.URL).StreamEvents(context.Background(), func(types.Event) {
		count++
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWatcherReconnectsAfterFixedDelay(t *testing.T) {
	var connects int32
	connected := make(chan struct{}, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&connects, 1)
		connected <- struct{}{}
		w.Header().Set("Content-Type", "text/event-stream")
		// 立刻结束，触发客户端重连
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(newTestClient(server.URL), 50*time.Millisecond, func(types.Event) {}, nil)
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	first := awaitConnect(t, connected)
	second := awaitConnect(t, connected)
	cancel()
	<-done

	// 断开后等待固定间隔再重连，只重连一次
	assert.GreaterOrEqual(t, second.Sub(first), 50*time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&connects))
}

func awaitConnect(t *testing.T, ch <-chan struct{}) time.Time {
	t.Helper()
	select {
	case <-ch:
		return time.Now()
	case <-time.After(2 * time.Second):
		t.Fatal("等待连接超时")
		return time.Time{}
	}
}

func TestStreamBulkAddStopsAtComplete(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, "/api/symbols/bulk-add", []string{
		`{"phase":"fetch","message":"正在获取交易所币种列表"}`,
		`{"phase":"info","total":2,"existing":10}`,
		`{"phase":"adding","progress":50,"current":1,"total":2,"symbol":"AAAUSDT","status":"success"}`,
		`{"phase":"adding","progress":100,"current":2,"total":2,"symbol":"BBBUSDT","status":"failed"}`,
		`{"phase":"complete","added":1,"failed":1,"synced":1440}`,
		`{"phase":"adding","current":99}`,
	}))
	defer server.Close()

	var state BulkAddState
	err := newTestClient(server.URL).StreamBulkAdd(context.Background(), state.Apply)
	require.NoError(t, err)

	// complete之后的消息不再消费
	assert.True(t, state.Done)
	assert.False(t, state.Err)
	assert.Equal(t, 2, state.Current)
	assert.Equal(t, 1, state.Added)
	assert.Equal(t, 1, state.Failed)
	assert.Equal(t, int64(1440), state.Synced)
}

func TestStreamBulkAddErrorPhase(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, "/api/symbols/bulk-add", []string{
		`{"phase":"fetch","message":"正在获取交易所币种列表"}`,
		`{"phase":"error","message":"获取交易所币种失败"}`,
	}))
	defer server.Close()

	var state BulkAddState
	err := newTestClient(server.URL).StreamBulkAdd(context.Background(), state.Apply)
	require.Error(t, err)
	assert.True(t, state.Done)
	assert.True(t, state.Err)
}

func TestStreamSyncStopsAtComplete(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, "/api/symbols/BTCUSDT/sync", []string{
		`{"progress":0,"interval":"1m","status":"syncing"}`,
		`{"progress":50,"interval":"1m","status":"done","count":1440}`,
		`{"progress":50,"interval":"15m","status":"syncing"}`,
		`{"progress":100,"interval":"15m","status":"done","count":672}`,
		`{"progress":100,"status":"complete","count":2112}`,
	}))
	defer server.Close()

	var state SyncState
	err := newTestClient(server.URL).StreamSync(context.Background(), "BTCUSDT", state.Apply)
	require.NoError(t, err)

	assert.True(t, state.Done)
	assert.Equal(t, 100, state.Progress)
	assert.Equal(t, int64(2112), state.Total)
	require.Len(t, state.Intervals, 2)
	assert.Equal(t, types.StatusDone, state.Intervals[0].Status)
}
