package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

func TestBroadcastFanOut(t *testing.T) {
	b := NewBroadcaster()

	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel1()
	defer cancel2()

	assert.Equal(t, 2, b.SubscriberCount())

	b.Broadcast(types.EventSyncComplete, map[string]interface{}{"symbols": 3})

	for _, ch := range []<-chan types.Event{ch1, ch2} {
		select {
		case event := <-ch:
			assert.Equal(t, types.EventSyncComplete, event.Type)
			assert.NotEmpty(t, event.Timestamp)
		default:
			t.Fatal("订阅者应收到事件")
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	b := NewBroadcaster()

	ch, cancel := b.Subscribe()
	cancel()
	assert.Equal(t, 0, b.SubscriberCount())

	// 取消后通道被关闭
	_, open := <-ch
	assert.False(t, open)

	// 重复取消不会panic
	cancel()
}

func TestSlowSubscriberDropped(t *testing.T) {
	b := NewBroadcaster()

	_, cancelSlow := b.Subscribe()
	defer cancelSlow()

	// 填满缓冲后再广播一次，慢订阅者被移除
	for i := 0; i < 17; i++ {
		b.Broadcast(types.EventMonitorComplete, nil)
	}
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestBroadcastAfterDropKeepsOthers(t *testing.T) {
	b := NewBroadcaster()

	_, cancelSlow := b.Subscribe()
	defer cancelSlow()

	fast, cancelFast := b.Subscribe()
	defer cancelFast()

	for i := 0; i < 17; i++ {
		b.Broadcast(types.EventSchedulerStatus, i)
		// 快订阅者持续消费
		for drained := true; drained; {
			select {
			case <-fast:
			default:
				drained = false
			}
		}
	}

	require.Equal(t, 1, b.SubscriberCount())
}
