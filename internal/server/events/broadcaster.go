package events

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// Broadcaster 事件广播器，/api/events 的SSE订阅者通过它接收事件
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[int]chan types.Event
	nextID      int
}

// NewBroadcaster 创建事件广播器
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[int]chan types.Event),
	}
}

// Subscribe 注册订阅者，返回事件通道和取消函数
func (b *Broadcaster) Subscribe() (<-chan types.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan types.Event, 16)
	b.subscribers[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Broadcast 向全部订阅者推送事件，通道已满的订阅者被移除
func (b *Broadcaster) Broadcast(eventType string, data interface{}) {
	event := types.Event{
		Type:      eventType,
		Data:      data,
		Timestamp: types.NowCST().Format(time.RFC3339),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// 消费跟不上的订阅者直接踢掉，避免阻塞广播
			delete(b.subscribers, id)
			close(ch)
			zap.L().Warn("⚠️ SSE订阅者消费过慢，已断开", zap.Int("subscriber", id))
		}
	}
}

// SubscriberCount 当前订阅者数量
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
