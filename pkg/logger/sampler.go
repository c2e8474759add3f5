package logger

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSamplerCapacity 采样缓存最大键数
const DefaultSamplerCapacity = 100

// DefaultSampleWindow 未指定窗口时的采样窗口
const DefaultSampleWindow = 30 * time.Second

// Sampler 日志采样器，同一键在窗口期内最多放行一次，
// 缓存按最近更新时间淘汰，避免高频重复日志刷屏
type Sampler struct {
	capacity int
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List // 队首为最近更新

	now func() time.Time
}

type samplerEntry struct {
	key        string
	lastEmit   time.Time
	suppressed int
}

// NewSampler 创建采样器
func NewSampler(capacity int) *Sampler {
	if capacity <= 0 {
		capacity = DefaultSamplerCapacity
	}
	return &Sampler{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Allow 判断该键在window窗口内是否放行，返回放行标志和
// 上次放行以来被抑制的次数
func (s *Sampler) Allow(key string, window time.Duration) (bool, int) {
	if window <= 0 {
		window = DefaultSampleWindow
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if elem, ok := s.entries[key]; ok {
		entry := elem.Value.(*samplerEntry)
		s.order.MoveToFront(elem)

		if now.Sub(entry.lastEmit) < window {
			entry.suppressed++
			return false, 0
		}

		suppressed := entry.suppressed
		entry.lastEmit = now
		entry.suppressed = 0
		return true, suppressed
	}

	// 新键，先淘汰最久未更新的
	if s.order.Len() >= s.capacity {
		oldest := s.order.Back()
		if oldest != nil {
			s.order.Remove(oldest)
			delete(s.entries, oldest.Value.(*samplerEntry).key)
		}
	}

	elem := s.order.PushFront(&samplerEntry{key: key, lastEmit: now})
	s.entries[key] = elem
	return true, 0
}

// Len 当前缓存键数
func (s *Sampler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// SampleKey 由消息和上下文拼装采样键
func SampleKey(parts ...string) string {
	return strings.Join(parts, "|")
}

// SampledLogger 带采样的日志器，生产模式只输出错误级别
type SampledLogger struct {
	sampler   *Sampler
	window    time.Duration
	errorOnly bool
	log       func() *zap.Logger
}

// NewSampledLogger 创建采样日志器，mode为production时只保留错误日志
func NewSampledLogger(mode string, window time.Duration) *SampledLogger {
	return &SampledLogger{
		sampler:   NewSampler(DefaultSamplerCapacity),
		window:    window,
		errorOnly: mode == "production",
		log:       zap.L,
	}
}

// Debug 采样输出调试日志
func (l *SampledLogger) Debug(key, msg string, fields ...zap.Field) {
	if l.errorOnly {
		return
	}
	if allowed, suppressed := l.sampler.Allow(key, l.window); allowed {
		l.log().Debug(msg, withSuppressed(fields, suppressed)...)
	}
}

// Info 采样输出信息日志
func (l *SampledLogger) Info(key, msg string, fields ...zap.Field) {
	if l.errorOnly {
		return
	}
	if allowed, suppressed := l.sampler.Allow(key, l.window); allowed {
		l.log().Info(msg, withSuppressed(fields, suppressed)...)
	}
}

// Warn 采样输出警告日志
func (l *SampledLogger) Warn(key, msg string, fields ...zap.Field) {
	if l.errorOnly {
		return
	}
	if allowed, suppressed := l.sampler.Allow(key, l.window); allowed {
		l.log().Warn(msg, withSuppressed(fields, suppressed)...)
	}
}

// Error 采样输出错误日志
func (l *SampledLogger) Error(key, msg string, fields ...zap.Field) {
	if allowed, suppressed := l.sampler.Allow(key, l.window); allowed {
		l.log().Error(msg, withSuppressed(fields, suppressed)...)
	}
}

func withSuppressed(fields []zap.Field, suppressed int) []zap.Field {
	if suppressed > 0 {
		fields = append(fields, zap.Int("suppressed", suppressed))
	}
	return fields
}
