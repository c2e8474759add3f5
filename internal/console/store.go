package console

import (
	"strconv"
	"sync"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// ConfigStore 全局配置缓存，版本号随每次变更递增，视图按版本订阅刷新
type ConfigStore struct {
	mu      sync.RWMutex
	values  map[string]string
	version int

	subMu  sync.Mutex
	subs   map[int]func(version int)
	nextID int
}

// NewConfigStore 创建配置缓存
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		values: make(map[string]string),
		subs:   make(map[int]func(int)),
	}
}

// Replace 整体替换配置，配置页拉取后调用
func (s *ConfigStore) Replace(items []types.ConfigItem) {
	s.mu.Lock()
	s.values = make(map[string]string, len(items))
	for _, item := range items {
		s.values[item.Key] = item.Value
	}
	s.version++
	version := s.version
	s.mu.Unlock()

	s.notify(version)
}

// Set 更新单个配置项
func (s *ConfigStore) Set(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.version++
	version := s.version
	s.mu.Unlock()

	s.notify(version)
}

// Get 读取配置项
func (s *ConfigStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

// Float 读取浮点配置，缺失或非法时返回fallback
func (s *ConfigStore) Float(key string, fallback float64) float64 {
	raw, ok := s.Get(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// Int 读取整数配置
func (s *ConfigStore) Int(key string, fallback int) int {
	raw, ok := s.Get(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// Bool 读取布尔配置
func (s *ConfigStore) Bool(key string, fallback bool) bool {
	raw, ok := s.Get(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// Version 当前配置版本
func (s *ConfigStore) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe 注册变更回调，返回取消函数
func (s *ConfigStore) Subscribe(fn func(version int)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *ConfigStore) notify(version int) {
	s.subMu.Lock()
	fns := make([]func(int), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(version)
	}
}
