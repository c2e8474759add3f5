package console

import "sync"

// ListState 列表数据的加载状态，请求带代数标记，过期响应直接丢弃
type ListState[T any] struct {
	mu         sync.Mutex
	generation int

	Total   int64
	Items   []T
	Loading bool
	Err     error
}

// Begin 开始一次新的拉取，返回本次请求的代数
func (s *ListState[T]) Begin() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.Loading = true
	return s.generation
}

// Resolve 写入拉取结果，代数落后于最新请求时返回false且不改动状态
func (s *ListState[T]) Resolve(generation int, total int64, items []T, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return false
	}

	s.Loading = false
	s.Err = err
	if err == nil {
		s.Total = total
		s.Items = items
	}
	return true
}

// Snapshot 读取当前状态
func (s *ListState[T]) Snapshot() (int64, []T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Total, s.Items, s.Loading, s.Err
}
