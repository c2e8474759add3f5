package client

import (
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// BulkAddState 批量添加进度的累积状态
type BulkAddState struct {
	Phase      string
	Total      int
	Existing   int
	Current    int
	Progress   int
	LastSymbol string
	LastStatus string
	Added      int
	Failed     int
	Synced     int64
	Message    string
	Done       bool
	Err        bool
}

// Apply 按阶段消息推进状态，complete消息无条件覆盖最终计数
func (s *BulkAddState) Apply(msg types.BulkAddMessage) {
	s.Phase = msg.Phase

	switch msg.Phase {
	case types.PhaseFetch:
		s.Message = msg.Message
	case types.PhaseInfo:
		s.Total = msg.Total
		s.Existing = msg.Existing
	case types.PhaseAdding:
		s.Current = msg.Current
		s.Progress = msg.Progress
		s.LastSymbol = msg.Symbol
		s.LastStatus = msg.Status
		if msg.Total > 0 {
			s.Total = msg.Total
		}
	case types.PhaseComplete:
		s.Added = msg.Added
		s.Failed = msg.Failed
		s.Synced = msg.Synced
		s.Done = true
	case types.PhaseError:
		s.Message = msg.Message
		s.Done = true
		s.Err = true
	}
}

// IntervalProgress 单周期同步进度
type IntervalProgress struct {
	Interval string
	Status   string
	Count    int64
	Message  string
}

// SyncState 单币种历史同步进度的累积状态
type SyncState struct {
	Progress  int
	Intervals []IntervalProgress
	Total     int64
	Done      bool
	Failed    int
}

// Apply 按进度消息推进状态
func (s *SyncState) Apply(msg types.SyncMessage) {
	s.Progress = msg.Progress

	switch msg.Status {
	case types.StatusSyncing, types.StatusDone, types.StatusError:
		s.upsertInterval(msg)
		if msg.Status == types.StatusDone {
			s.Total += msg.Count
		}
		if msg.Status == types.StatusError {
			s.Failed++
		}
	case types.PhaseComplete:
		// 完成消息带的是全量K线数
		s.Total = msg.Count
		s.Done = true
	}
}

func (s *SyncState) upsertInterval(msg types.SyncMessage) {
	for i := range s.Intervals {
		if s.Intervals[i].Interval == msg.Interval {
			s.Intervals[i].Status = msg.Status
			s.Intervals[i].Count = msg.Count
			s.Intervals[i].Message = msg.Message
			return
		}
	}
	s.Intervals = append(s.Intervals, IntervalProgress{
		Interval: msg.Interval,
		Status:   msg.Status,
		Count:    msg.Count,
		Message:  msg.Message,
	})
}
