package types

import "encoding/json"

// SSE事件类型
const (
	EventConnected       = "connected"
	EventSyncComplete    = "sync_complete"
	EventMonitorComplete = "monitor_complete"
	EventSchedulerStatus = "scheduler_status"
)

// Event /api/events 推送的事件
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// 批量添加进度阶段
const (
	PhaseFetch    = "fetch"
	PhaseInfo     = "info"
	PhaseAdding   = "adding"
	PhaseComplete = "complete"
	PhaseError    = "error"
)

// 单项同步状态
const (
	StatusSyncing = "syncing"
	StatusDone    = "done"
	StatusError   = "error"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// BulkAddMessage 批量添加币种SSE消息
type BulkAddMessage struct {
	Phase    string `json:"phase"`
	Total    int    `json:"total,omitempty"`
	Existing int    `json:"existing,omitempty"`
	Progress int    `json:"progress,omitempty"`
	Current  int    `json:"current,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
	Status   string `json:"status,omitempty"`
	Added    int    `json:"added,omitempty"`
	Failed   int    `json:"failed,omitempty"`
	Synced   int64  `json:"synced,omitempty"`
	Message  string `json:"message,omitempty"`
}

// SyncMessage 单币种历史同步SSE消息
type SyncMessage struct {
	Progress int    `json:"progress"`
	Interval string `json:"interval,omitempty"`
	Status   string `json:"status"`
	Count    int64  `json:"count,omitempty"`
	Message  string `json:"message,omitempty"`
}

// DecodeBulkAddMessage 解析批量添加进度消息
func DecodeBulkAddMessage(data []byte) (*BulkAddMessage, error) {
	var msg BulkAddMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodeSyncMessage 解析同步进度消息
func DecodeSyncMessage(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
