package types

import (
	"encoding/json"
	"time"
)

// 提醒类型
const (
	AlertTypeVolume    = 1 // 交易量放大
	AlertTypeRise      = 2 // 短时涨幅
	AlertTypeOpenPrice = 3 // 开盘价匹配
)

// Symbol 监控币种
type Symbol struct {
	ID            uint      `json:"id"`
	Symbol        string    `json:"symbol"`
	IsActive      bool      `json:"is_active"`
	InitialSynced bool      `json:"initial_synced"`
	CreatedAt     time.Time `json:"created_at"`
}

// SymbolConfig 币种级监控参数，空字段继承全局配置
type SymbolConfig struct {
	ID             uint      `json:"id"`
	Symbol         string    `json:"symbol"`
	Interval       string    `json:"interval"`
	PriceError     *float64  `json:"price_error"`
	MiddleKlineCnt *int      `json:"middle_kline_cnt"`
	FakeKlineCnt   *int      `json:"fake_kline_cnt"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConfigItem 全局配置项，key形如 "1_volume_percent"
type ConfigItem struct {
	ID    uint   `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Alert 提醒记录，Data按AlertType解析
type Alert struct {
	ID        uint            `json:"id"`
	Symbol    string          `json:"symbol"`
	AlertType int             `json:"alert_type"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// VolumeAlertData 类型1提醒数据
type VolumeAlertData struct {
	Volume15m float64 `json:"volume_15m"`
	Volume8h  float64 `json:"volume_8h"`
	Percent   float64 `json:"percent"`
}

// RiseAlertData 类型2提醒数据
type RiseAlertData struct {
	RisePercent float64 `json:"rise_percent"`
	Threshold   float64 `json:"threshold"`
	FirstOpen   float64 `json:"first_open"`
	LastClose   float64 `json:"last_close"`
}

// OpenPriceAlertData 类型3提醒数据
type OpenPriceAlertData struct {
	Interval      string  `json:"interval"`
	PriceD        float64 `json:"price_d"`
	PriceE        float64 `json:"price_e"`
	TimeD         int64   `json:"time_d"`
	TimeE         int64   `json:"time_e"`
	ErrorPercent  float64 `json:"error_percent"`
	MiddleCount   int     `json:"middle_count"`
	IntervalCount int     `json:"interval_count"`
	DedupKey      string  `json:"dedup_key"`
}

// ParseAlertData 按提醒类型解析Data字段
func (a *Alert) ParseAlertData() (interface{}, error) {
	switch a.AlertType {
	case AlertTypeVolume:
		var d VolumeAlertData
		err := json.Unmarshal(a.Data, &d)
		return &d, err
	case AlertTypeRise:
		var d RiseAlertData
		err := json.Unmarshal(a.Data, &d)
		return &d, err
	case AlertTypeOpenPrice:
		var d OpenPriceAlertData
		err := json.Unmarshal(a.Data, &d)
		return &d, err
	default:
		var d map[string]interface{}
		err := json.Unmarshal(a.Data, &d)
		return d, err
	}
}

// KlineData K线数据
type KlineData struct {
	Symbol    string  `json:"symbol"`
	Interval  string  `json:"interval"`
	OpenTime  int64   `json:"open_time"` // 毫秒时间戳
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	CloseTime int64   `json:"close_time"`
}

// IsBullish 是否为阳线
func (k *KlineData) IsBullish() bool {
	return k.Close > k.Open
}

// MonitorMetrics 单币种监控指标快照
type MonitorMetrics struct {
	Volume15m          float64  `json:"volume_15m"`
	Volume8h           float64  `json:"volume_8h"`
	VolumePercent      float64  `json:"volume_percent"`
	VolumeTriggered    bool     `json:"volume_triggered"`
	RisePercent        float64  `json:"rise_percent"`
	RiseThreshold      float64  `json:"rise_threshold"`
	RiseTriggered      bool     `json:"rise_triggered"`
	OpenPriceMatches   int      `json:"open_price_matches"`
	OpenPriceIntervals []string `json:"open_price_intervals"`
}

// SymbolMonitorData 单币种监控数据
type SymbolMonitorData struct {
	Symbol       string         `json:"symbol"`
	Timestamp    time.Time      `json:"timestamp"`
	CurrentPrice float64        `json:"current_price"`
	Metrics      MonitorMetrics `json:"metrics"`
	Klines       []KlineData    `json:"klines"`
}

// DashboardStats 仪表盘统计
type DashboardStats struct {
	TotalAlertsToday   int64    `json:"total_alerts_today"`
	AlertType1Count    int64    `json:"alert_type_1_count"`
	AlertType2Count    int64    `json:"alert_type_2_count"`
	AlertType3Count    int64    `json:"alert_type_3_count"`
	ActiveSymbolsCount int64    `json:"active_symbols_count"`
	ActiveSymbols      []string `json:"active_symbols"`
	IsRunning          bool     `json:"is_running"`
	RecentAlerts       []Alert  `json:"recent_alerts"`
}

// Page 分页响应
type Page[T any] struct {
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}

// AvailableSymbols 可添加币种信息
type AvailableSymbols struct {
	TotalBinance int      `json:"total_binance"`
	Existing     int      `json:"existing"`
	Available    int      `json:"available"`
	Symbols      []string `json:"symbols"`
}

// InitProgress 初始同步进度
type InitProgress struct {
	Total          int64    `json:"total"`
	Initialized    int64    `json:"initialized"`
	Pending        int64    `json:"pending"`
	PendingSymbols []string `json:"pending_symbols"`
}

// LogFile 日志文件信息
type LogFile struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// LogContent 日志内容
type LogContent struct {
	File       string   `json:"file"`
	Lines      []string `json:"lines"`
	TotalLines int      `json:"total_lines"`
	Returned   int      `json:"returned"`
}

// SchedulerJob 调度任务信息
type SchedulerJob struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	NextRunTime time.Time `json:"next_run_time"`
}

// SchedulerStatus 调度器状态
type SchedulerStatus struct {
	IsRunning bool           `json:"is_running"`
	IsPaused  bool           `json:"is_paused"`
	Jobs      []SchedulerJob `json:"jobs"`
}

// PriceDataPoint 实时价格点，行情流写入缓存使用
type PriceDataPoint struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}
