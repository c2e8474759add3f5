package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// SymbolQuery 币种列表查询条件
type SymbolQuery struct {
	Skip     int
	Limit    int
	IsActive *bool
	Symbol   string
}

// ListSymbols 分页查询币种
func (c *Client) ListSymbols(ctx context.Context, q SymbolQuery) (*types.Page[types.Symbol], error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(q.Skip))
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.IsActive != nil {
		query.Set("is_active", strconv.FormatBool(*q.IsActive))
	}
	if q.Symbol != "" {
		query.Set("symbol", q.Symbol)
	}

	var page types.Page[types.Symbol]
	if err := c.get(ctx, "/symbols", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateSymbol 新增监控币种
func (c *Client) CreateSymbol(ctx context.Context, symbol string) (*types.Symbol, error) {
	var created types.Symbol
	err := c.post(ctx, "/symbols", nil, map[string]string{"symbol": symbol}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// InitProgress 查询初始同步进度
func (c *Client) InitProgress(ctx context.Context) (*types.InitProgress, error) {
	var progress types.InitProgress
	if err := c.get(ctx, "/symbols/init-progress", nil, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// AvailableSymbols 查询可添加的币种
func (c *Client) AvailableSymbols(ctx context.Context) (*types.AvailableSymbols, error) {
	var available types.AvailableSymbols
	if err := c.get(ctx, "/symbols/available", nil, &available); err != nil {
		return nil, err
	}
	return &available, nil
}

// ToggleSymbol 切换币种启用状态
func (c *Client) ToggleSymbol(ctx context.Context, symbol string) (*types.Symbol, error) {
	var updated types.Symbol
	if err := c.put(ctx, "/symbols/"+symbol+"/toggle", nil, nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// BatchActivate 批量设置币种启用状态，返回更新数量
func (c *Client) BatchActivate(ctx context.Context, symbols []string, isActive bool) (int64, error) {
	query := url.Values{"is_active": []string{strconv.FormatBool(isActive)}}
	var resp struct {
		Updated int64 `json:"updated"`
	}
	err := c.put(ctx, "/symbols/batch/activate", query, map[string][]string{"symbols": symbols}, &resp)
	return resp.Updated, err
}

// BatchDelete 批量删除币种，返回删除数量
func (c *Client) BatchDelete(ctx context.Context, symbols []string) (int64, error) {
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	err := c.do(ctx, "DELETE", "/symbols/batch", nil, map[string][]string{"symbols": symbols}, &resp)
	return resp.Deleted, err
}

// DeleteSymbol 删除单个币种
func (c *Client) DeleteSymbol(ctx context.Context, symbol string) error {
	return c.delete(ctx, "/symbols/"+symbol, nil, nil)
}

// ListConfigs 查询全局配置
func (c *Client) ListConfigs(ctx context.Context) ([]types.ConfigItem, error) {
	var items []types.ConfigItem
	if err := c.get(ctx, "/config", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetConfig 查询单个配置项
func (c *Client) GetConfig(ctx context.Context, key string) (*types.ConfigItem, error) {
	var item types.ConfigItem
	if err := c.get(ctx, "/config/"+key, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// SetConfig 更新单个配置项
func (c *Client) SetConfig(ctx context.Context, key, value string) (*types.ConfigItem, error) {
	var item types.ConfigItem
	err := c.put(ctx, "/config/"+key, nil, map[string]string{"value": value}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteConfig 删除配置项
func (c *Client) DeleteConfig(ctx context.Context, key string) error {
	return c.delete(ctx, "/config/"+key, nil, nil)
}

// BatchSetConfigs 批量更新配置
func (c *Client) BatchSetConfigs(ctx context.Context, values map[string]string) error {
	return c.post(ctx, "/config/batch", nil, values, nil)
}

// ListSymbolConfigs 分页查询币种级配置
func (c *Client) ListSymbolConfigs(ctx context.Context, skip, limit int) (*types.Page[types.SymbolConfig], error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var page types.Page[types.SymbolConfig]
	if err := c.get(ctx, "/config/symbol-configs", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SymbolConfigRequest 币种级配置创建或更新请求
type SymbolConfigRequest struct {
	Symbol         string   `json:"symbol"`
	Interval       string   `json:"interval"`
	PriceError     *float64 `json:"price_error,omitempty"`
	MiddleKlineCnt *int     `json:"middle_kline_cnt,omitempty"`
	FakeKlineCnt   *int     `json:"fake_kline_cnt,omitempty"`
}

// CreateSymbolConfig 新增币种级配置
func (c *Client) CreateSymbolConfig(ctx context.Context, req SymbolConfigRequest) (*types.SymbolConfig, error) {
	var created types.SymbolConfig
	if err := c.post(ctx, "/config/symbol-configs", nil, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpsertSymbolConfig 创建或更新币种级配置
func (c *Client) UpsertSymbolConfig(ctx context.Context, req SymbolConfigRequest) (*types.SymbolConfig, error) {
	var updated types.SymbolConfig
	path := "/config/symbol-configs/" + req.Symbol + "/" + req.Interval
	if err := c.put(ctx, path, nil, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteSymbolConfig 删除币种级配置
func (c *Client) DeleteSymbolConfig(ctx context.Context, symbol, interval string) error {
	return c.delete(ctx, "/config/symbol-configs/"+symbol+"/"+interval, nil, nil)
}

// AlertQuery 提醒查询条件
type AlertQuery struct {
	Skip      int
	Limit     int
	AlertType *int
	Symbol    string
	StartTime string
	EndTime   string
}

// ListAlerts 分页查询提醒记录
func (c *Client) ListAlerts(ctx context.Context, q AlertQuery) (*types.Page[types.Alert], error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(q.Skip))
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.AlertType != nil {
		query.Set("alert_type", strconv.Itoa(*q.AlertType))
	}
	if q.Symbol != "" {
		query.Set("symbol", q.Symbol)
	}
	if q.StartTime != "" {
		query.Set("start_time", q.StartTime)
	}
	if q.EndTime != "" {
		query.Set("end_time", q.EndTime)
	}

	var page types.Page[types.Alert]
	if err := c.get(ctx, "/alerts", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Dashboard 仪表盘统计
func (c *Client) Dashboard(ctx context.Context) (*types.DashboardStats, error) {
	var stats types.DashboardStats
	if err := c.get(ctx, "/alerts/dashboard", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// DeleteAlert 删除单条提醒
func (c *Client) DeleteAlert(ctx context.Context, id uint) error {
	return c.delete(ctx, "/alerts/"+strconv.FormatUint(uint64(id), 10), nil, nil)
}

// ClearAlerts 清空提醒，alertType为空时删除全部
func (c *Client) ClearAlerts(ctx context.Context, alertType *int) (int64, error) {
	query := url.Values{}
	if alertType != nil {
		query.Set("alert_type", strconv.Itoa(*alertType))
	}
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	err := c.delete(ctx, "/alerts", query, &resp)
	return resp.Deleted, err
}

// MonitorData 全部启用币种的监控快照
func (c *Client) MonitorData(ctx context.Context, interval string, limit int) ([]types.SymbolMonitorData, error) {
	query := url.Values{}
	if interval != "" {
		query.Set("interval", interval)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp struct {
		Total int                       `json:"total"`
		Items []types.SymbolMonitorData `json:"items"`
	}
	if err := c.get(ctx, "/monitor/data", query, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// SymbolMonitorData 单币种监控快照
func (c *Client) SymbolMonitorData(ctx context.Context, symbol, interval string, limit int) (*types.SymbolMonitorData, error) {
	query := url.Values{}
	if interval != "" {
		query.Set("interval", interval)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var data types.SymbolMonitorData
	if err := c.get(ctx, "/monitor/data/"+symbol, query, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// MonitorKlines 查询单币种历史K线
func (c *Client) MonitorKlines(ctx context.Context, symbol, interval string, limit int) ([]types.KlineData, error) {
	query := url.Values{}
	if interval != "" {
		query.Set("interval", interval)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp struct {
		Symbol   string            `json:"symbol"`
		Interval string            `json:"interval"`
		Total    int               `json:"total"`
		Items    []types.KlineData `json:"items"`
	}
	if err := c.get(ctx, "/monitor/klines/"+symbol, query, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// SchedulerStatus 调度器状态
func (c *Client) SchedulerStatus(ctx context.Context) (*types.SchedulerStatus, error) {
	var status types.SchedulerStatus
	if err := c.get(ctx, "/scheduler/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// PauseScheduler 暂停调度
func (c *Client) PauseScheduler(ctx context.Context) error {
	return c.post(ctx, "/scheduler/pause", nil, nil, nil)
}

// ResumeScheduler 恢复调度
func (c *Client) ResumeScheduler(ctx context.Context) error {
	return c.post(ctx, "/scheduler/resume", nil, nil, nil)
}

// LogFiles 列出日志文件
func (c *Client) LogFiles(ctx context.Context) ([]types.LogFile, error) {
	var resp struct {
		Total int             `json:"total"`
		Items []types.LogFile `json:"items"`
	}
	if err := c.get(ctx, "/logs/files", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// TodayLog 查看当日日志，logType可选 app|info|warning|error
func (c *Client) TodayLog(ctx context.Context, logType string) (*types.LogContent, error) {
	query := url.Values{}
	if logType != "" {
		query.Set("log_type", logType)
	}

	var content types.LogContent
	if err := c.get(ctx, "/logs/today", query, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// LogContent 查看日志文件内容
func (c *Client) LogContent(ctx context.Context, file string, lines int, search string) (*types.LogContent, error) {
	query := url.Values{}
	if lines > 0 {
		query.Set("lines", strconv.Itoa(lines))
	}
	if search != "" {
		query.Set("search", search)
	}

	var content types.LogContent
	if err := c.get(ctx, "/logs/content/"+file, query, &content); err != nil {
		return nil, err
	}
	return &content, nil
}
