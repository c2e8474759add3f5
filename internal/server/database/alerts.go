package database

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// ErrAlertNotFound 提醒记录不存在
var ErrAlertNotFound = errors.New("提醒记录不存在")

// AlertFilter 提醒查询条件
type AlertFilter struct {
	AlertType *int
	Symbol    string
	StartTime *time.Time
	EndTime   *time.Time
}

// ListAlerts 分页查询提醒记录，按时间倒序
func (m *Manager) ListAlerts(skip, limit int, filter AlertFilter) (int64, []Alert, error) {
	query := m.db.Model(&Alert{})
	if filter.AlertType != nil {
		query = query.Where("alert_type = ?", *filter.AlertType)
	}
	if filter.Symbol != "" {
		query = query.Where("symbol = ?", filter.Symbol)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var alerts []Alert
	err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&alerts).Error
	return total, alerts, err
}

// SaveAlert 保存提醒记录
func (m *Manager) SaveAlert(symbol string, alertType int, data string) (*Alert, error) {
	alert := Alert{
		Symbol:    symbol,
		AlertType: alertType,
		Data:      data,
		CreatedAt: types.NowCST(),
	}
	if err := m.db.Create(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// DeleteAlert 删除单条提醒
func (m *Manager) DeleteAlert(id uint) error {
	result := m.db.Delete(&Alert{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// DeleteAlerts 清空提醒，可按类型过滤，返回删除数量
func (m *Manager) DeleteAlerts(alertType *int) (int64, error) {
	query := m.db.Where("1 = 1")
	if alertType != nil {
		query = m.db.Where("alert_type = ?", *alertType)
	}
	result := query.Delete(&Alert{})
	return result.RowsAffected, result.Error
}

// GetDashboardStats 统计仪表盘数据
func (m *Manager) GetDashboardStats(isRunning bool) (*types.DashboardStats, error) {
	stats := &types.DashboardStats{IsRunning: isRunning}

	now := types.NowCST()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, types.CST)

	today := m.db.Model(&Alert{}).Where("created_at >= ?", dayStart)
	if err := today.Count(&stats.TotalAlertsToday).Error; err != nil {
		return nil, err
	}

	counts := []*int64{&stats.AlertType1Count, &stats.AlertType2Count, &stats.AlertType3Count}
	for i, count := range counts {
		err := m.db.Model(&Alert{}).
			Where("created_at >= ? AND alert_type = ?", dayStart, i+1).
			Count(count).Error
		if err != nil {
			return nil, err
		}
	}

	if err := m.db.Model(&Symbol{}).Where("is_active = ?", true).Count(&stats.ActiveSymbolsCount).Error; err != nil {
		return nil, err
	}
	if err := m.db.Model(&Symbol{}).Where("is_active = ?", true).
		Order("symbol ASC").Pluck("symbol", &stats.ActiveSymbols).Error; err != nil {
		return nil, err
	}

	var recent []Alert
	if err := m.db.Order("created_at DESC").Limit(30).Find(&recent).Error; err != nil {
		return nil, err
	}
	stats.RecentAlerts = make([]types.Alert, 0, len(recent))
	for i := range recent {
		stats.RecentAlerts = append(stats.RecentAlerts, recent[i].ToAPI())
	}

	return stats, nil
}

// LastAlertTime 查询币种某类型提醒的最近去重时间
func (m *Manager) LastAlertTime(symbol string, alertType int) (*time.Time, error) {
	var dedup AlertDedup
	err := m.db.Where("symbol = ? AND alert_type = ? AND dedup_key = ?", symbol, alertType, "").
		First(&dedup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dedup.LastAlertTime, nil
}

// HasDedupKey 判断开盘价匹配的去重键是否已提醒过
func (m *Manager) HasDedupKey(symbol string, alertType int, dedupKey string) (bool, error) {
	var count int64
	err := m.db.Model(&AlertDedup{}).
		Where("symbol = ? AND alert_type = ? AND dedup_key = ?", symbol, alertType, dedupKey).
		Count(&count).Error
	return count > 0, err
}

// TouchDedup 记录去重状态，时间间隔去重传空dedupKey
func (m *Manager) TouchDedup(symbol string, alertType int, dedupKey string) error {
	var dedup AlertDedup
	err := m.db.Where("symbol = ? AND alert_type = ? AND dedup_key = ?", symbol, alertType, dedupKey).
		First(&dedup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m.db.Create(&AlertDedup{
			Symbol:        symbol,
			AlertType:     alertType,
			DedupKey:      dedupKey,
			LastAlertTime: types.NowCST(),
		}).Error
	}
	if err != nil {
		return err
	}
	return m.db.Model(&dedup).Update("last_alert_time", types.NowCST()).Error
}
