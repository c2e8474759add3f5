package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// BatchUpsertKlines 批量写入K线，open_time冲突时更新，返回写入数量
func (m *Manager) BatchUpsertKlines(klines []PriceKline) (int64, error) {
	if len(klines) == 0 {
		return 0, nil
	}

	// 分批处理避免单个事务过大
	batchSize := 100
	var saved int64
	for i := 0; i < len(klines); i += batchSize {
		end := i + batchSize
		if end > len(klines) {
			end = len(klines)
		}

		batch := klines[i:end]
		err := m.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "symbol"}, {Name: "kline_interval"}, {Name: "open_time"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"open", "high", "low", "close", "volume", "close_time",
				"quote_volume", "trades", "taker_buy_volume", "taker_buy_quote_volume",
			}),
		}).CreateInBatches(batch, len(batch)).Error
		if err != nil {
			return saved, fmt.Errorf("批量写入K线数据失败: %v", err)
		}
		saved += int64(len(batch))
	}

	zap.L().Debug("✅ 批量写入K线数据完成",
		zap.Int64("count", saved),
		zap.String("symbol", klines[0].Symbol),
		zap.String("interval", klines[0].Interval))

	return saved, nil
}

// LatestKline 查询指定币种和周期最新的一根K线
func (m *Manager) LatestKline(symbol, interval string) (*PriceKline, error) {
	var kline PriceKline
	err := m.db.Where("symbol = ? AND kline_interval = ?", symbol, interval).
		Order("open_time DESC").First(&kline).Error
	if err != nil {
		return nil, err
	}
	return &kline, nil
}

// RecentKlines 查询最近limit根K线，按开盘时间倒序
func (m *Manager) RecentKlines(symbol, interval string, limit int) ([]PriceKline, error) {
	var klines []PriceKline
	err := m.db.Where("symbol = ? AND kline_interval = ?", symbol, interval).
		Order("open_time DESC").Limit(limit).Find(&klines).Error
	return klines, err
}

// KlinesSince 查询指定时间之后的K线，按开盘时间正序
func (m *Manager) KlinesSince(symbol, interval string, since time.Time) ([]PriceKline, error) {
	var klines []PriceKline
	err := m.db.Where("symbol = ? AND kline_interval = ? AND open_time >= ?",
		symbol, interval, since.UnixMilli()).
		Order("open_time ASC").Find(&klines).Error
	return klines, err
}

// BullishKlinesDesc 查询回看窗口内的阳线，按开盘时间倒序
func (m *Manager) BullishKlinesDesc(symbol, interval string, lookbackDays int) ([]PriceKline, error) {
	cutoff := types.NowCST().AddDate(0, 0, -lookbackDays)

	var klines []PriceKline
	err := m.db.Where("symbol = ? AND kline_interval = ? AND open_time >= ? AND close > open",
		symbol, interval, cutoff.UnixMilli()).
		Order("open_time DESC").Find(&klines).Error
	return klines, err
}

// CountKlines 统计K线数量
func (m *Manager) CountKlines(symbol, interval string) (int64, error) {
	var count int64
	err := m.db.Model(&PriceKline{}).
		Where("symbol = ? AND kline_interval = ?", symbol, interval).Count(&count).Error
	return count, err
}

// CleanupKlines 按保留天数清理过期K线，返回删除数量
func (m *Manager) CleanupKlines(interval string, retentionDays int) (int64, error) {
	cutoff := types.NowCST().AddDate(0, 0, -retentionDays)
	result := m.db.Where("kline_interval = ? AND open_time < ?", interval, cutoff.UnixMilli()).
		Delete(&PriceKline{})
	return result.RowsAffected, result.Error
}

// ToAPIKlines 批量转换为接口实体
func ToAPIKlines(klines []PriceKline) []types.KlineData {
	out := make([]types.KlineData, 0, len(klines))
	for i := range klines {
		out = append(out, klines[i].ToAPI())
	}
	return out
}
