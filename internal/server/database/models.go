package database

import (
	"time"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// Symbol 监控币种表
type Symbol struct {
	ID            uint      `gorm:"primaryKey"`
	Symbol        string    `gorm:"type:varchar(30);not null;uniqueIndex"`
	IsActive      bool      `gorm:"not null;default:true;index"`
	InitialSynced bool      `gorm:"not null;default:false;index"`
	CreatedAt     time.Time
}

// SymbolConfig 币种级监控参数表，空字段继承全局配置
type SymbolConfig struct {
	ID             uint     `gorm:"primaryKey"`
	Symbol         string   `gorm:"type:varchar(30);not null;uniqueIndex:uk_symbol_interval"`
	Interval       string   `gorm:"type:varchar(10);not null;uniqueIndex:uk_symbol_interval"`
	PriceError     *float64 `gorm:"type:decimal(10,4)"`
	MiddleKlineCnt *int
	FakeKlineCnt   *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ConfigEntry 全局配置表
type ConfigEntry struct {
	ID    uint   `gorm:"primaryKey"`
	Key   string `gorm:"column:config_key;type:varchar(64);not null;uniqueIndex"`
	Value string `gorm:"column:config_value;type:varchar(255);not null"`
}

// TableName 配置表名
func (ConfigEntry) TableName() string {
	return "configs"
}

// Alert 提醒记录表
type Alert struct {
	ID        uint   `gorm:"primaryKey"`
	Symbol    string `gorm:"type:varchar(30);not null;index"`
	AlertType int    `gorm:"not null;index"`
	Data      string `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
}

// AlertDedup 提醒去重表
type AlertDedup struct {
	ID            uint   `gorm:"primaryKey"`
	Symbol        string `gorm:"type:varchar(30);not null;uniqueIndex:uk_dedup"`
	AlertType     int    `gorm:"not null;uniqueIndex:uk_dedup"`
	DedupKey      string `gorm:"type:varchar(64);not null;uniqueIndex:uk_dedup"`
	LastAlertTime time.Time
}

// PriceKline K线数据表
type PriceKline struct {
	ID                  uint    `gorm:"primaryKey"`
	Symbol              string  `gorm:"type:varchar(30);not null;uniqueIndex:uk_symbol_interval_time"`
	Interval            string  `gorm:"column:kline_interval;type:varchar(10);not null;uniqueIndex:uk_symbol_interval_time"`
	OpenTime            int64   `gorm:"not null;uniqueIndex:uk_symbol_interval_time"`
	Open                float64 `gorm:"type:decimal(20,8);not null"`
	High                float64 `gorm:"type:decimal(20,8);not null"`
	Low                 float64 `gorm:"type:decimal(20,8);not null"`
	Close               float64 `gorm:"type:decimal(20,8);not null"`
	Volume              float64 `gorm:"type:decimal(30,8);not null"`
	CloseTime           int64   `gorm:"not null"`
	QuoteVolume         float64 `gorm:"type:decimal(30,8);not null;default:0"`
	Trades              int64   `gorm:"not null;default:0"`
	TakerBuyVolume      float64 `gorm:"type:decimal(30,8);not null;default:0"`
	TakerBuyQuoteVolume float64 `gorm:"type:decimal(30,8);not null;default:0"`
}

// ToAPI 转换为接口实体
func (s *Symbol) ToAPI() types.Symbol {
	return types.Symbol{
		ID:            s.ID,
		Symbol:        s.Symbol,
		IsActive:      s.IsActive,
		InitialSynced: s.InitialSynced,
		CreatedAt:     s.CreatedAt,
	}
}

// ToAPI 转换为接口实体
func (c *SymbolConfig) ToAPI() types.SymbolConfig {
	return types.SymbolConfig{
		ID:             c.ID,
		Symbol:         c.Symbol,
		Interval:       c.Interval,
		PriceError:     c.PriceError,
		MiddleKlineCnt: c.MiddleKlineCnt,
		FakeKlineCnt:   c.FakeKlineCnt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// ToAPI 转换为接口实体
func (c *ConfigEntry) ToAPI() types.ConfigItem {
	return types.ConfigItem{ID: c.ID, Key: c.Key, Value: c.Value}
}

// ToAPI 转换为接口实体
func (a *Alert) ToAPI() types.Alert {
	return types.Alert{
		ID:        a.ID,
		Symbol:    a.Symbol,
		AlertType: a.AlertType,
		Data:      []byte(a.Data),
		CreatedAt: a.CreatedAt,
	}
}

// ToAPI 转换为接口实体
func (k *PriceKline) ToAPI() types.KlineData {
	return types.KlineData{
		Symbol:    k.Symbol,
		Interval:  k.Interval,
		OpenTime:  k.OpenTime,
		Open:      k.Open,
		High:      k.High,
		Low:       k.Low,
		Close:     k.Close,
		Volume:    k.Volume,
		CloseTime: k.CloseTime,
	}
}
