package database

import (
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// ErrConfigNotFound 配置项不存在
var ErrConfigNotFound = errors.New("配置项不存在")

// ErrSymbolConfigExists 币种配置已存在
var ErrSymbolConfigExists = errors.New("币种配置已存在")

// ErrSymbolConfigNotFound 币种配置不存在
var ErrSymbolConfigNotFound = errors.New("币种配置不存在")

// ListConfigs 查询全部全局配置
func (m *Manager) ListConfigs() ([]ConfigEntry, error) {
	var entries []ConfigEntry
	err := m.db.Order("config_key ASC").Find(&entries).Error
	return entries, err
}

// GetConfig 按键查询配置
func (m *Manager) GetConfig(key string) (*ConfigEntry, error) {
	var entry ConfigEntry
	err := m.db.Where("config_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetConfig 写入配置，存在则更新
func (m *Manager) SetConfig(key, value string) (*ConfigEntry, error) {
	entry, err := m.GetConfig(key)
	if errors.Is(err, ErrConfigNotFound) {
		entry = &ConfigEntry{Key: key, Value: value}
		return entry, m.db.Create(entry).Error
	}
	if err != nil {
		return nil, err
	}

	entry.Value = value
	return entry, m.db.Model(entry).Update("config_value", value).Error
}

// DeleteConfig 删除配置项
func (m *Manager) DeleteConfig(key string) error {
	result := m.db.Where("config_key = ?", key).Delete(&ConfigEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConfigNotFound
	}
	return nil
}

// BatchSetConfigs 批量写入配置
func (m *Manager) BatchSetConfigs(items map[string]string) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range items {
			var entry ConfigEntry
			err := tx.Where("config_key = ?", key).First(&entry).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := tx.Create(&ConfigEntry{Key: key, Value: value}).Error; err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return err
			}
			if err := tx.Model(&entry).Update("config_value", value).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ConfigFloat 读取浮点配置，缺失或非法时返回默认值
func (m *Manager) ConfigFloat(key string, fallback float64) float64 {
	entry, err := m.GetConfig(key)
	if err != nil {
		return fallback
	}
	value, err := strconv.ParseFloat(entry.Value, 64)
	if err != nil {
		return fallback
	}
	return value
}

// ConfigInt 读取整型配置，缺失或非法时返回默认值
func (m *Manager) ConfigInt(key string, fallback int) int {
	entry, err := m.GetConfig(key)
	if err != nil {
		return fallback
	}
	value, err := strconv.Atoi(entry.Value)
	if err != nil {
		return fallback
	}
	return value
}

// ConfigBool 读取布尔配置，缺失或非法时返回默认值
func (m *Manager) ConfigBool(key string, fallback bool) bool {
	entry, err := m.GetConfig(key)
	if err != nil {
		return fallback
	}
	value, err := strconv.ParseBool(entry.Value)
	if err != nil {
		return fallback
	}
	return value
}

// ListSymbolConfigs 分页查询币种级配置
func (m *Manager) ListSymbolConfigs(skip, limit int, symbol string) (int64, []SymbolConfig, error) {
	query := m.db.Model(&SymbolConfig{})
	if symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var configs []SymbolConfig
	err := query.Order("symbol ASC, `interval` ASC").Offset(skip).Limit(limit).Find(&configs).Error
	return total, configs, err
}

// GetSymbolConfig 查询指定币种和周期的配置
func (m *Manager) GetSymbolConfig(symbol, interval string) (*SymbolConfig, error) {
	var config SymbolConfig
	err := m.db.Where("symbol = ? AND `interval` = ?", symbol, interval).First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSymbolConfigNotFound
	}
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// CreateSymbolConfig 新增币种配置，重复时返回ErrSymbolConfigExists
func (m *Manager) CreateSymbolConfig(config *SymbolConfig) error {
	if _, err := m.GetSymbolConfig(config.Symbol, config.Interval); err == nil {
		return ErrSymbolConfigExists
	} else if !errors.Is(err, ErrSymbolConfigNotFound) {
		return err
	}

	now := types.NowCST()
	config.CreatedAt = now
	config.UpdatedAt = now
	return m.db.Create(config).Error
}

// UpsertSymbolConfig 写入币种配置，存在则更新
func (m *Manager) UpsertSymbolConfig(config *SymbolConfig) error {
	existing, err := m.GetSymbolConfig(config.Symbol, config.Interval)
	if errors.Is(err, ErrSymbolConfigNotFound) {
		return m.CreateSymbolConfig(config)
	}
	if err != nil {
		return err
	}

	return m.db.Model(existing).Updates(map[string]interface{}{
		"price_error":      config.PriceError,
		"middle_kline_cnt": config.MiddleKlineCnt,
		"fake_kline_cnt":   config.FakeKlineCnt,
		"updated_at":       types.NowCST(),
	}).Error
}

// DeleteSymbolConfig 删除币种配置
func (m *Manager) DeleteSymbolConfig(symbol, interval string) error {
	result := m.db.Where("symbol = ? AND `interval` = ?", symbol, interval).Delete(&SymbolConfig{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSymbolConfigNotFound
	}
	return nil
}

// OpenPriceParams 开盘价匹配参数
type OpenPriceParams struct {
	PriceError     float64
	MiddleKlineCnt int
	FakeKlineCnt   int
	DedupEnabled   bool
}

// ResolveOpenPriceParams 解析开盘价匹配参数，币种级配置优先于全局配置
func (m *Manager) ResolveOpenPriceParams(symbol, interval string, defaults types.MonitorConfig) OpenPriceParams {
	params := OpenPriceParams{
		PriceError:     m.ConfigFloat(KeyPriceError, defaults.PriceError),
		MiddleKlineCnt: m.ConfigInt(KeyMiddleKlineCnt, defaults.MiddleKlineCnt),
		FakeKlineCnt:   m.ConfigInt(KeyFakeKlineCnt, defaults.FakeKlineCnt),
		DedupEnabled:   m.ConfigBool(KeyDedupEnabled, defaults.DedupEnabled),
	}

	override, err := m.GetSymbolConfig(symbol, interval)
	if err != nil {
		return params
	}

	if override.PriceError != nil {
		params.PriceError = *override.PriceError
	}
	if override.MiddleKlineCnt != nil {
		params.MiddleKlineCnt = *override.MiddleKlineCnt
	}
	if override.FakeKlineCnt != nil {
		params.FakeKlineCnt = *override.FakeKlineCnt
	}
	return params
}
