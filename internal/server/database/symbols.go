package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// ErrSymbolExists 币种已存在
var ErrSymbolExists = errors.New("币种已存在")

// ErrSymbolNotFound 币种不存在
var ErrSymbolNotFound = errors.New("币种不存在")

// ListSymbols 分页查询币种，支持启用状态和名称模糊过滤
func (m *Manager) ListSymbols(skip, limit int, isActive *bool, symbolLike string) (int64, []Symbol, error) {
	query := m.db.Model(&Symbol{})
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	if symbolLike != "" {
		query = query.Where("symbol LIKE ?", "%"+symbolLike+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var symbols []Symbol
	err := query.Order("symbol ASC").Offset(skip).Limit(limit).Find(&symbols).Error
	return total, symbols, err
}

// GetSymbol 按名称查询币种
func (m *Manager) GetSymbol(name string) (*Symbol, error) {
	var symbol Symbol
	err := m.db.Where("symbol = ?", name).First(&symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSymbolNotFound
	}
	if err != nil {
		return nil, err
	}
	return &symbol, nil
}

// CreateSymbol 新增币种，重复时返回ErrSymbolExists
func (m *Manager) CreateSymbol(name string) (*Symbol, error) {
	var count int64
	if err := m.db.Model(&Symbol{}).Where("symbol = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSymbolExists
	}

	symbol := Symbol{
		Symbol:    name,
		IsActive:  true,
		CreatedAt: types.NowCST(),
	}
	if err := m.db.Create(&symbol).Error; err != nil {
		return nil, fmt.Errorf("新增币种失败: %v", err)
	}
	return &symbol, nil
}

// DeleteSymbol 删除币种及其K线和币种级配置
func (m *Manager) DeleteSymbol(name string) error {
	if _, err := m.GetSymbol(name); err != nil {
		return err
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("symbol = ?", name).Delete(&PriceKline{}).Error; err != nil {
			return err
		}
		if err := tx.Where("symbol = ?", name).Delete(&SymbolConfig{}).Error; err != nil {
			return err
		}
		return tx.Where("symbol = ?", name).Delete(&Symbol{}).Error
	})
}

// ToggleSymbol 切换币种启用状态
func (m *Manager) ToggleSymbol(name string) (*Symbol, error) {
	symbol, err := m.GetSymbol(name)
	if err != nil {
		return nil, err
	}

	symbol.IsActive = !symbol.IsActive
	if err := m.db.Model(symbol).Update("is_active", symbol.IsActive).Error; err != nil {
		return nil, err
	}
	return symbol, nil
}

// BatchSetActive 批量设置启用状态，返回影响行数
func (m *Manager) BatchSetActive(names []string, active bool) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}
	result := m.db.Model(&Symbol{}).Where("symbol IN ?", names).Update("is_active", active)
	return result.RowsAffected, result.Error
}

// BatchDelete 批量删除币种及其关联数据，返回删除数量
func (m *Manager) BatchDelete(names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}

	var deleted int64
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("symbol IN ?", names).Delete(&PriceKline{}).Error; err != nil {
			return err
		}
		if err := tx.Where("symbol IN ?", names).Delete(&SymbolConfig{}).Error; err != nil {
			return err
		}
		result := tx.Where("symbol IN ?", names).Delete(&Symbol{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}

// MarkInitialSynced 标记币种完成初始同步
func (m *Manager) MarkInitialSynced(name string) error {
	return m.db.Model(&Symbol{}).Where("symbol = ?", name).Update("initial_synced", true).Error
}

// ActiveSymbols 查询全部启用币种
func (m *Manager) ActiveSymbols() ([]Symbol, error) {
	var symbols []Symbol
	err := m.db.Where("is_active = ?", true).Order("symbol ASC").Find(&symbols).Error
	return symbols, err
}

// InitializedActiveSymbols 查询已完成初始同步的启用币种
func (m *Manager) InitializedActiveSymbols() ([]Symbol, error) {
	var symbols []Symbol
	err := m.db.Where("is_active = ? AND initial_synced = ?", true, true).
		Order("symbol ASC").Find(&symbols).Error
	return symbols, err
}

// UninitializedSymbols 查询待初始同步的币种，限制数量
func (m *Manager) UninitializedSymbols(limit int) ([]Symbol, error) {
	var symbols []Symbol
	err := m.db.Where("initial_synced = ?", false).
		Order("created_at ASC").Limit(limit).Find(&symbols).Error
	return symbols, err
}

// AllSymbolNames 查询全部币种名称
func (m *Manager) AllSymbolNames() ([]string, error) {
	var names []string
	err := m.db.Model(&Symbol{}).Order("symbol ASC").Pluck("symbol", &names).Error
	return names, err
}

// GetInitProgress 统计初始同步进度
func (m *Manager) GetInitProgress() (*types.InitProgress, error) {
	var progress types.InitProgress

	if err := m.db.Model(&Symbol{}).Count(&progress.Total).Error; err != nil {
		return nil, err
	}
	if err := m.db.Model(&Symbol{}).Where("initial_synced = ?", true).Count(&progress.Initialized).Error; err != nil {
		return nil, err
	}
	progress.Pending = progress.Total - progress.Initialized

	err := m.db.Model(&Symbol{}).Where("initial_synced = ?", false).
		Order("symbol ASC").Pluck("symbol", &progress.PendingSymbols).Error
	return &progress, err
}
