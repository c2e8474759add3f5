package database

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// 全局配置键
const (
	KeyVolumePercent          = "1_volume_percent"
	KeyVolumeReminderInterval = "1_reminder_interval"
	KeyRisePercent            = "2_rise_percent"
	KeyRiseReminderInterval   = "2_reminder_interval"
	KeyPriceError             = "3_price_error"
	KeyMiddleKlineCnt         = "3_middle_kline_cnt"
	KeyFakeKlineCnt           = "3_fake_kline_cnt"
	KeyDedupEnabled           = "3_dedup_enabled"
)

// Manager 数据库管理器
type Manager struct {
	db     *gorm.DB
	config types.MySQLConfig
}

// NewManager 创建数据库管理器
func NewManager(config types.MySQLConfig) (*Manager, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.Username,
		config.Password,
		config.Host,
		config.Port,
		config.Database,
	)

	// 配置GORM日志
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // 生产环境使用Silent
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %v", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取数据库实例失败: %v", err)
	}

	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	manager := &Manager{
		db:     db,
		config: config,
	}

	// 自动迁移表结构
	if err := manager.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %v", err)
	}

	zap.L().Info("✅ MySQL数据库连接成功",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.String("database", config.Database))

	return manager, nil
}

// AutoMigrate 自动迁移表结构
func (m *Manager) AutoMigrate() error {
	return m.db.AutoMigrate(
		&Symbol{},
		&SymbolConfig{},
		&ConfigEntry{},
		&Alert{},
		&AlertDedup{},
		&PriceKline{},
	)
}

// SeedDefaultConfigs 写入缺失的默认配置项，已存在的键不覆盖
func (m *Manager) SeedDefaultConfigs(cfg types.MonitorConfig) error {
	defaults := DefaultConfigs(cfg)

	for key, value := range defaults {
		var count int64
		if err := m.db.Model(&ConfigEntry{}).Where("config_key = ?", key).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := m.db.Create(&ConfigEntry{Key: key, Value: value}).Error; err != nil {
			return fmt.Errorf("写入默认配置失败 %s: %v", key, err)
		}
	}

	return nil
}

// DefaultConfigs 监控默认参数转配置键值
func DefaultConfigs(cfg types.MonitorConfig) map[string]string {
	return map[string]string{
		KeyVolumePercent:          strconv.FormatFloat(cfg.VolumePercent, 'f', -1, 64),
		KeyVolumeReminderInterval: strconv.Itoa(cfg.VolumeReminderInterval),
		KeyRisePercent:            strconv.FormatFloat(cfg.RisePercent, 'f', -1, 64),
		KeyRiseReminderInterval:   strconv.Itoa(cfg.RiseReminderInterval),
		KeyPriceError:             strconv.FormatFloat(cfg.PriceError, 'f', -1, 64),
		KeyMiddleKlineCnt:         strconv.Itoa(cfg.MiddleKlineCnt),
		KeyFakeKlineCnt:           strconv.Itoa(cfg.FakeKlineCnt),
		KeyDedupEnabled:           strconv.FormatBool(cfg.DedupEnabled),
	}
}

// DB 暴露底层连接，仅供查询辅助使用
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health 检查数据库连接健康状态
func (m *Manager) Health() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
