package alerter

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cxd19ojbk666/KlineMonitor/internal/server/database"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// Service 提醒服务，负责去重、落库和推送
type Service struct {
	db       *database.Manager
	notifier Notifier
	defaults types.MonitorConfig
}

// NewService 创建提醒服务
func NewService(db *database.Manager, notifier Notifier, defaults types.MonitorConfig) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
		defaults: defaults,
	}
}

// AlertVolume 触发交易量提醒，同币种同类型按提醒间隔去重
func (s *Service) AlertVolume(symbol string, data types.VolumeAlertData) error {
	interval := s.db.ConfigInt(database.KeyVolumeReminderInterval, s.defaults.VolumeReminderInterval)
	ok, err := s.passIntervalDedup(symbol, types.AlertTypeVolume, interval)
	if err != nil || !ok {
		return err
	}

	detail := fmt.Sprintf("15分钟交易量 %.2f 达到8小时交易量 %.2f 的 %.2f%%",
		data.Volume15m, data.Volume8h, data.Percent)
	return s.fire(symbol, types.AlertTypeVolume, "交易量放大", detail, data, "")
}

// AlertRise 触发涨幅提醒，同币种同类型按提醒间隔去重
func (s *Service) AlertRise(symbol string, data types.RiseAlertData) error {
	interval := s.db.ConfigInt(database.KeyRiseReminderInterval, s.defaults.RiseReminderInterval)
	ok, err := s.passIntervalDedup(symbol, types.AlertTypeRise, interval)
	if err != nil || !ok {
		return err
	}

	detail := fmt.Sprintf("15分钟涨幅 %.2f%% 超过阈值 %.2f%%（%.6f → %.6f）",
		data.RisePercent, data.Threshold, data.FirstOpen, data.LastClose)
	return s.fire(symbol, types.AlertTypeRise, "短时涨幅", detail, data, "")
}

// AlertOpenPrice 触发开盘价匹配提醒，同一(D,E)组合只提醒一次
func (s *Service) AlertOpenPrice(symbol string, data types.OpenPriceAlertData, dedupEnabled bool) error {
	if dedupEnabled {
		seen, err := s.db.HasDedupKey(symbol, types.AlertTypeOpenPrice, data.DedupKey)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}

	detail := fmt.Sprintf("%s周期开盘价匹配：D=%.6f E=%.6f 误差%.4f%% 中间K线%d根 间隔%d个周期",
		data.Interval, data.PriceD, data.PriceE, data.ErrorPercent, data.MiddleCount, data.IntervalCount)
	return s.fire(symbol, types.AlertTypeOpenPrice, "开盘价匹配", detail, data, data.DedupKey)
}

// passIntervalDedup 时间间隔去重，intervalMinutes分钟内同币种同类型只放行一次
func (s *Service) passIntervalDedup(symbol string, alertType, intervalMinutes int) (bool, error) {
	last, err := s.db.LastAlertTime(symbol, alertType)
	if err != nil {
		return false, err
	}
	if last != nil && types.NowCST().Sub(last.In(types.CST)) < time.Duration(intervalMinutes)*time.Minute {
		return false, nil
	}
	return true, nil
}

// fire 落库、记录去重状态并推送
func (s *Service) fire(symbol string, alertType int, typeName, detail string, data interface{}, dedupKey string) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化提醒数据失败: %v", err)
	}

	alert, err := s.db.SaveAlert(symbol, alertType, string(payload))
	if err != nil {
		return fmt.Errorf("保存提醒记录失败: %v", err)
	}

	if err := s.db.TouchDedup(symbol, alertType, dedupKey); err != nil {
		zap.L().Warn("记录提醒去重状态失败", zap.Error(err))
	}

	message := fmt.Sprintf("🔔 K线监控提醒\n类型: %s\n币种: %s\n时间: %s\n详情: %s",
		typeName, symbol, alert.CreatedAt.Format("2006-01-02 15:04:05"), detail)

	if err := s.notifier.SendText(message); err != nil {
		zap.L().Error("❌ 提醒推送失败", zap.String("symbol", symbol), zap.Error(err))
	} else {
		zap.L().Info("✅ 提醒已推送",
			zap.String("symbol", symbol),
			zap.Int("alert_type", alertType))
	}

	return nil
}
