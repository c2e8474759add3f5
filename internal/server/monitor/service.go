package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cxd19ojbk666/KlineMonitor/internal/server/alerter"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/database"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/storage"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// openPriceIntervals 开盘价匹配检查覆盖的周期
var openPriceIntervals = []string{"15m", "30m", "1h", "4h", "1d", "3d"}

// Service 监控服务，对启用币种执行三类检查
type Service struct {
	db       *database.Manager
	cache    *storage.PriceCache
	alerts   *alerter.Service
	defaults types.MonitorConfig
}

// NewService 创建监控服务
func NewService(db *database.Manager, cache *storage.PriceCache, alerts *alerter.Service, defaults types.MonitorConfig) *Service {
	return &Service{
		db:       db,
		cache:    cache,
		alerts:   alerts,
		defaults: defaults,
	}
}

// evaluate 计算监控指标，不触发提醒
func (s *Service) evaluate(symbol string) (types.MonitorMetrics, VolumeResult, RiseResult, map[string]types.OpenPriceAlertData, error) {
	var metrics types.MonitorMetrics

	klines, err := s.closedMinuteKlines(symbol)
	if err != nil {
		return metrics, VolumeResult{}, RiseResult{}, nil, err
	}

	volumePercent := s.db.ConfigFloat(database.KeyVolumePercent, s.defaults.VolumePercent)
	volume := CheckVolume(klines, volumePercent)
	metrics.Volume15m = volume.Volume15m
	metrics.Volume8h = volume.Volume8h
	metrics.VolumePercent = volume.Percent
	metrics.VolumeTriggered = volume.Triggered

	riseThreshold := s.db.ConfigFloat(database.KeyRisePercent, s.defaults.RisePercent)
	rise := CheckRise(klines, riseThreshold)
	metrics.RisePercent = rise.RisePercent
	metrics.RiseThreshold = rise.Threshold
	metrics.RiseTriggered = rise.Triggered

	matchByInterval := make(map[string]types.OpenPriceAlertData)
	for _, interval := range openPriceIntervals {
		params := s.db.ResolveOpenPriceParams(symbol, interval, s.defaults)
		bullish, err := s.db.BullishKlinesDesc(symbol, interval, s.defaults.MaxLookbackDays)
		if err != nil {
			zap.L().Warn("查询阳线失败",
				zap.String("symbol", symbol),
				zap.String("interval", interval),
				zap.Error(err))
			continue
		}

		match := CheckOpenPrice(symbol, interval, database.ToAPIKlines(bullish), OpenPriceParams{
			PriceError:     params.PriceError,
			MiddleKlineCnt: params.MiddleKlineCnt,
			FakeKlineCnt:   params.FakeKlineCnt,
		})
		if match != nil {
			matchByInterval[interval] = *match
			metrics.OpenPriceMatches++
			metrics.OpenPriceIntervals = append(metrics.OpenPriceIntervals, interval)
		}
	}

	return metrics, volume, rise, matchByInterval, nil
}

// CheckSymbol 对单个币种执行全部检查并触发提醒
func (s *Service) CheckSymbol(ctx context.Context, symbol string) (*types.MonitorMetrics, error) {
	metrics, volume, rise, matchByInterval, err := s.evaluate(symbol)
	if err != nil {
		return nil, err
	}

	if volume.Triggered {
		err := s.alerts.AlertVolume(symbol, types.VolumeAlertData{
			Volume15m: volume.Volume15m,
			Volume8h:  volume.Volume8h,
			Percent:   volume.Percent,
		})
		if err != nil {
			zap.L().Error("❌ 交易量提醒失败", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	if rise.Triggered {
		err := s.alerts.AlertRise(symbol, types.RiseAlertData{
			RisePercent: rise.RisePercent,
			Threshold:   rise.Threshold,
			FirstOpen:   rise.FirstOpen,
			LastClose:   rise.LastClose,
		})
		if err != nil {
			zap.L().Error("❌ 涨幅提醒失败", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	for interval, match := range matchByInterval {
		params := s.db.ResolveOpenPriceParams(symbol, interval, s.defaults)
		if err := s.alerts.AlertOpenPrice(symbol, match, params.DedupEnabled); err != nil {
			zap.L().Error("❌ 开盘价匹配提醒失败", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	return &metrics, nil
}

// RunAll 对一组币种顺序执行检查，返回成功检查的数量
func (s *Service) RunAll(ctx context.Context, symbols []string) int {
	checked := 0
	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			return checked
		default:
		}

		if _, err := s.CheckSymbol(ctx, symbol); err != nil {
			zap.L().Warn("币种检查失败", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		checked++
	}
	return checked
}

// MonitorData 组装单币种监控数据快照，只读不触发提醒
func (s *Service) MonitorData(symbol, klineInterval string, limit int) (*types.SymbolMonitorData, error) {
	metrics, _, _, _, err := s.evaluate(symbol)
	if err != nil {
		return nil, err
	}

	if klineInterval == "" {
		klineInterval = "1m"
	}
	if limit <= 0 {
		limit = 60
	}

	klines, err := s.db.RecentKlines(symbol, klineInterval, limit)
	if err != nil {
		return nil, err
	}
	// 倒序转正序
	apiKlines := database.ToAPIKlines(klines)
	for i, j := 0, len(apiKlines)-1; i < j; i, j = i+1, j-1 {
		apiKlines[i], apiKlines[j] = apiKlines[j], apiKlines[i]
	}

	data := &types.SymbolMonitorData{
		Symbol:    symbol,
		Timestamp: types.NowCST(),
		Metrics:   metrics,
		Klines:    apiKlines,
	}

	if price, ok := s.cache.LatestPrice(symbol); ok {
		data.CurrentPrice = price
	} else if len(apiKlines) > 0 {
		data.CurrentPrice = apiKlines[len(apiKlines)-1].Close
	}

	return data, nil
}

// closedMinuteKlines 查询最近8小时已收盘的1分钟K线，按时间正序
func (s *Service) closedMinuteKlines(symbol string) ([]types.KlineData, error) {
	raw, err := s.db.RecentKlines(symbol, "1m", baseWindowKlines+1)
	if err != nil {
		return nil, err
	}

	nowMilli := time.Now().UnixMilli()
	klines := make([]types.KlineData, 0, len(raw))
	// 倒序转正序，跳过未收盘的K线
	for i := len(raw) - 1; i >= 0; i-- {
		k := raw[i].ToAPI()
		if k.CloseTime > nowMilli {
			continue
		}
		klines = append(klines, k)
	}
	return klines, nil
}
