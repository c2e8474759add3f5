package monitor

import (
	"fmt"
	"time"

	"github.com/cxd19ojbk666/KlineMonitor/internal/server/binance"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

const (
	volumeWindowKlines = 15  // 15分钟窗口对应的1分钟K线数
	baseWindowKlines   = 480 // 8小时基准窗口对应的1分钟K线数
	riseWindowKlines   = 15
)

// VolumeResult 交易量检查结果
type VolumeResult struct {
	Volume15m float64
	Volume8h  float64
	Percent   float64
	Triggered bool
}

// CheckVolume 交易量放大检查。
// klines为按时间正序的已收盘1分钟K线，最近15根的交易量之和
// 达到最近480根之和的percent%时触发。
func CheckVolume(klines []types.KlineData, percent float64) VolumeResult {
	result := VolumeResult{Percent: percent}
	if len(klines) < volumeWindowKlines {
		return result
	}

	base := klines
	if len(base) > baseWindowKlines {
		base = base[len(base)-baseWindowKlines:]
	}
	for _, k := range base {
		result.Volume8h += k.Volume
	}

	recent := klines[len(klines)-volumeWindowKlines:]
	for _, k := range recent {
		result.Volume15m += k.Volume
	}

	if result.Volume8h > 0 {
		result.Triggered = result.Volume15m >= result.Volume8h*percent/100
	}
	return result
}

// RiseResult 涨幅检查结果
type RiseResult struct {
	RisePercent float64
	Threshold   float64
	FirstOpen   float64
	LastClose   float64
	Triggered   bool
}

// CheckRise 短时涨幅检查。
// klines为按时间正序的已收盘1分钟K线，最近15根的首开盘价到
// 末收盘价涨幅达到threshold%时触发。
func CheckRise(klines []types.KlineData, threshold float64) RiseResult {
	result := RiseResult{Threshold: threshold}
	if len(klines) < riseWindowKlines {
		return result
	}

	window := klines[len(klines)-riseWindowKlines:]
	result.FirstOpen = window[0].Open
	result.LastClose = window[len(window)-1].Close

	if result.FirstOpen <= 0 {
		return result
	}

	result.RisePercent = (result.LastClose - result.FirstOpen) / result.FirstOpen * 100
	result.Triggered = result.RisePercent >= threshold
	return result
}

// OpenPriceParams 开盘价匹配参数
type OpenPriceParams struct {
	PriceError     float64 // 开盘价误差上限，百分比
	MiddleKlineCnt int     // D与E之间最少间隔的阳线数
	FakeKlineCnt   int     // 中间低开阳线的数量上限
}

// CheckOpenPrice 开盘价匹配检查。
// bullish为回看窗口内按时间倒序的阳线，D为最新阳线，向前扫描
// 历史阳线E：跳过与D间隔不足MiddleKlineCnt的候选，D与E开盘价
// 误差在上限内且两者之间开盘价低于均值的阳线不超过上限时，
// 返回最近的一组匹配，每轮检查每个周期至多提醒一次。
func CheckOpenPrice(symbol, interval string, bullish []types.KlineData, params OpenPriceParams) *types.OpenPriceAlertData {
	if len(bullish) < 2 {
		return nil
	}

	d := bullish[0]

	for i := 1; i < len(bullish); i++ {
		if i < params.MiddleKlineCnt {
			continue
		}
		e := bullish[i]

		minPrice := d.Open
		if e.Open < minPrice {
			minPrice = e.Open
		}
		if minPrice <= 0 {
			continue
		}

		diff := d.Open - e.Open
		if diff < 0 {
			diff = -diff
		}
		errorPercent := diff / minPrice * 100
		if errorPercent > params.PriceError {
			continue
		}

		// 中间低开阳线过多视为假突破结构
		avg := (d.Open + e.Open) / 2
		fakeCount := 0
		for _, mid := range bullish[1:i] {
			if mid.Open < avg {
				fakeCount++
			}
		}
		if fakeCount > params.FakeKlineCnt {
			continue
		}

		intervalCount := 0
		if minutes := binance.IntervalMinutes(interval); minutes > 0 {
			intervalCount = int((d.OpenTime - e.OpenTime) / int64(minutes) / 60000)
		}

		return &types.OpenPriceAlertData{
			Interval:      interval,
			PriceD:        d.Open,
			PriceE:        e.Open,
			TimeD:         d.OpenTime,
			TimeE:         e.OpenTime,
			ErrorPercent:  errorPercent,
			MiddleCount:   fakeCount,
			IntervalCount: intervalCount,
			DedupKey:      DedupKey(interval, d.OpenTime, e.OpenTime),
		}
	}

	return nil
}

// DedupKey 开盘价匹配去重键，格式为 周期_D时间_E时间
func DedupKey(interval string, timeD, timeE int64) string {
	format := "200601021504"
	return fmt.Sprintf("%s_%s_%s",
		interval,
		time.UnixMilli(timeD).In(types.CST).Format(format),
		time.UnixMilli(timeE).In(types.CST).Format(format))
}
