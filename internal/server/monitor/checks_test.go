package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// minuteKlines 生成count根1分钟K线，交易量统一为volume
func minuteKlines(count int, volume float64) []types.KlineData {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	klines := make([]types.KlineData, 0, count)
	for i := 0; i < count; i++ {
		open := base + int64(i)*60000
		klines = append(klines, types.KlineData{
			Symbol:    "BTCUSDT",
			Interval:  "1m",
			OpenTime:  open,
			Open:      100,
			High:      101,
			Low:       99,
			Close:     100,
			Volume:    volume,
			CloseTime: open + 59999,
		})
	}
	return klines
}

func TestCheckVolumeTriggered(t *testing.T) {
	klines := minuteKlines(480, 10)
	// 最近15根交易量放大到8小时总量的12.5%以上
	for i := 465; i < 480; i++ {
		klines[i].Volume = 50
	}

	// volume_8h = 465*10 + 15*50 = 5400, volume_15m = 750, 阈值 = 675
	result := CheckVolume(klines, 12.5)
	assert.True(t, result.Triggered)
	assert.Equal(t, 750.0, result.Volume15m)
	assert.Equal(t, 5400.0, result.Volume8h)
}

func TestCheckVolumeNotTriggered(t *testing.T) {
	klines := minuteKlines(480, 10)

	// 均匀交易量下15分钟占比约3.1%，低于12.5%
	result := CheckVolume(klines, 12.5)
	assert.False(t, result.Triggered)
}

func TestCheckVolumeInsufficientData(t *testing.T) {
	result := CheckVolume(minuteKlines(10, 100), 12.5)
	assert.False(t, result.Triggered)
	assert.Equal(t, 0.0, result.Volume15m)
}

func TestCheckRiseTriggered(t *testing.T) {
	klines := minuteKlines(30, 10)
	// 最近15根从100涨到112
	klines[15].Open = 100
	klines[29].Close = 112

	result := CheckRise(klines, 10.0)
	assert.True(t, result.Triggered)
	assert.InDelta(t, 12.0, result.RisePercent, 0.001)
	assert.Equal(t, 100.0, result.FirstOpen)
	assert.Equal(t, 112.0, result.LastClose)
}

func TestCheckRiseNegative(t *testing.T) {
	klines := minuteKlines(15, 10)
	klines[0].Open = 100
	klines[14].Close = 95

	result := CheckRise(klines, 10.0)
	assert.False(t, result.Triggered)
	assert.InDelta(t, -5.0, result.RisePercent, 0.001)
}

// bullishDesc 按时间倒序构造阳线序列，opens[0]为最新
func bullishDesc(interval string, opens []float64) []types.KlineData {
	minutes := int64(15)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	klines := make([]types.KlineData, 0, len(opens))
	for i, open := range opens {
		openTime := base - int64(i)*minutes*60000
		klines = append(klines, types.KlineData{
			Symbol:    "BTCUSDT",
			Interval:  interval,
			OpenTime:  openTime,
			Open:      open,
			Close:     open * 1.01,
			CloseTime: openTime + minutes*60000 - 1,
		})
	}
	return klines
}

func TestCheckOpenPriceMatch(t *testing.T) {
	// D=100.0，跳过3根后E=100.5，误差0.5%，中间低开阳线1根
	bullish := bullishDesc("15m", []float64{100.0, 99.0, 105.0, 100.5, 200.0})
	params := OpenPriceParams{PriceError: 1.0, MiddleKlineCnt: 3, FakeKlineCnt: 5}

	match := CheckOpenPrice("BTCUSDT", "15m", bullish, params)
	require.NotNil(t, match)

	assert.Equal(t, 100.0, match.PriceD)
	assert.Equal(t, 100.5, match.PriceE)
	assert.InDelta(t, 0.5, match.ErrorPercent, 0.001)
	assert.Equal(t, 1, match.MiddleCount) // 只有99.0低于均值100.25
	assert.Equal(t, 3, match.IntervalCount)
	assert.Contains(t, match.DedupKey, "15m_")
}

func TestCheckOpenPriceErrorTooLarge(t *testing.T) {
	bullish := bullishDesc("15m", []float64{100.0, 99.0, 105.0, 103.0})
	params := OpenPriceParams{PriceError: 1.0, MiddleKlineCnt: 3, FakeKlineCnt: 5}

	// 误差3%超过上限
	assert.Nil(t, CheckOpenPrice("BTCUSDT", "15m", bullish, params))
}

func TestCheckOpenPriceTooManyFakeKlines(t *testing.T) {
	// 中间3根全部低于均值，超过上限2
	bullish := bullishDesc("15m", []float64{100.0, 90.0, 91.0, 92.0, 100.2})
	params := OpenPriceParams{PriceError: 1.0, MiddleKlineCnt: 4, FakeKlineCnt: 2}

	assert.Nil(t, CheckOpenPrice("BTCUSDT", "15m", bullish, params))
}

func TestCheckOpenPriceRespectsMiddleGap(t *testing.T) {
	// E候选必须与D至少间隔MiddleKlineCnt根
	bullish := bullishDesc("15m", []float64{100.0, 100.1, 100.2})
	params := OpenPriceParams{PriceError: 1.0, MiddleKlineCnt: 3, FakeKlineCnt: 5}

	assert.Nil(t, CheckOpenPrice("BTCUSDT", "15m", bullish, params))
}

func TestCheckOpenPriceNearestCandidateWins(t *testing.T) {
	// 两个候选都满足条件时只命中距离D最近的一个
	bullish := bullishDesc("15m", []float64{100.0, 150.0, 150.0, 100.3, 100.1})
	params := OpenPriceParams{PriceError: 1.0, MiddleKlineCnt: 3, FakeKlineCnt: 5}

	match := CheckOpenPrice("BTCUSDT", "15m", bullish, params)
	require.NotNil(t, match)
	assert.Equal(t, 100.3, match.PriceE)
	assert.Equal(t, 3, match.IntervalCount)
}

func TestCheckOpenPriceZeroMiddleGap(t *testing.T) {
	// MiddleKlineCnt为0时D不会与自身匹配，候选从最近一根历史阳线开始
	bullish := bullishDesc("15m", []float64{100.0, 100.05, 150.0})
	params := OpenPriceParams{PriceError: 1.0, MiddleKlineCnt: 0, FakeKlineCnt: 5}

	match := CheckOpenPrice("BTCUSDT", "15m", bullish, params)
	require.NotNil(t, match)
	assert.Equal(t, 100.05, match.PriceE)
	assert.Equal(t, 0, match.MiddleCount)

	// 没有误差达标的历史候选时返回空而不是自匹配
	noCandidate := bullishDesc("15m", []float64{100.0, 150.0})
	assert.Nil(t, CheckOpenPrice("BTCUSDT", "15m", noCandidate, params))
}

func TestDedupKeyFormat(t *testing.T) {
	timeD := time.Date(2025, 6, 1, 20, 0, 0, 0, types.CST).UnixMilli()
	timeE := time.Date(2025, 5, 30, 8, 15, 0, 0, types.CST).UnixMilli()

	assert.Equal(t, "1h_202506012000_202505300815", DedupKey("1h", timeD, timeE))
}
