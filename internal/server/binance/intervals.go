package binance

// SupportedIntervals 同步和监控支持的K线周期
var SupportedIntervals = []string{"1m", "15m", "30m", "1h", "4h", "1d", "3d"}

// intervalMinutes 各周期对应的分钟数
var intervalMinutes = map[string]int{
	"1m":  1,
	"15m": 15,
	"30m": 30,
	"1h":  60,
	"4h":  240,
	"1d":  1440,
	"3d":  4320,
}

// RetentionDays 各周期数据保留天数
var RetentionDays = map[string]int{
	"1m":  1,
	"15m": 30,
	"30m": 30,
	"1h":  30,
	"4h":  90,
	"1d":  90,
	"3d":  90,
}

// MaxInitialDays 各周期初始同步的最大回溯天数
var MaxInitialDays = map[string]int{
	"1m":  1,
	"15m": 7,
	"30m": 15,
	"1h":  30,
	"4h":  60,
	"1d":  90,
	"3d":  90,
}

// IsSupported 判断周期是否受支持
func IsSupported(interval string) bool {
	_, ok := intervalMinutes[interval]
	return ok
}

// IntervalMinutes 周期对应的分钟数，未知周期返回0
func IntervalMinutes(interval string) int {
	return intervalMinutes[interval]
}
