package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"go.uber.org/zap"

	"github.com/cxd19ojbk666/KlineMonitor/internal/server/database"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

const (
	syncThrottleSeconds  = 30   // 同一(币种,周期)两次同步的最小间隔
	incrementalSyncLimit = 5    // 增量同步最近N根，覆盖未收盘K线的更新
	maxBatchLimit        = 1500 // 单次请求最大K线数
	maxRetries           = 5
	retryBaseDelay       = 500 * time.Millisecond
)

// Client 币安合约数据客户端
type Client struct {
	api     *futures.Client
	db      *database.Manager
	limiter *rateLimiter

	mu       sync.Mutex
	lastSync map[string]time.Time
}

// NewClient 创建币安客户端，支持HTTP代理
func NewClient(cfg types.BinanceConfig, db *database.Manager) (*Client, error) {
	api := futures.NewClient("", "")

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("解析代理URL失败: %v", err)
		}
		httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}
	api.HTTPClient = httpClient

	return &Client{
		api:      api,
		db:       db,
		limiter:  newRateLimiter(cfg.RateLimitPerMinute),
		lastSync: make(map[string]time.Time),
	}, nil
}

// AvailableSymbols 查询全部可交易的USDT永续合约
func (c *Client) AvailableSymbols(ctx context.Context) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	info, err := c.api.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取交易所信息失败: %v", err)
	}

	var symbols []string
	for _, s := range info.Symbols {
		if s.Status == "TRADING" && s.QuoteAsset == "USDT" && s.ContractType == "PERPETUAL" {
			symbols = append(symbols, s.Symbol)
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// fetchKlines 拉取一批K线，带限速和重试
func (c *Client) fetchKlines(ctx context.Context, symbol, interval string, start, end int64, limit int) ([]database.PriceKline, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-1))
			zap.L().Warn("⚠️ K线请求失败，准备重试",
				zap.String("symbol", symbol),
				zap.String("interval", interval),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		svc := c.api.NewKlinesService().Symbol(symbol).Interval(interval).Limit(limit)
		if start > 0 {
			svc = svc.StartTime(start)
		}
		if end > 0 {
			svc = svc.EndTime(end)
		}

		klines, err := svc.Do(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		return convertKlines(symbol, interval, klines), nil
	}

	return nil, fmt.Errorf("拉取K线失败 %s %s: %v", symbol, interval, lastErr)
}

func convertKlines(symbol, interval string, klines []*futures.Kline) []database.PriceKline {
	out := make([]database.PriceKline, 0, len(klines))
	for _, k := range klines {
		out = append(out, database.PriceKline{
			Symbol:              symbol,
			Interval:            interval,
			OpenTime:            k.OpenTime,
			Open:                parseFloat(k.Open),
			High:                parseFloat(k.High),
			Low:                 parseFloat(k.Low),
			Close:               parseFloat(k.Close),
			Volume:              parseFloat(k.Volume),
			CloseTime:           k.CloseTime,
			QuoteVolume:         parseFloat(k.QuoteAssetVolume),
			Trades:              k.TradeNum,
			TakerBuyVolume:      parseFloat(k.TakerBuyBaseAssetVolume),
			TakerBuyQuoteVolume: parseFloat(k.TakerBuyQuoteAssetVolume),
		})
	}
	return out
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// SyncKlines 同步单个(币种,周期)的K线，返回写入数量。
// 已有数据时从最近N根开始增量拉取，否则按周期上限回溯初始拉取。
// 30秒节流窗口内的重复调用直接跳过，force为true时忽略节流。
func (c *Client) SyncKlines(ctx context.Context, symbol, interval string, force bool) (int64, error) {
	if !IsSupported(interval) {
		return 0, fmt.Errorf("不支持的K线周期: %s", interval)
	}

	throttleKey := symbol + "|" + interval
	c.mu.Lock()
	if !force {
		if last, ok := c.lastSync[throttleKey]; ok && time.Since(last) < syncThrottleSeconds*time.Second {
			c.mu.Unlock()
			return 0, nil
		}
	}
	c.lastSync[throttleKey] = time.Now()
	c.mu.Unlock()

	start := c.syncStartTime(symbol, interval)

	var total int64
	for {
		batch, err := c.fetchKlines(ctx, symbol, interval, start, 0, maxBatchLimit)
		if err != nil {
			return total, err
		}
		if len(batch) == 0 {
			break
		}

		saved, err := c.db.BatchUpsertKlines(batch)
		if err != nil {
			return total, err
		}
		total += saved

		if len(batch) < maxBatchLimit {
			break
		}
		// 继续从最后一根之后分页
		start = batch[len(batch)-1].OpenTime + 1
	}

	return total, nil
}

// syncStartTime 计算同步起点的毫秒时间戳
func (c *Client) syncStartTime(symbol, interval string) int64 {
	latest, err := c.db.LatestKline(symbol, interval)
	if err == nil && latest != nil {
		// 回退N根，既补未收盘K线也容忍少量缺口
		back := int64(IntervalMinutes(interval)) * int64(incrementalSyncLimit-1) * 60 * 1000
		return latest.OpenTime - back
	}

	days := MaxInitialDays[interval]
	return time.Now().AddDate(0, 0, -days).UnixMilli()
}

// InitialSync 对单个币种按全部周期做初始同步，完成后标记initial_synced
func (c *Client) InitialSync(ctx context.Context, symbol string) (int64, error) {
	var total int64
	for _, interval := range SupportedIntervals {
		count, err := c.SyncKlines(ctx, symbol, interval, true)
		if err != nil {
			return total, fmt.Errorf("初始同步失败 %s %s: %v", symbol, interval, err)
		}
		total += count
	}

	if err := c.db.MarkInitialSynced(symbol); err != nil {
		return total, err
	}

	zap.L().Info("✅ 币种初始同步完成",
		zap.String("symbol", symbol),
		zap.Int64("klines", total))
	return total, nil
}

// rateLimiter 固定分钟窗口限速器
type rateLimiter struct {
	mu          sync.Mutex
	limit       int
	count       int
	windowStart time.Time

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func newRateLimiter(limit int) *rateLimiter {
	if limit <= 0 {
		limit = 1150
	}
	return &rateLimiter{
		limit: limit,
		now:   time.Now,
		sleep: func(ctx context.Context, d time.Duration) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
				return nil
			}
		},
	}
}

// Wait 占用一个请求额度，窗口耗尽时阻塞到下一分钟窗口
func (r *rateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := r.now()
		windowStart := now.Truncate(time.Minute)
		if !windowStart.Equal(r.windowStart) {
			r.windowStart = windowStart
			r.count = 0
		}

		if r.count < r.limit {
			r.count++
			r.mu.Unlock()
			return nil
		}

		wait := windowStart.Add(time.Minute).Sub(now)
		r.mu.Unlock()

		zap.L().Warn("⚠️ 达到接口限速上限，等待下一窗口", zap.Duration("wait", wait))
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}
}
