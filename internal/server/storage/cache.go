package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// CircularQueue 循环队列实现滑动窗口
type CircularQueue struct {
	data   []types.PriceDataPoint
	maxAge time.Duration
	mutex  sync.RWMutex
}

func NewCircularQueue(maxAge time.Duration) *CircularQueue {
	return &CircularQueue{
		data:   make([]types.PriceDataPoint, 0, 10),
		maxAge: maxAge,
	}
}

func (cq *CircularQueue) Add(point types.PriceDataPoint) {
	cq.mutex.Lock()
	defer cq.mutex.Unlock()

	// 添加新数据点
	cq.data = append(cq.data, point)

	// 清理超过maxAge的旧数据
	cutoff := time.Now().Add(-cq.maxAge)
	newStart := 0
	for i, p := range cq.data {
		if p.Timestamp.After(cutoff) {
			newStart = i
			break
		}
	}
	if newStart > 0 {
		cq.data = cq.data[newStart:]
	}
}

func (cq *CircularQueue) GetOldest() *types.PriceDataPoint {
	cq.mutex.RLock()
	defer cq.mutex.RUnlock()

	if len(cq.data) == 0 {
		return nil
	}
	return &cq.data[0]
}

func (cq *CircularQueue) GetLatest() *types.PriceDataPoint {
	cq.mutex.RLock()
	defer cq.mutex.RUnlock()

	if len(cq.data) == 0 {
		return nil
	}
	return &cq.data[len(cq.data)-1]
}

func (cq *CircularQueue) FindPriceAroundTime(targetTime time.Time) *types.PriceDataPoint {
	cq.mutex.RLock()
	defer cq.mutex.RUnlock()

	if len(cq.data) < 2 {
		return nil
	}

	var closest *types.PriceDataPoint
	minDiff := time.Duration(math.MaxInt64)

	for i := range cq.data {
		diff := targetTime.Sub(cq.data[i].Timestamp)
		if diff < 0 {
			diff = -diff
		}

		if diff < minDiff {
			minDiff = diff
			closest = &cq.data[i]
		}
	}

	// 如果最接近的数据点与目标时间相差超过2分钟，认为数据不足
	if minDiff > 2*time.Minute {
		return nil
	}

	return closest
}

func (cq *CircularQueue) Length() int {
	cq.mutex.RLock()
	defer cq.mutex.RUnlock()
	return len(cq.data)
}

// PriceCache 实时价格缓存，行情流写入，监控接口读取。
// Redis可用时异步备份，不可用时退化为纯内存模式。
type PriceCache struct {
	priceHistory map[string]*CircularQueue
	mutex        sync.RWMutex
	windowSize   time.Duration
	redisClient  *redis.Client
	useRedis     bool
}

// NewPriceCache 创建价格缓存
func NewPriceCache(redisConfig types.RedisConfig, windowSize time.Duration) *PriceCache {
	if windowSize <= 0 {
		windowSize = 5 * time.Minute
	}

	pc := &PriceCache{
		priceHistory: make(map[string]*CircularQueue),
		windowSize:   windowSize,
	}

	// 尝试连接Redis
	if redisConfig.URL != "" {
		pc.redisClient = redis.NewClient(&redis.Options{
			Addr:     redisConfig.URL,
			Password: redisConfig.Password,
			DB:       redisConfig.DB,
		})

		// 测试连接
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := pc.redisClient.Ping(ctx).Result()
		if err != nil {
			zap.L().Warn("⚠️ Redis连接失败，使用纯内存模式", zap.Error(err))
			pc.useRedis = false
		} else {
			zap.L().Info("✅ Redis连接成功")
			pc.useRedis = true
		}
	} else {
		zap.L().Info("🔧 未配置Redis，使用纯内存模式")
		pc.useRedis = false
	}

	return pc
}

// Store 写入价格点
func (pc *PriceCache) Store(symbol string, price float64, timestamp time.Time) {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	// 获取或创建队列
	if pc.priceHistory[symbol] == nil {
		pc.priceHistory[symbol] = NewCircularQueue(pc.windowSize)
	}

	dataPoint := types.PriceDataPoint{
		Price:     price,
		Timestamp: timestamp,
	}
	pc.priceHistory[symbol].Add(dataPoint)

	// 异步备份到Redis
	if pc.useRedis {
		go pc.backupToRedis(symbol, dataPoint)
	}
}

// backupToRedis 备份数据到Redis
func (pc *PriceCache) backupToRedis(symbol string, point types.PriceDataPoint) {
	if !pc.useRedis {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf("kline:price:%s", symbol)
	value, err := json.Marshal(point)
	if err != nil {
		zap.L().Warn("序列化价格数据失败", zap.Error(err))
		return
	}

	// 使用Redis Sorted Set存储，以时间戳为分数
	err = pc.redisClient.ZAdd(ctx, key, &redis.Z{
		Score:  float64(point.Timestamp.Unix()),
		Member: value,
	}).Err()

	if err != nil {
		zap.L().Warn("Redis存储失败", zap.String("symbol", symbol), zap.Error(err))
		return
	}

	// 设置过期时间，只保留10分钟数据
	pc.redisClient.Expire(ctx, key, 10*time.Minute)

	// 清理旧数据，只保留最近10分钟
	cutoff := float64(time.Now().Add(-10 * time.Minute).Unix())
	pc.redisClient.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%.0f", cutoff))
}

// LatestPrice 读取币种最新价格，无数据时返回false
func (pc *PriceCache) LatestPrice(symbol string) (float64, bool) {
	pc.mutex.RLock()
	defer pc.mutex.RUnlock()

	queue := pc.priceHistory[symbol]
	if queue == nil {
		return 0, false
	}

	latest := queue.GetLatest()
	if latest == nil {
		return 0, false
	}
	return latest.Price, true
}

// PriceWindow 读取当前价格和窗口起点价格
func (pc *PriceCache) PriceWindow(symbol string) (*types.PriceDataPoint, *types.PriceDataPoint) {
	pc.mutex.RLock()
	defer pc.mutex.RUnlock()

	queue := pc.priceHistory[symbol]
	if queue == nil {
		return nil, nil
	}

	current := queue.GetLatest()
	if current == nil {
		return nil, nil
	}

	past := queue.FindPriceAroundTime(time.Now().Add(-pc.windowSize))
	return current, past
}

// GetAllSymbols 缓存中全部币种
func (pc *PriceCache) GetAllSymbols() []string {
	pc.mutex.RLock()
	defer pc.mutex.RUnlock()

	symbols := make([]string, 0, len(pc.priceHistory))
	for symbol := range pc.priceHistory {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// Stats 缓存统计信息，健康检查接口使用
func (pc *PriceCache) Stats() map[string]interface{} {
	pc.mutex.RLock()
	memorySymbols := len(pc.priceHistory)
	pc.mutex.RUnlock()

	stats := map[string]interface{}{
		"redis_enabled":  pc.useRedis,
		"memory_symbols": memorySymbols,
	}

	if pc.useRedis {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		keys, err := pc.redisClient.Keys(ctx, "kline:price:*").Result()
		if err == nil {
			stats["redis_keys"] = len(keys)
		} else {
			stats["redis_error"] = err.Error()
		}
	}

	return stats
}
