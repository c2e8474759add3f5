package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/cxd19ojbk666/KlineMonitor/internal/server/binance"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/database"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/events"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/monitor"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// Scheduler 同步与监控调度器。
// 每分钟执行一次统一同步任务，按分钟门控决定同步哪些周期，
// 同步完成后对已初始化的启用币种执行监控检查，每天01:10清理过期K线。
type Scheduler struct {
	db          *database.Manager
	client      *binance.Client
	monitor     *monitor.Service
	broadcaster *events.Broadcaster
	cfg         types.SchedulerConfig

	cron         *cron.Cron
	syncEntry    cron.EntryID
	cleanupEntry cron.EntryID

	mu      sync.Mutex
	running bool
	paused  bool
	busy    bool
}

// New 创建调度器
func New(db *database.Manager, client *binance.Client, svc *monitor.Service, broadcaster *events.Broadcaster, cfg types.SchedulerConfig) *Scheduler {
	return &Scheduler{
		db:          db,
		client:      client,
		monitor:     svc,
		broadcaster: broadcaster,
		cfg:         cfg,
		cron:        cron.New(cron.WithLocation(types.CST)),
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	var err error
	s.syncEntry, err = s.cron.AddFunc("* * * * *", s.runSyncJob)
	if err != nil {
		return err
	}
	s.cleanupEntry, err = s.cron.AddFunc("10 1 * * *", s.runCleanupJob)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.running = true

	zap.L().Info("🚀 调度器已启动")
	return nil
}

// Stop 停止调度器，等待进行中的任务结束
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		zap.L().Info("📴 调度器已停止")
	case <-ctx.Done():
		zap.L().Warn("⚠️ 等待调度任务结束超时")
	}
}

// Pause 暂停调度，任务仍按计划触发但直接跳过
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	zap.L().Info("⏸️ 调度器已暂停")
}

// Resume 恢复调度
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	zap.L().Info("▶️ 调度器已恢复")
}

// IsRunning 调度器是否运行中且未暂停
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && !s.paused
}

// Status 调度器状态
func (s *Scheduler) Status() types.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := types.SchedulerStatus{
		IsRunning: s.running,
		IsPaused:  s.paused,
	}

	if s.running {
		entries := map[cron.EntryID]string{
			s.syncEntry:    "kline_sync",
			s.cleanupEntry: "kline_cleanup",
		}
		for _, entry := range s.cron.Entries() {
			name, ok := entries[entry.ID]
			if !ok {
				continue
			}
			status.Jobs = append(status.Jobs, types.SchedulerJob{
				ID:          name,
				Name:        name,
				NextRunTime: entry.Next,
			})
		}
	}

	return status
}

// IntervalsToSync 按触发时间计算本轮需要同步的K线周期
func IntervalsToSync(t time.Time) []string {
	t = t.In(types.CST)
	minute := t.Minute()
	hour := t.Hour()

	intervals := []string{"1m"}
	if minute%15 == 0 {
		intervals = append(intervals, "15m")
	}
	if minute == 1 || minute == 31 {
		intervals = append(intervals, "30m")
	}
	if minute == 2 {
		intervals = append(intervals, "1h")
	}
	if minute == 3 && hour%4 == 0 {
		intervals = append(intervals, "4h")
	}
	if hour == 0 && minute == 4 {
		intervals = append(intervals, "1d")
	}
	if hour == 0 && minute == 5 {
		intervals = append(intervals, "3d")
	}
	return intervals
}

// runSyncJob 每分钟的统一同步与监控任务
func (s *Scheduler) runSyncJob() {
	s.mu.Lock()
	if s.paused || s.busy {
		skipped := s.busy
		s.mu.Unlock()
		if skipped {
			zap.L().Warn("⚠️ 上一轮同步尚未完成，跳过本轮")
		}
		return
	}
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	ctx := context.Background()
	start := time.Now()
	intervals := IntervalsToSync(start)

	stats := s.syncInitialized(ctx, intervals)
	initialized := s.syncNewSymbols(ctx)

	s.broadcaster.Broadcast(types.EventSyncComplete, map[string]interface{}{
		"symbols":     stats.symbols,
		"intervals":   intervals,
		"klines":      stats.klines,
		"errors":      stats.errors,
		"initialized": initialized,
	})

	checked := s.runMonitorTask(ctx)
	s.broadcaster.Broadcast(types.EventMonitorComplete, map[string]interface{}{
		"checked": checked,
	})

	zap.L().Info("📊 同步任务完成",
		zap.Strings("intervals", intervals),
		zap.Int("symbols", stats.symbols),
		zap.Int64("klines", stats.klines),
		zap.Int("errors", stats.errors),
		zap.Int("initialized", initialized),
		zap.Int("checked", checked),
		zap.Duration("elapsed", time.Since(start)))
}

type syncStats struct {
	symbols int
	klines  int64
	errors  int
}

// syncInitialized 并发增量同步已初始化的启用币种
func (s *Scheduler) syncInitialized(ctx context.Context, intervals []string) syncStats {
	symbols, err := s.db.InitializedActiveSymbols()
	if err != nil {
		zap.L().Error("❌ 查询启用币种失败", zap.Error(err))
		return syncStats{}
	}

	type task struct {
		symbol   string
		interval string
	}
	tasks := make(chan task, len(symbols)*len(intervals))
	for _, symbol := range symbols {
		for _, interval := range intervals {
			tasks <- task{symbol: symbol.Symbol, interval: interval}
		}
	}
	close(tasks)

	workers := s.cfg.SyncWorkers
	if workers <= 0 {
		workers = 5
	}

	var mu sync.Mutex
	stats := syncStats{symbols: len(symbols)}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				count, err := s.client.SyncKlines(ctx, t.symbol, t.interval, false)
				mu.Lock()
				if err != nil {
					stats.errors++
					zap.L().Warn("增量同步失败",
						zap.String("symbol", t.symbol),
						zap.String("interval", t.interval),
						zap.Error(err))
				} else {
					stats.klines += count
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return stats
}

// syncNewSymbols 对未初始化币种做限量初始同步，控制低并发
func (s *Scheduler) syncNewSymbols(ctx context.Context) int {
	batchSize := s.cfg.InitialSyncBatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	symbols, err := s.db.UninitializedSymbols(batchSize)
	if err != nil {
		zap.L().Error("❌ 查询待初始化币种失败", zap.Error(err))
		return 0
	}
	if len(symbols) == 0 {
		return 0
	}

	sem := make(chan struct{}, 2)
	var wg sync.WaitGroup
	var mu sync.Mutex
	initialized := 0

	for _, symbol := range symbols {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if _, err := s.client.InitialSync(ctx, name); err != nil {
				zap.L().Error("❌ 初始同步失败", zap.String("symbol", name), zap.Error(err))
				return
			}
			mu.Lock()
			initialized++
			mu.Unlock()
		}(symbol.Symbol)
	}
	wg.Wait()

	return initialized
}

// runMonitorTask 对已初始化的启用币种并发执行监控检查
func (s *Scheduler) runMonitorTask(ctx context.Context) int {
	symbols, err := s.db.InitializedActiveSymbols()
	if err != nil {
		zap.L().Error("❌ 查询监控币种失败", zap.Error(err))
		return 0
	}

	names := make(chan string, len(symbols))
	for _, symbol := range symbols {
		names <- symbol.Symbol
	}
	close(names)

	workers := s.cfg.MonitorWorkers
	if workers <= 0 {
		workers = 5
	}

	var mu sync.Mutex
	checked := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range names {
				if _, err := s.monitor.CheckSymbol(ctx, name); err != nil {
					zap.L().Warn("币种检查失败", zap.String("symbol", name), zap.Error(err))
					continue
				}
				mu.Lock()
				checked++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return checked
}

// runCleanupJob 每日清理过期K线
func (s *Scheduler) runCleanupJob() {
	s.mu.Lock()
	paused := s.paused
	s.mu.Unlock()
	if paused {
		return
	}

	var total int64
	for interval, days := range binance.RetentionDays {
		deleted, err := s.db.CleanupKlines(interval, days)
		if err != nil {
			zap.L().Error("❌ 清理过期K线失败",
				zap.String("interval", interval),
				zap.Error(err))
			continue
		}
		total += deleted
	}

	zap.L().Info("🧹 过期K线清理完成", zap.Int64("deleted", total))
}
