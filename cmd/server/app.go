package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cxd19ojbk666/KlineMonitor/internal/server/alerter"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/api"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/binance"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/database"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/events"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/monitor"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/scheduler"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/storage"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/stream"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// App 应用程序管理器
type App struct {
	config *types.Config
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	db        *database.Manager
	scheduler *scheduler.Scheduler
	stream    *stream.Client
	api       *api.Server
}

// NewApp 创建应用程序实例
func NewApp(config *types.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 启动应用程序
func (app *App) Start() error {
	zap.L().Info("🚀 K线监控服务启动中...")

	db, err := database.NewManager(app.config.MySQL)
	if err != nil {
		return err
	}
	app.db = db

	if err := db.SeedDefaultConfigs(app.config.Monitor); err != nil {
		return err
	}

	cache := storage.NewPriceCache(app.config.Redis, 10*time.Minute)

	client, err := binance.NewClient(app.config.Binance, db)
	if err != nil {
		return err
	}

	notifier := alerter.NewWechatNotifier(app.config.Alert.WechatWebhookURL)
	alerts := alerter.NewService(db, notifier, app.config.Monitor)
	svc := monitor.NewService(db, cache, alerts, app.config.Monitor)
	broadcaster := events.NewBroadcaster()

	app.scheduler = scheduler.New(db, client, svc, broadcaster, app.config.Scheduler)
	if app.config.Scheduler.Enabled {
		if err := app.scheduler.Start(); err != nil {
			return err
		}
	}

	if app.config.Stream.Enabled {
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.runStream(cache)
		}()
	}

	app.api = api.NewServer(app.config, db, client, cache, svc, app.scheduler, broadcaster)
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		if err := app.api.Start(); err != nil {
			zap.L().Error("❌ HTTP服务异常退出", zap.Error(err))
		}
	}()

	zap.L().Info("✅ K线监控服务已启动")
	return nil
}

// runStream 维护行情流连接，把实时价格写入缓存
func (app *App) runStream(cache *storage.PriceCache) {
	zap.L().Info("📊 启动实时行情流")

	client := stream.NewClient(app.config.Stream, app.config.Binance.Proxy)
	app.stream = client

	if err := client.Connect(); err != nil {
		zap.L().Error("❌ 行情流连接失败", zap.Error(err))
		return
	}

	symbols, err := app.db.ActiveSymbols()
	if err != nil {
		zap.L().Error("❌ 查询启用币种失败", zap.Error(err))
		return
	}
	names := make([]string, 0, len(symbols))
	for i := range symbols {
		names = append(names, symbols[i].Symbol)
	}
	if len(names) > 0 {
		if err := client.Subscribe(names); err != nil {
			zap.L().Error("❌ 订阅行情失败", zap.Error(err))
		}
	}

	client.StartReading()

	for {
		select {
		case <-app.ctx.Done():
			return
		case kline, ok := <-client.GetKlineChannel():
			if !ok {
				return
			}
			cache.Store(kline.Symbol, kline.Close, time.UnixMilli(kline.CloseTime))
		}
	}
}

// Stop 停止应用程序
func (app *App) Stop() {
	zap.L().Info("🛑 收到停止信号，正在优雅关闭...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if app.api != nil {
		if err := app.api.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("⚠️ HTTP服务关闭异常", zap.Error(err))
		}
	}
	if app.scheduler != nil {
		app.scheduler.Stop(shutdownCtx)
	}
	if app.stream != nil {
		if err := app.stream.Close(); err != nil {
			zap.L().Warn("⚠️ 行情流关闭异常", zap.Error(err))
		}
	}
	app.cancel()

	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		zap.L().Warn("⚠️ 强制关闭超时")
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			zap.L().Warn("⚠️ 数据库关闭异常", zap.Error(err))
		}
	}
	zap.L().Info("✅ K线监控服务已安全关闭")
}

// WaitForShutdown 等待关闭信号
func (app *App) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}
