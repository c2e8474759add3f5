package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/cxd19ojbk666/KlineMonitor/internal/server/binance"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/database"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/events"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/monitor"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/scheduler"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/storage"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// Server HTTP服务
type Server struct {
	echo        *echo.Echo
	db          *database.Manager
	client      *binance.Client
	cache       *storage.PriceCache
	monitor     *monitor.Service
	scheduler   *scheduler.Scheduler
	broadcaster *events.Broadcaster
	cfg         *types.Config
}

// NewServer 创建HTTP服务并注册路由
func NewServer(
	cfg *types.Config,
	db *database.Manager,
	client *binance.Client,
	cache *storage.PriceCache,
	svc *monitor.Service,
	sched *scheduler.Scheduler,
	broadcaster *events.Broadcaster,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:        e,
		db:          db,
		client:      client,
		cache:       cache,
		monitor:     svc,
		scheduler:   sched,
		broadcaster: broadcaster,
		cfg:         cfg,
	}

	e.HTTPErrorHandler = s.errorHandler
	s.registerRoutes()
	return s
}

// registerRoutes 注册全部路由，静态路径必须先于动态路径
func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")

	symbols := api.Group("/symbols")
	symbols.GET("", s.handleListSymbols)
	symbols.POST("", s.handleCreateSymbol)
	symbols.GET("/init-progress", s.handleInitProgress)
	symbols.GET("/available", s.handleAvailableSymbols)
	symbols.GET("/bulk-add", s.handleBulkAdd)
	symbols.PUT("/batch/activate", s.handleBatchActivate)
	symbols.DELETE("/batch", s.handleBatchDelete)
	symbols.GET("/:symbol/sync", s.handleSyncSymbol)
	symbols.PUT("/:symbol/toggle", s.handleToggleSymbol)
	symbols.DELETE("/:symbol", s.handleDeleteSymbol)

	config := api.Group("/config")
	config.GET("", s.handleListConfigs)
	config.POST("/batch", s.handleBatchSetConfigs)
	config.GET("/symbol-configs", s.handleListSymbolConfigs)
	config.POST("/symbol-configs", s.handleCreateSymbolConfig)
	config.GET("/symbol-configs/:symbol/:interval", s.handleGetSymbolConfig)
	config.PUT("/symbol-configs/:symbol/:interval", s.handleUpsertSymbolConfig)
	config.DELETE("/symbol-configs/:symbol/:interval", s.handleDeleteSymbolConfig)
	config.GET("/:key", s.handleGetConfig)
	config.PUT("/:key", s.handleSetConfig)
	config.DELETE("/:key", s.handleDeleteConfig)

	alerts := api.Group("/alerts")
	alerts.GET("", s.handleListAlerts)
	alerts.GET("/dashboard", s.handleDashboard)
	alerts.DELETE("/:id", s.handleDeleteAlert)
	alerts.DELETE("", s.handleDeleteAlerts)

	mon := api.Group("/monitor")
	mon.GET("/data", s.handleMonitorData)
	mon.GET("/data/:symbol", s.handleSymbolMonitorData)
	mon.GET("/klines/:symbol", s.handleMonitorKlines)

	sched := api.Group("/scheduler")
	sched.GET("/status", s.handleSchedulerStatus)
	sched.POST("/pause", s.handleSchedulerPause)
	sched.POST("/resume", s.handleSchedulerResume)

	logs := api.Group("/logs")
	logs.GET("/files", s.handleLogFiles)
	logs.GET("/today", s.handleTodayLog)
	logs.GET("/content/:file", s.handleLogContent)

	api.GET("/events", s.handleEvents)
}

// errorHandler 统一错误响应，格式为 {detail: ...}
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var detail interface{} = "服务器内部错误"

	var httpErr *echo.HTTPError
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		code = http.StatusUnprocessableEntity
		detail = validationErr.Details
	case errors.As(err, &httpErr):
		code = httpErr.Code
		detail = httpErr.Message
	case errors.Is(err, database.ErrSymbolNotFound),
		errors.Is(err, database.ErrConfigNotFound),
		errors.Is(err, database.ErrSymbolConfigNotFound),
		errors.Is(err, database.ErrAlertNotFound):
		code = http.StatusNotFound
		detail = err.Error()
	case errors.Is(err, database.ErrSymbolExists),
		errors.Is(err, database.ErrSymbolConfigExists):
		code = http.StatusBadRequest
		detail = err.Error()
	default:
		zap.L().Error("请求处理失败",
			zap.String("path", c.Request().URL.Path),
			zap.Error(err))
	}

	if sendErr := c.JSON(code, echo.Map{"detail": detail}); sendErr != nil {
		zap.L().Error("写入错误响应失败", zap.Error(sendErr))
	}
}

// handleRoot 服务信息
func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"name":    "KlineMonitor",
		"message": "币安合约K线监控系统",
		"docs":    "/api",
	})
}

// handleHealth 健康检查
func (s *Server) handleHealth(c echo.Context) error {
	dbStatus := "healthy"
	if err := s.db.Health(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":          "healthy",
		"database":        dbStatus,
		"scheduler":       s.scheduler.IsRunning(),
		"sse_subscribers": s.broadcaster.SubscriberCount(),
		"price_cache":     s.cache.Stats(),
	})
}

// Start 启动HTTP服务，阻塞直到关闭
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	zap.L().Info("🚀 HTTP服务启动", zap.String("addr", addr))

	err := s.echo.Start(addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭HTTP服务
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
