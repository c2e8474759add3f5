package types

import "time"

// Config 主配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	MySQL     MySQLConfig     `mapstructure:"mysql"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Binance   BinanceConfig   `mapstructure:"binance"`
	Stream    StreamConfig    `mapstructure:"stream"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Alert     AlertConfig     `mapstructure:"alert"`
	Log       LogConfig       `mapstructure:"log"`
	Console   ConsoleConfig   `mapstructure:"console"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MySQLConfig MySQL数据库配置
type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// RedisConfig Redis配置，未配置URL时使用纯内存模式
type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// BinanceConfig 币安合约接口配置
type BinanceConfig struct {
	Proxy              string        `mapstructure:"proxy"`
	Timeout            time.Duration `mapstructure:"timeout"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
}

// StreamConfig WebSocket行情流配置
type StreamConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	Endpoint             string        `mapstructure:"endpoint"`
	ReconnectInterval    time.Duration `mapstructure:"reconnect_interval"`
	PingInterval         time.Duration `mapstructure:"ping_interval"`
	MaxReconnectAttempts int           `mapstructure:"max_reconnect_attempts"`
}

// SchedulerConfig 调度器配置
type SchedulerConfig struct {
	Enabled              bool `mapstructure:"enabled"`
	InitialSyncBatchSize int  `mapstructure:"initial_sync_batch_size"` // 每分钟最多初始同步的新币种数
	SyncWorkers          int  `mapstructure:"sync_workers"`
	MonitorWorkers       int  `mapstructure:"monitor_workers"`
}

// MonitorConfig 监控默认参数，首次启动时写入数据库，之后以数据库配置为准
type MonitorConfig struct {
	VolumePercent          float64 `mapstructure:"volume_percent"`
	VolumeReminderInterval int     `mapstructure:"volume_reminder_interval"` // 分钟
	RisePercent            float64 `mapstructure:"rise_percent"`
	RiseReminderInterval   int     `mapstructure:"rise_reminder_interval"` // 分钟
	PriceError             float64 `mapstructure:"price_error"`            // 百分比
	MiddleKlineCnt         int     `mapstructure:"middle_kline_cnt"`
	FakeKlineCnt           int     `mapstructure:"fake_kline_cnt"`
	DedupEnabled           bool    `mapstructure:"dedup_enabled"`
	MaxLookbackDays        int     `mapstructure:"max_lookback_days"`
}

// AlertConfig 提醒推送配置
type AlertConfig struct {
	WechatWebhookURL string `mapstructure:"wechat_webhook_url"`
}

// LogConfig 日志配置
type LogConfig struct {
	Mode       string `mapstructure:"mode"`        // development | production
	Level      string `mapstructure:"level"`       // 日志级别
	FilePath   string `mapstructure:"file_path"`   // 日志输出目录
	MaxSize    int    `mapstructure:"max_size"`    // 日志文件大小 单位：MB，超限后会自动切割
	MaxAge     int    `mapstructure:"max_age"`     // 日志文件存放时间 单位：天
	MaxBackups int    `mapstructure:"max_backups"` // 日志文件备份数量
	Compress   bool   `mapstructure:"compress"`    // 日志文件压缩
}

// ConsoleConfig 管理控制台配置
type ConsoleConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	ReconnectInterval time.Duration `mapstructure:"reconnect_interval"` // SSE断线重连固定间隔
	PageSize          int           `mapstructure:"page_size"`
	LogSampleWindow   time.Duration `mapstructure:"log_sample_window"`
}
