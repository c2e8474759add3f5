package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// Load 加载配置
func Load() (*types.Config, error) {
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// 设置默认值
	setDefaults()

	// 读取环境变量
	viper.AutomaticEnv()

	// 优先尝试读取本地配置文件
	viper.SetConfigName("config.local")
	if err := viper.ReadInConfig(); err != nil {
		// 如果本地配置文件不存在，尝试读取默认配置文件
		viper.SetConfigName("config")
		if err := viper.ReadInConfig(); err != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFoundError) {
				return nil, err
			}
		}
	}

	var config types.Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFile 从指定文件加载配置，命令行 --config 使用
func LoadFile(path string) (*types.Config, error) {
	if path == "" {
		return Load()
	}

	viper.SetConfigType("yaml")
	setDefaults()
	viper.AutomaticEnv()

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config types.Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)

	viper.SetDefault("mysql.host", "localhost")
	viper.SetDefault("mysql.port", 3306)
	viper.SetDefault("mysql.username", "root")
	viper.SetDefault("mysql.password", "")
	viper.SetDefault("mysql.database", "kline_monitor")
	viper.SetDefault("mysql.max_idle_conns", 10)
	viper.SetDefault("mysql.max_open_conns", 50)

	viper.SetDefault("redis.url", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("binance.proxy", "")
	viper.SetDefault("binance.timeout", 30*time.Second)
	viper.SetDefault("binance.rate_limit_per_minute", 1150)

	viper.SetDefault("stream.enabled", false)
	viper.SetDefault("stream.endpoint", "wss://fstream.binance.com/stream")
	viper.SetDefault("stream.reconnect_interval", 5*time.Second)
	viper.SetDefault("stream.ping_interval", 20*time.Second)
	viper.SetDefault("stream.max_reconnect_attempts", 10)

	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.initial_sync_batch_size", 5)
	viper.SetDefault("scheduler.sync_workers", 5)
	viper.SetDefault("scheduler.monitor_workers", 5)

	viper.SetDefault("monitor.volume_percent", 12.5)
	viper.SetDefault("monitor.volume_reminder_interval", 60)
	viper.SetDefault("monitor.rise_percent", 10.0)
	viper.SetDefault("monitor.rise_reminder_interval", 60)
	viper.SetDefault("monitor.price_error", 1.0)
	viper.SetDefault("monitor.middle_kline_cnt", 3)
	viper.SetDefault("monitor.fake_kline_cnt", 5)
	viper.SetDefault("monitor.dedup_enabled", true)
	viper.SetDefault("monitor.max_lookback_days", 30)

	viper.SetDefault("alert.wechat_webhook_url", "")

	viper.SetDefault("log.mode", "development")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file_path", "logs")
	viper.SetDefault("log.max_size", 10)
	viper.SetDefault("log.max_age", 30)
	viper.SetDefault("log.max_backups", 5)
	viper.SetDefault("log.compress", false)

	viper.SetDefault("console.base_url", "http://localhost:8000")
	viper.SetDefault("console.timeout", 30*time.Second)
	viper.SetDefault("console.reconnect_interval", 5*time.Second)
	viper.SetDefault("console.page_size", 20)
	viper.SetDefault("console.log_sample_window", 30*time.Second)
}
