package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// Init 初始化全局日志器，app.log记录全部日志，error.log只记录错误
func Init(cfg types.LogConfig) error {
	if err := os.MkdirAll(cfg.FilePath, 0o755); err != nil {
		return err
	}

	level := parseLevel(cfg)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)

	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(consoleEncoderConfig)

	appWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(cfg.FilePath, "app.log"),
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	})
	errorWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(cfg.FilePath, "error.log"),
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	})

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level),
		zapcore.NewCore(fileEncoder, appWriter, level),
		zapcore.NewCore(fileEncoder, errorWriter, zapcore.ErrorLevel),
	)

	logger := zap.New(core, zap.AddCaller())
	zap.ReplaceGlobals(logger)

	return nil
}

// parseLevel 解析日志级别，生产模式只输出错误
func parseLevel(cfg types.LogConfig) zapcore.Level {
	if cfg.Mode == "production" {
		return zapcore.ErrorLevel
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	return level
}
