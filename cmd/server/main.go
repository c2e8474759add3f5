package main

import (
	"log"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/config"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("加载配置失败:", err)
	}

	if err := logger.Init(cfg.Log); err != nil {
		log.Fatal("初始化日志失败:", err)
	}

	app := NewApp(cfg)
	if err := app.Start(); err != nil {
		log.Fatal("启动失败:", err)
	}

	app.WaitForShutdown()
	app.Stop()
}
