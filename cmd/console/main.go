package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cxd19ojbk666/KlineMonitor/internal/client"
	"github.com/cxd19ojbk666/KlineMonitor/internal/console"
	"github.com/cxd19ojbk666/KlineMonitor/internal/console/ui"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/config"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

var (
	serverURL  string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "K线监控管理控制台",
	Long:  "连接K线监控服务端的终端管理界面，支持仪表盘、币种管理、提醒查询和配置修改。",
	RunE:  runTUI,
}

var bulkAddCmd = &cobra.Command{
	Use:   "bulk-add",
	Short: "批量添加全部可用币种并同步历史K线",
	RunE:  runBulkAdd,
}

var syncCmd = &cobra.Command{
	Use:   "sync <symbol>",
	Short: "同步单个币种的全部周期历史K线",
	Args:  cobra.ExactArgs(1),
	RunE:  runSync,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "服务端地址，默认读取配置")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径")
	rootCmd.AddCommand(bulkAddCmd, syncCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

// newClient 按命令行参数和配置创建API客户端
func newClient() (*client.Client, types.ConsoleConfig, error) {
	var cfg *types.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, types.ConsoleConfig{}, fmt.Errorf("加载配置失败: %w", err)
	}

	consoleCfg := cfg.Console
	if serverURL != "" {
		consoleCfg.BaseURL = serverURL
	}
	return client.New(consoleCfg, cfg.Log.Mode), consoleCfg, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	api, consoleCfg, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan types.Event, 16)
	watcher := client.NewWatcher(api, consoleCfg.ReconnectInterval, func(e types.Event) {
		select {
		case events <- e:
		default:
		}
	}, nil)
	go watcher.Run(ctx)

	store := console.NewConfigStore()
	model := ui.NewModel(api, store, events, consoleCfg.PageSize)

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func runBulkAdd(cmd *cobra.Command, args []string) error {
	api, _, err := newClient()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var state client.BulkAddState
	err = api.StreamBulkAdd(ctx, func(msg types.BulkAddMessage) {
		state.Apply(msg)
		switch msg.Phase {
		case types.PhaseFetch:
			fmt.Println(msg.Message)
		case types.PhaseInfo:
			fmt.Printf("待添加 %d 个币种，已有 %d 个\n", msg.Total, msg.Existing)
		case types.PhaseAdding:
			fmt.Printf("[%3d%%] %d/%d %s %s\n",
				msg.Progress, msg.Current, msg.Total, msg.Symbol, msg.Status)
		case types.PhaseComplete:
			fmt.Printf("完成: 新增 %d, 失败 %d, 同步K线 %d\n", msg.Added, msg.Failed, msg.Synced)
		case types.PhaseError:
			fmt.Println("失败:", msg.Message)
		}
	})
	if err != nil {
		return err
	}
	if state.Err {
		return fmt.Errorf("批量添加失败: %s", state.Message)
	}
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	api, _, err := newClient()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	symbol := args[0]
	var state client.SyncState
	err = api.StreamSync(ctx, symbol, func(msg types.SyncMessage) {
		state.Apply(msg)
		switch msg.Status {
		case types.StatusSyncing:
			fmt.Printf("[%3d%%] %s 同步中...\n", msg.Progress, msg.Interval)
		case types.StatusDone:
			fmt.Printf("[%3d%%] %s 完成, %d 根K线\n", msg.Progress, msg.Interval, msg.Count)
		case types.StatusError:
			fmt.Printf("[%3d%%] %s 失败: %s\n", msg.Progress, msg.Interval, msg.Message)
		case types.PhaseComplete:
			fmt.Printf("%s 同步完成, 共 %d 根K线\n", symbol, msg.Count)
		}
	})
	if err != nil {
		return err
	}
	if state.Failed > 0 {
		return fmt.Errorf("%d 个周期同步失败", state.Failed)
	}
	return nil
}
