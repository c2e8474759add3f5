package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cxd19ojbk666/KlineMonitor/internal/client"
	"github.com/cxd19ojbk666/KlineMonitor/internal/console"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// 页签
const (
	tabDashboard = iota
	tabSymbols
	tabAlerts
	tabMonitor
	tabSettings
	tabLogs
	tabCount
)

var tabNames = []string{"仪表盘", "币种", "提醒", "监控", "配置", "日志"}

const toastDuration = 3 * time.Second

// ── messages ──────────────────────────────────────────────────────────────────

type dashboardMsg struct {
	gen   int
	stats *types.DashboardStats
	err   error
}

type symbolsMsg struct {
	gen  int
	page *types.Page[types.Symbol]
	err  error
}

type alertsMsg struct {
	gen  int
	page *types.Page[types.Alert]
	err  error
}

type monitorMsg struct {
	gen   int
	items []types.SymbolMonitorData
	err   error
}

type configsMsg struct {
	gen   int
	items []types.ConfigItem
	err   error
}

type logsMsg struct {
	gen     int
	content *types.LogContent
	err     error
}

type actionDoneMsg struct {
	message string
	err     error
}

type serverEventMsg struct{ event types.Event }

type toastExpiredMsg struct{ id int }

// Model 控制台TUI模型
type Model struct {
	api     *client.Client
	store   *console.ConfigStore
	events  <-chan types.Event
	refresh time.Duration

	tab      int
	width    int
	height   int
	selected int

	dashboard *types.DashboardStats
	symbols   *console.ListState[types.Symbol]
	alerts    *console.ListState[types.Alert]
	monitor   *console.ListState[types.SymbolMonitorData]
	configs   *console.ListState[types.ConfigItem]
	logs      *types.LogContent
	logType   string
	logsGen   int
	dashGen   int

	symbolsPage console.Pagination
	alertsPage  console.Pagination

	editing    bool
	editKey    string
	editBuffer string

	toast      string
	toastErr   bool
	toastID    int
	lastUpdate time.Time
}

// NewModel 创建TUI模型，events为SSE事件通道
func NewModel(api *client.Client, store *console.ConfigStore, events <-chan types.Event, pageSize int) Model {
	return Model{
		api:         api,
		store:       store,
		events:      events,
		logType:     "app",
		symbols:     &console.ListState[types.Symbol]{},
		alerts:      &console.ListState[types.Alert]{},
		monitor:     &console.ListState[types.SymbolMonitorData]{},
		configs:     &console.ListState[types.ConfigItem]{},
		symbolsPage: console.NewPagination(pageSize),
		alertsPage:  console.NewPagination(pageSize),
	}
}

// ── Init / Update ─────────────────────────────────────────────────────────────

type initMsg struct{}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return initMsg{} },
		waitForEvent(m.events),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case initMsg:
		return m, tea.Batch(m.fetchDashboard(), m.fetchConfigs())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case dashboardMsg:
		if msg.gen == m.dashGen {
			if msg.err == nil {
				m.dashboard = msg.stats
				m.lastUpdate = time.Now()
			} else if m.tab == tabDashboard {
				return m.withToast(msg.err.Error(), true)
			}
		}
		return m, nil

	case symbolsMsg:
		var total int64
		var items []types.Symbol
		if msg.page != nil {
			total, items = msg.page.Total, msg.page.Items
		}
		if m.symbols.Resolve(msg.gen, total, items, msg.err) && msg.err != nil {
			return m.withToast(msg.err.Error(), true)
		}
		m.clampSelection()
		return m, nil

	case alertsMsg:
		var total int64
		var items []types.Alert
		if msg.page != nil {
			total, items = msg.page.Total, msg.page.Items
		}
		if m.alerts.Resolve(msg.gen, total, items, msg.err) && msg.err != nil {
			return m.withToast(msg.err.Error(), true)
		}
		return m, nil

	case monitorMsg:
		if m.monitor.Resolve(msg.gen, int64(len(msg.items)), msg.items, msg.err) && msg.err != nil {
			return m.withToast(msg.err.Error(), true)
		}
		return m, nil

	case configsMsg:
		if m.configs.Resolve(msg.gen, int64(len(msg.items)), msg.items, msg.err) {
			if msg.err != nil {
				return m.withToast(msg.err.Error(), true)
			}
			m.store.Replace(msg.items)
		}
		return m, nil

	case logsMsg:
		if msg.gen == m.logsGen {
			if msg.err != nil {
				return m.withToast(msg.err.Error(), true)
			}
			m.logs = msg.content
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			return m.withToast(msg.err.Error(), true)
		}
		model, toastCmd := m.withToast(msg.message, false)
		return model, tea.Batch(toastCmd, model.refreshTab())

	case serverEventMsg:
		model, cmd := m.handleServerEvent(msg.event)
		return model, tea.Batch(cmd, waitForEvent(model.events))

	case toastExpiredMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab", "right":
		m.tab = (m.tab + 1) % tabCount
		m.selected = 0
		return m, m.refreshTab()

	case "shift+tab", "left":
		m.tab = (m.tab + tabCount - 1) % tabCount
		m.selected = 0
		return m, m.refreshTab()

	case "1", "2", "3", "4", "5", "6":
		m.tab = int(msg.String()[0] - '1')
		m.selected = 0
		return m, m.refreshTab()

	case "r":
		return m, m.refreshTab()

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down", "j":
		m.selected++
		m.clampSelection()
		return m, nil

	case "n":
		switch m.tab {
		case tabSymbols:
			total, _, _, _ := m.symbols.Snapshot()
			m.symbolsPage.Next(total)
			return m, m.fetchSymbols()
		case tabAlerts:
			total, _, _, _ := m.alerts.Snapshot()
			m.alertsPage.Next(total)
			return m, m.fetchAlerts()
		}
		return m, nil

	case "p":
		switch m.tab {
		case tabSymbols:
			m.symbolsPage.Prev()
			return m, m.fetchSymbols()
		case tabAlerts:
			m.alertsPage.Prev()
			return m, m.fetchAlerts()
		}
		return m, nil

	case "t":
		if m.tab == tabSymbols {
			if symbol, ok := m.selectedSymbol(); ok {
				return m, m.toggleSymbol(symbol)
			}
		}
		return m, nil

	case "s":
		if m.tab == tabDashboard {
			return m, m.toggleScheduler()
		}
		return m, nil

	case "l":
		if m.tab == tabLogs {
			m.logType = nextLogType(m.logType)
			return m, m.fetchLogs()
		}
		return m, nil

	case "d":
		if m.tab == tabAlerts {
			if id, ok := m.selectedAlertID(); ok {
				return m, m.deleteAlert(id)
			}
		}
		return m, nil

	case "enter":
		if m.tab == tabSettings {
			_, items, _, _ := m.configs.Snapshot()
			if m.selected >= 0 && m.selected < len(items) {
				m.editing = true
				m.editKey = items[m.selected].Key
				m.editBuffer = items[m.selected].Value
			}
		}
		return m, nil
	}

	return m, nil
}

// handleEditKey 配置编辑模式的按键处理
func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.editBuffer = ""
		return m, nil
	case tea.KeyEnter:
		m.editing = false
		return m, m.saveConfig(m.editKey, m.editBuffer)
	case tea.KeyBackspace:
		if len(m.editBuffer) > 0 {
			runes := []rune(m.editBuffer)
			m.editBuffer = string(runes[:len(runes)-1])
		}
		return m, nil
	case tea.KeyRunes:
		m.editBuffer += string(msg.Runes)
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	return m, nil
}

// handleServerEvent 按事件类型刷新相关页面
func (m Model) handleServerEvent(event types.Event) (Model, tea.Cmd) {
	switch event.Type {
	case types.EventSyncComplete:
		cmds := []tea.Cmd{m.fetchDashboard()}
		if m.tab == tabSymbols {
			cmds = append(cmds, m.fetchSymbols())
		}
		return m, tea.Batch(cmds...)
	case types.EventMonitorComplete:
		cmds := []tea.Cmd{m.fetchDashboard()}
		if m.tab == tabMonitor {
			cmds = append(cmds, m.fetchMonitor())
		}
		if m.tab == tabAlerts {
			cmds = append(cmds, m.fetchAlerts())
		}
		return m, tea.Batch(cmds...)
	case types.EventSchedulerStatus:
		return m, m.fetchDashboard()
	}
	return m, nil
}

// ── commands ──────────────────────────────────────────────────────────────────

func (m *Model) refreshTab() tea.Cmd {
	switch m.tab {
	case tabDashboard:
		return m.fetchDashboard()
	case tabSymbols:
		return m.fetchSymbols()
	case tabAlerts:
		return m.fetchAlerts()
	case tabMonitor:
		return m.fetchMonitor()
	case tabSettings:
		return m.fetchConfigs()
	case tabLogs:
		return m.fetchLogs()
	}
	return nil
}

func (m *Model) fetchDashboard() tea.Cmd {
	m.dashGen++
	gen := m.dashGen
	api := m.api
	return func() tea.Msg {
		stats, err := api.Dashboard(context.Background())
		return dashboardMsg{gen: gen, stats: stats, err: err}
	}
}

func (m *Model) fetchSymbols() tea.Cmd {
	gen := m.symbols.Begin()
	api := m.api
	query := client.SymbolQuery{Skip: m.symbolsPage.Skip(), Limit: m.symbolsPage.PageSize}
	return func() tea.Msg {
		page, err := api.ListSymbols(context.Background(), query)
		return symbolsMsg{gen: gen, page: page, err: err}
	}
}

func (m *Model) fetchAlerts() tea.Cmd {
	gen := m.alerts.Begin()
	api := m.api
	query := client.AlertQuery{Skip: m.alertsPage.Skip(), Limit: m.alertsPage.PageSize}
	return func() tea.Msg {
		page, err := api.ListAlerts(context.Background(), query)
		return alertsMsg{gen: gen, page: page, err: err}
	}
}

func (m *Model) fetchMonitor() tea.Cmd {
	gen := m.monitor.Begin()
	api := m.api
	return func() tea.Msg {
		items, err := api.MonitorData(context.Background(), "1m", 30)
		return monitorMsg{gen: gen, items: items, err: err}
	}
}

func (m *Model) fetchConfigs() tea.Cmd {
	gen := m.configs.Begin()
	api := m.api
	return func() tea.Msg {
		items, err := api.ListConfigs(context.Background())
		return configsMsg{gen: gen, items: items, err: err}
	}
}

func (m *Model) fetchLogs() tea.Cmd {
	m.logsGen++
	gen := m.logsGen
	api := m.api
	logType := m.logType
	return func() tea.Msg {
		content, err := api.TodayLog(context.Background(), logType)
		return logsMsg{gen: gen, content: content, err: err}
	}
}

func (m *Model) toggleSymbol(symbol string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		updated, err := api.ToggleSymbol(context.Background(), symbol)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if updated.IsActive {
			return actionDoneMsg{message: symbol + " 已启用"}
		}
		return actionDoneMsg{message: symbol + " 已停用"}
	}
}

func (m *Model) deleteAlert(id uint) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		if err := api.DeleteAlert(context.Background(), id); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{message: "提醒已删除"}
	}
}

func (m *Model) saveConfig(key, value string) tea.Cmd {
	api := m.api
	store := m.store
	return func() tea.Msg {
		item, err := api.SetConfig(context.Background(), key, value)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		store.Set(item.Key, item.Value)
		return actionDoneMsg{message: key + " 已更新"}
	}
}

func (m *Model) toggleScheduler() tea.Cmd {
	api := m.api
	running := m.dashboard != nil && m.dashboard.IsRunning
	return func() tea.Msg {
		if running {
			if err := api.PauseScheduler(context.Background()); err != nil {
				return actionDoneMsg{err: err}
			}
			return actionDoneMsg{message: "调度器已暂停"}
		}
		if err := api.ResumeScheduler(context.Background()); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{message: "调度器已恢复"}
	}
}

// waitForEvent 阻塞等待下一个服务端事件
func waitForEvent(ch <-chan types.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return serverEventMsg{event: event}
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (m Model) withToast(text string, isErr bool) (Model, tea.Cmd) {
	m.toast = text
	m.toastErr = isErr
	m.toastID++
	id := m.toastID
	return m, tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) clampSelection() {
	var count int
	switch m.tab {
	case tabSymbols:
		_, items, _, _ := m.symbols.Snapshot()
		count = len(items)
	case tabAlerts:
		_, items, _, _ := m.alerts.Snapshot()
		count = len(items)
	case tabMonitor:
		_, items, _, _ := m.monitor.Snapshot()
		count = len(items)
	case tabSettings:
		_, items, _, _ := m.configs.Snapshot()
		count = len(items)
	default:
		return
	}
	if count == 0 {
		m.selected = 0
	} else if m.selected >= count {
		m.selected = count - 1
	}
}

func (m Model) selectedAlertID() (uint, bool) {
	_, items, _, _ := m.alerts.Snapshot()
	if m.selected < 0 || m.selected >= len(items) {
		return 0, false
	}
	return items[m.selected].ID, true
}

func (m Model) selectedSymbol() (string, bool) {
	_, items, _, _ := m.symbols.Snapshot()
	if m.selected < 0 || m.selected >= len(items) {
		return "", false
	}
	return items[m.selected].Symbol, true
}

func nextLogType(current string) string {
	order := []string{"app", "info", "warning", "error"}
	for i, t := range order {
		if t == current {
			return order[(i+1)%len(order)]
		}
	}
	return "app"
}
