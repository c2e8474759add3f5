package ui

import (
	"fmt"
	"strings"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

func (m Model) View() string {
	if m.width == 0 {
		return "正在连接服务端..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(m.renderTabs())
	b.WriteByte('\n')

	switch m.tab {
	case tabDashboard:
		b.WriteString(m.renderDashboard())
	case tabSymbols:
		b.WriteString(m.renderSymbols())
	case tabAlerts:
		b.WriteString(m.renderAlerts())
	case tabMonitor:
		b.WriteString(m.renderMonitor())
	case tabSettings:
		b.WriteString(m.renderSettings())
	case tabLogs:
		b.WriteString(m.renderLogs())
	}

	b.WriteByte('\n')
	b.WriteString(m.renderFooter())
	return appStyle.Render(b.String())
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("K线监控管理控制台")
	if m.toast != "" {
		style := infoToastStyle
		if m.toastErr {
			style = toastStyle
		}
		return title + "  " + style.Render(m.toast)
	}
	if !m.lastUpdate.IsZero() {
		return title + "  " + dimStyle.Render("更新于 "+m.lastUpdate.Format("15:04:05"))
	}
	return title
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, tabCount)
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if i == m.tab {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderDashboard() string {
	if m.dashboard == nil {
		return sectionStyle.Render("加载中...")
	}
	stats := m.dashboard

	running := upStyle.Render("运行中")
	if !stats.IsRunning {
		running = downStyle.Render("已暂停")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  调度器: %s\n\n", headerStyle.Render("今日概览"), running)
	fmt.Fprintf(&b, "今日提醒: %d    交易量放大: %d    短时涨幅: %d    开盘价匹配: %d\n",
		stats.TotalAlertsToday, stats.AlertType1Count, stats.AlertType2Count, stats.AlertType3Count)
	fmt.Fprintf(&b, "启用币种: %d\n\n", stats.ActiveSymbolsCount)

	b.WriteString(headerStyle.Render("最近提醒"))
	b.WriteByte('\n')
	if len(stats.RecentAlerts) == 0 {
		b.WriteString(dimStyle.Render("暂无提醒"))
	}
	limit := m.listHeight()
	for i, alert := range stats.RecentAlerts {
		if i >= limit {
			break
		}
		fmt.Fprintf(&b, "%s  %-12s %s\n",
			alert.CreatedAt.In(types.CST).Format("01-02 15:04"),
			alert.Symbol,
			alertTypeName(alert.AlertType))
	}
	return sectionStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderSymbols() string {
	total, items, loading, _ := m.symbols.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(
		fmt.Sprintf("币种 %d  第%d/%d页", total, m.symbolsPage.Page, m.symbolsPage.TotalPages(total))))

	if loading && len(items) == 0 {
		b.WriteString(dimStyle.Render("加载中..."))
		return sectionStyle.Render(b.String())
	}
	if len(items) == 0 {
		b.WriteString(dimStyle.Render("暂无币种"))
		return sectionStyle.Render(b.String())
	}

	for i, symbol := range items {
		status := upStyle.Render("启用")
		if !symbol.IsActive {
			status = dimStyle.Render("停用")
		}
		synced := warnStyle.Render("同步中")
		if symbol.InitialSynced {
			synced = dimStyle.Render("已同步")
		}
		line := fmt.Sprintf("%-14s %s  %s  %s",
			symbol.Symbol, status, synced,
			symbol.CreatedAt.In(types.CST).Format("2006-01-02"))
		if i == m.selected {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return sectionStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderAlerts() string {
	total, items, loading, _ := m.alerts.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(
		fmt.Sprintf("提醒 %d  第%d/%d页", total, m.alertsPage.Page, m.alertsPage.TotalPages(total))))

	if loading && len(items) == 0 {
		b.WriteString(dimStyle.Render("加载中..."))
		return sectionStyle.Render(b.String())
	}
	if len(items) == 0 {
		b.WriteString(dimStyle.Render("暂无提醒"))
		return sectionStyle.Render(b.String())
	}

	for i := range items {
		alert := &items[i]
		line := fmt.Sprintf("%s  %-12s %-10s %s",
			alert.CreatedAt.In(types.CST).Format("01-02 15:04:05"),
			alert.Symbol,
			alertTypeName(alert.AlertType),
			alertSummary(alert))
		if i == m.selected {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return sectionStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderMonitor() string {
	_, items, loading, _ := m.monitor.Snapshot()

	var b strings.Builder
	b.WriteString(headerStyle.Render("实时监控"))
	b.WriteByte('\n')

	if loading && len(items) == 0 {
		b.WriteString(dimStyle.Render("加载中..."))
		return sectionStyle.Render(b.String())
	}
	if len(items) == 0 {
		b.WriteString(dimStyle.Render("暂无启用币种"))
		return sectionStyle.Render(b.String())
	}

	fmt.Fprintf(&b, "%s\n", headerStyle.Render(
		fmt.Sprintf("%-14s %12s %10s %10s %8s", "币种", "最新价", "15m量比%", "短时涨幅%", "开盘价")))
	for _, item := range items {
		volume := fmt.Sprintf("%10.2f", item.Metrics.VolumePercent)
		if item.Metrics.VolumeTriggered {
			volume = upStyle.Render(volume)
		}
		rise := fmt.Sprintf("%10.2f", item.Metrics.RisePercent)
		if item.Metrics.RiseTriggered {
			rise = upStyle.Render(rise)
		} else if item.Metrics.RisePercent < 0 {
			rise = downStyle.Render(rise)
		}
		matches := fmt.Sprintf("%8d", item.Metrics.OpenPriceMatches)
		if item.Metrics.OpenPriceMatches > 0 {
			matches = warnStyle.Render(matches)
		}
		fmt.Fprintf(&b, "%-14s %12.4f %s %s %s\n",
			item.Symbol, item.CurrentPrice, volume, rise, matches)
	}
	return sectionStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderSettings() string {
	_, items, loading, _ := m.configs.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("全局配置 v%d", m.store.Version())))

	if loading && len(items) == 0 {
		b.WriteString(dimStyle.Render("加载中..."))
		return sectionStyle.Render(b.String())
	}

	for i, item := range items {
		var line string
		if m.editing && item.Key == m.editKey {
			line = selectedStyle.Render(fmt.Sprintf("> %-24s = %s▌", item.Key, m.editBuffer))
		} else if i == m.selected {
			line = selectedStyle.Render(fmt.Sprintf("> %-24s = %s", item.Key, item.Value))
		} else {
			line = fmt.Sprintf("  %-24s = %s", item.Key, item.Value)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return sectionStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderLogs() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render("当日日志 ["+m.logType+"]"))

	if m.logs == nil {
		b.WriteString(dimStyle.Render("加载中..."))
		return sectionStyle.Render(b.String())
	}
	if len(m.logs.Lines) == 0 {
		b.WriteString(dimStyle.Render("暂无日志"))
		return sectionStyle.Render(b.String())
	}

	limit := m.listHeight()
	lines := m.logs.Lines
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	width := m.width - 6
	for _, line := range lines {
		if width > 0 && len(line) > width {
			line = line[:width]
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return sectionStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderFooter() string {
	if m.editing {
		return footerStyle.Render("[enter]保存 [esc]取消")
	}

	hints := "[1-6]切换页签 [r]刷新 [q]退出"
	switch m.tab {
	case tabDashboard:
		hints += " [s]暂停/恢复调度"
	case tabSymbols:
		hints += " [n/p]翻页 [t]启停币种 [j/k]选择"
	case tabAlerts:
		hints += " [n/p]翻页 [d]删除选中"
	case tabSettings:
		hints += " [j/k]选择 [enter]编辑"
	case tabLogs:
		hints += " [l]切换日志类型"
	}
	return footerStyle.Render(hints)
}

// listHeight 列表可用的行数
func (m Model) listHeight() int {
	h := m.height - 10
	if h < 5 {
		h = 5
	}
	return h
}

func alertTypeName(alertType int) string {
	switch alertType {
	case types.AlertTypeVolume:
		return "交易量放大"
	case types.AlertTypeRise:
		return "短时涨幅"
	case types.AlertTypeOpenPrice:
		return "开盘价匹配"
	default:
		return fmt.Sprintf("类型%d", alertType)
	}
}

// alertSummary 提醒记录的单行摘要
func alertSummary(alert *types.Alert) string {
	data, err := alert.ParseAlertData()
	if err != nil {
		return ""
	}
	switch d := data.(type) {
	case *types.VolumeAlertData:
		return fmt.Sprintf("15m量 %.2f / 8h量 %.2f (%.1f%%)", d.Volume15m, d.Volume8h, d.Percent)
	case *types.RiseAlertData:
		return fmt.Sprintf("涨幅 %.2f%% (阈值 %.2f%%)", d.RisePercent, d.Threshold)
	case *types.OpenPriceAlertData:
		return fmt.Sprintf("%s 误差 %.2f%% D=%.4f E=%.4f", d.Interval, d.ErrorPercent, d.PriceD, d.PriceE)
	default:
		return ""
	}
}
