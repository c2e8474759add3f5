package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cxd19ojbk666/KlineMonitor/internal/server/binance"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/database"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// handleMonitorData 全部启用币种的监控快照
func (s *Server) handleMonitorData(c echo.Context) error {
	interval := c.QueryParam("interval")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	symbols, err := s.db.ActiveSymbols()
	if err != nil {
		return err
	}

	items := make([]types.SymbolMonitorData, 0, len(symbols))
	for i := range symbols {
		data, err := s.monitor.MonitorData(symbols[i].Symbol, interval, limit)
		if err != nil {
			return err
		}
		items = append(items, *data)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": len(items), "items": items})
}

// handleSymbolMonitorData 单币种监控快照
func (s *Server) handleSymbolMonitorData(c echo.Context) error {
	name := c.Param("symbol")
	if _, err := s.db.GetSymbol(name); err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	data, err := s.monitor.MonitorData(name, c.QueryParam("interval"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

// handleMonitorKlines 查询单币种历史K线
func (s *Server) handleMonitorKlines(c echo.Context) error {
	name := c.Param("symbol")
	if _, err := s.db.GetSymbol(name); err != nil {
		return err
	}

	interval := c.QueryParam("interval")
	if interval == "" {
		interval = "1m"
	}
	if !binance.IsSupported(interval) {
		return echo.NewHTTPError(http.StatusBadRequest, "不支持的K线周期: "+interval)
	}

	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	if limit > 1500 {
		limit = 1500
	}

	klines, err := s.db.RecentKlines(name, interval, limit)
	if err != nil {
		return err
	}

	// 按时间升序返回
	for i, j := 0, len(klines)-1; i < j; i, j = i+1, j-1 {
		klines[i], klines[j] = klines[j], klines[i]
	}
	return c.JSON(http.StatusOK, echo.Map{
		"symbol":   name,
		"interval": interval,
		"total":    len(klines),
		"items":    database.ToAPIKlines(klines),
	})
}
