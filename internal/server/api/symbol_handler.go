package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/cxd19ojbk666/KlineMonitor/internal/server/binance"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// handleListSymbols 分页查询币种
func (s *Server) handleListSymbols(c echo.Context) error {
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	var isActive *bool
	if raw := c.QueryParam("is_active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "is_active 参数格式错误")
		}
		isActive = &v
	}

	total, symbols, err := s.db.ListSymbols(skip, limit, isActive, c.QueryParam("symbol"))
	if err != nil {
		return err
	}

	items := make([]types.Symbol, 0, len(symbols))
	for i := range symbols {
		items = append(items, symbols[i].ToAPI())
	}
	return c.JSON(http.StatusOK, types.Page[types.Symbol]{Total: total, Items: items})
}

type createSymbolRequest struct {
	Symbol string `json:"symbol"`
}

// handleCreateSymbol 新增监控币种
func (s *Server) handleCreateSymbol(c echo.Context) error {
	var req createSymbolRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "请求体格式错误")
	}

	name := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "币种名称不能为空")
	}

	symbol, err := s.db.CreateSymbol(name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, symbol.ToAPI())
}

// handleInitProgress 查询初始同步进度
func (s *Server) handleInitProgress(c echo.Context) error {
	progress, err := s.db.GetInitProgress()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, progress)
}

// handleAvailableSymbols 查询交易所可添加的币种
func (s *Server) handleAvailableSymbols(c echo.Context) error {
	all, err := s.client.AvailableSymbols(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "获取交易所币种失败: "+err.Error())
	}

	existing, err := s.db.AllSymbolNames()
	if err != nil {
		return err
	}

	existingSet := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		existingSet[name] = struct{}{}
	}

	available := make([]string, 0, len(all))
	for _, name := range all {
		if _, ok := existingSet[name]; !ok {
			available = append(available, name)
		}
	}

	return c.JSON(http.StatusOK, types.AvailableSymbols{
		TotalBinance: len(all),
		Existing:     len(existing),
		Available:    len(available),
		Symbols:      available,
	})
}

// handleBulkAdd 批量添加全部可用币种，SSE推送进度
func (s *Server) handleBulkAdd(c echo.Context) error {
	w := newSSEWriter(c)
	ctx := c.Request().Context()

	_ = w.Send(types.BulkAddMessage{Phase: types.PhaseFetch, Message: "正在获取交易所币种列表"})

	all, err := s.client.AvailableSymbols(ctx)
	if err != nil {
		return w.Send(types.BulkAddMessage{Phase: types.PhaseError, Message: "获取交易所币种失败: " + err.Error()})
	}

	existing, err := s.db.AllSymbolNames()
	if err != nil {
		return w.Send(types.BulkAddMessage{Phase: types.PhaseError, Message: "查询已有币种失败: " + err.Error()})
	}

	existingSet := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		existingSet[name] = struct{}{}
	}
	var pending []string
	for _, name := range all {
		if _, ok := existingSet[name]; !ok {
			pending = append(pending, name)
		}
	}

	_ = w.Send(types.BulkAddMessage{
		Phase:    types.PhaseInfo,
		Total:    len(pending),
		Existing: len(existing),
	})

	added, failed := 0, 0
	var synced int64
	for i, name := range pending {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		status := types.StatusSuccess
		if _, err := s.db.CreateSymbol(name); err != nil {
			status = types.StatusFailed
			failed++
			zap.L().Warn("批量添加币种失败", zap.String("symbol", name), zap.Error(err))
		} else if count, err := s.client.InitialSync(ctx, name); err != nil {
			status = types.StatusFailed
			failed++
			synced += count
			zap.L().Warn("新币种初始同步失败", zap.String("symbol", name), zap.Error(err))
		} else {
			added++
			synced += count
		}

		_ = w.Send(types.BulkAddMessage{
			Phase:    types.PhaseAdding,
			Progress: (i + 1) * 100 / len(pending),
			Current:  i + 1,
			Total:    len(pending),
			Symbol:   name,
			Status:   status,
		})
	}

	return w.Send(types.BulkAddMessage{
		Phase:  types.PhaseComplete,
		Added:  added,
		Failed: failed,
		Synced: synced,
	})
}

// handleSyncSymbol 对单币种按全部周期同步历史K线，SSE推送进度
func (s *Server) handleSyncSymbol(c echo.Context) error {
	name := c.Param("symbol")
	if _, err := s.db.GetSymbol(name); err != nil {
		return err
	}

	w := newSSEWriter(c)
	ctx := c.Request().Context()

	intervals := binance.SupportedIntervals
	var total int64
	hadError := false

	for i, interval := range intervals {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		progress := i * 100 / len(intervals)
		_ = w.Send(types.SyncMessage{
			Progress: progress,
			Interval: interval,
			Status:   types.StatusSyncing,
		})

		count, err := s.client.SyncKlines(ctx, name, interval, true)
		if err != nil {
			hadError = true
			_ = w.Send(types.SyncMessage{
				Progress: progress,
				Interval: interval,
				Status:   types.StatusError,
				Message:  err.Error(),
			})
			continue
		}
		total += count

		_ = w.Send(types.SyncMessage{
			Progress: (i + 1) * 100 / len(intervals),
			Interval: interval,
			Status:   types.StatusDone,
			Count:    count,
		})
	}

	if !hadError {
		if err := s.db.MarkInitialSynced(name); err != nil {
			zap.L().Warn("标记初始同步失败", zap.String("symbol", name), zap.Error(err))
		}
	}

	return w.Send(types.SyncMessage{
		Progress: 100,
		Status:   types.PhaseComplete,
		Count:    total,
	})
}

// handleToggleSymbol 切换币种启用状态
func (s *Server) handleToggleSymbol(c echo.Context) error {
	symbol, err := s.db.ToggleSymbol(c.Param("symbol"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, symbol.ToAPI())
}

type batchSymbolsRequest struct {
	Symbols []string `json:"symbols"`
}

// handleBatchActivate 批量设置币种启用状态
func (s *Server) handleBatchActivate(c echo.Context) error {
	isActive, err := strconv.ParseBool(c.QueryParam("is_active"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "is_active 参数格式错误")
	}

	var req batchSymbolsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "请求体格式错误")
	}

	affected, err := s.db.BatchSetActive(req.Symbols, isActive)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": affected})
}

// handleBatchDelete 批量删除币种
func (s *Server) handleBatchDelete(c echo.Context) error {
	var req batchSymbolsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "请求体格式错误")
	}

	deleted, err := s.db.BatchDelete(req.Symbols)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": deleted})
}

// handleDeleteSymbol 删除单个币种
func (s *Server) handleDeleteSymbol(c echo.Context) error {
	if err := s.db.DeleteSymbol(c.Param("symbol")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "币种已删除"})
}
