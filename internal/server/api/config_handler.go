package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cxd19ojbk666/KlineMonitor/internal/server/binance"
	"github.com/cxd19ojbk666/KlineMonitor/internal/server/database"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// handleListConfigs 查询全部全局配置，首次访问时写入默认值
func (s *Server) handleListConfigs(c echo.Context) error {
	entries, err := s.db.ListConfigs()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		if err := s.db.SeedDefaultConfigs(s.cfg.Monitor); err != nil {
			return err
		}
		if entries, err = s.db.ListConfigs(); err != nil {
			return err
		}
	}

	items := make([]types.ConfigItem, 0, len(entries))
	for i := range entries {
		items = append(items, entries[i].ToAPI())
	}
	return c.JSON(http.StatusOK, items)
}

// handleGetConfig 查询单个配置项
func (s *Server) handleGetConfig(c echo.Context) error {
	entry, err := s.db.GetConfig(c.Param("key"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry.ToAPI())
}

type configValueRequest struct {
	Value string `json:"value"`
}

// handleSetConfig 写入单个配置项
func (s *Server) handleSetConfig(c echo.Context) error {
	key := c.Param("key")

	var req configValueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "请求体格式错误")
	}

	if err := validateConfigValue(key, req.Value); err != nil {
		return err
	}

	entry, err := s.db.SetConfig(key, req.Value)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry.ToAPI())
}

// handleDeleteConfig 删除配置项
func (s *Server) handleDeleteConfig(c echo.Context) error {
	if err := s.db.DeleteConfig(c.Param("key")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "配置已删除"})
}

// handleBatchSetConfigs 批量写入配置
func (s *Server) handleBatchSetConfigs(c echo.Context) error {
	var items map[string]string
	if err := c.Bind(&items); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "请求体格式错误")
	}

	for key, value := range items {
		if err := validateConfigValue(key, value); err != nil {
			return err
		}
	}

	if err := s.db.BatchSetConfigs(items); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "配置已更新", "count": len(items)})
}

// handleListSymbolConfigs 分页查询币种级配置
func (s *Server) handleListSymbolConfigs(c echo.Context) error {
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	total, configs, err := s.db.ListSymbolConfigs(skip, limit, c.QueryParam("symbol"))
	if err != nil {
		return err
	}

	items := make([]types.SymbolConfig, 0, len(configs))
	for i := range configs {
		items = append(items, configs[i].ToAPI())
	}
	return c.JSON(http.StatusOK, types.Page[types.SymbolConfig]{Total: total, Items: items})
}

type symbolConfigRequest struct {
	Symbol         string   `json:"symbol"`
	Interval       string   `json:"interval"`
	PriceError     *float64 `json:"price_error"`
	MiddleKlineCnt *int     `json:"middle_kline_cnt"`
	FakeKlineCnt   *int     `json:"fake_kline_cnt"`
}

func (r *symbolConfigRequest) validate() error {
	if !binance.IsSupported(r.Interval) {
		return newValidationError([]string{"body", "interval"},
			"不支持的K线周期: "+r.Interval, "value_error.interval")
	}
	if err := validateFloatRange("price_error", r.PriceError, 0, 100); err != nil {
		return err
	}
	if err := validateNonNegative("middle_kline_cnt", r.MiddleKlineCnt); err != nil {
		return err
	}
	return validateNonNegative("fake_kline_cnt", r.FakeKlineCnt)
}

// handleCreateSymbolConfig 新增币种配置，要求币种已在监控列表
func (s *Server) handleCreateSymbolConfig(c echo.Context) error {
	var req symbolConfigRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "请求体格式错误")
	}
	if err := req.validate(); err != nil {
		return err
	}

	if _, err := s.db.GetSymbol(req.Symbol); err != nil {
		return err
	}

	config := &database.SymbolConfig{
		Symbol:         req.Symbol,
		Interval:       req.Interval,
		PriceError:     req.PriceError,
		MiddleKlineCnt: req.MiddleKlineCnt,
		FakeKlineCnt:   req.FakeKlineCnt,
	}
	if err := s.db.CreateSymbolConfig(config); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, config.ToAPI())
}

// handleGetSymbolConfig 查询币种配置
func (s *Server) handleGetSymbolConfig(c echo.Context) error {
	config, err := s.db.GetSymbolConfig(c.Param("symbol"), c.Param("interval"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, config.ToAPI())
}

// handleUpsertSymbolConfig 写入币种配置，不存在时创建
func (s *Server) handleUpsertSymbolConfig(c echo.Context) error {
	var req symbolConfigRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "请求体格式错误")
	}
	req.Symbol = c.Param("symbol")
	req.Interval = c.Param("interval")
	if err := req.validate(); err != nil {
		return err
	}

	if _, err := s.db.GetSymbol(req.Symbol); err != nil {
		return err
	}

	config := &database.SymbolConfig{
		Symbol:         req.Symbol,
		Interval:       req.Interval,
		PriceError:     req.PriceError,
		MiddleKlineCnt: req.MiddleKlineCnt,
		FakeKlineCnt:   req.FakeKlineCnt,
	}
	if err := s.db.UpsertSymbolConfig(config); err != nil {
		return err
	}

	saved, err := s.db.GetSymbolConfig(req.Symbol, req.Interval)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved.ToAPI())
}

// handleDeleteSymbolConfig 删除币种配置
func (s *Server) handleDeleteSymbolConfig(c echo.Context) error {
	if err := s.db.DeleteSymbolConfig(c.Param("symbol"), c.Param("interval")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "币种配置已删除"})
}
