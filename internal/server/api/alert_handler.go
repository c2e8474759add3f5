package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cxd19ojbk666/KlineMonitor/internal/server/database"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// handleListAlerts 分页查询提醒记录
func (s *Server) handleListAlerts(c echo.Context) error {
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	filter := database.AlertFilter{Symbol: c.QueryParam("symbol")}

	if raw := c.QueryParam("alert_type"); raw != "" {
		alertType, err := strconv.Atoi(raw)
		if err != nil || alertType < 1 || alertType > 3 {
			return echo.NewHTTPError(http.StatusBadRequest, "alert_type 参数格式错误")
		}
		filter.AlertType = &alertType
	}
	if raw := c.QueryParam("start_time"); raw != "" {
		t, err := parseAlertTime(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "start_time 参数格式错误")
		}
		filter.StartTime = &t
	}
	if raw := c.QueryParam("end_time"); raw != "" {
		t, err := parseAlertTime(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "end_time 参数格式错误")
		}
		filter.EndTime = &t
	}

	total, alerts, err := s.db.ListAlerts(skip, limit, filter)
	if err != nil {
		return err
	}

	items := make([]types.Alert, 0, len(alerts))
	for i := range alerts {
		items = append(items, alerts[i].ToAPI())
	}
	return c.JSON(http.StatusOK, types.Page[types.Alert]{Total: total, Items: items})
}

func parseAlertTime(raw string) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, raw, types.CST)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// handleDashboard 仪表盘统计
func (s *Server) handleDashboard(c echo.Context) error {
	stats, err := s.db.GetDashboardStats(s.scheduler.IsRunning())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// handleDeleteAlert 删除单条提醒
func (s *Server) handleDeleteAlert(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id 参数格式错误")
	}
	if err := s.db.DeleteAlert(uint(id)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "提醒已删除"})
}

// handleDeleteAlerts 清空提醒，可按类型过滤
func (s *Server) handleDeleteAlerts(c echo.Context) error {
	var alertType *int
	if raw := c.QueryParam("alert_type"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 3 {
			return echo.NewHTTPError(http.StatusBadRequest, "alert_type 参数格式错误")
		}
		alertType = &v
	}

	deleted, err := s.db.DeleteAlerts(alertType)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": deleted})
}
