package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// handleSchedulerStatus 调度器状态
func (s *Server) handleSchedulerStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.scheduler.Status())
}

// handleSchedulerPause 暂停调度
func (s *Server) handleSchedulerPause(c echo.Context) error {
	s.scheduler.Pause()
	s.broadcaster.Broadcast(types.EventSchedulerStatus, s.scheduler.Status())
	return c.JSON(http.StatusOK, echo.Map{"message": "调度器已暂停", "is_running": false})
}

// handleSchedulerResume 恢复调度
func (s *Server) handleSchedulerResume(c echo.Context) error {
	s.scheduler.Resume()
	s.broadcaster.Broadcast(types.EventSchedulerStatus, s.scheduler.Status())
	return c.JSON(http.StatusOK, echo.Map{"message": "调度器已恢复", "is_running": true})
}
