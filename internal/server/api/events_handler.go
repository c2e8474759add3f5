package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

const heartbeatInterval = 30 * time.Second

// handleEvents SSE事件流，推送同步、监控和调度状态事件
func (s *Server) handleEvents(c echo.Context) error {
	w := newSSEWriter(c)

	events, cancel := s.broadcaster.Subscribe()
	defer cancel()

	if err := w.Send(types.Event{
		Type:      types.EventConnected,
		Data:      map[string]interface{}{"subscribers": s.broadcaster.SubscriberCount()},
		Timestamp: types.NowCST().Format(time.RFC3339),
	}); err != nil {
		return nil
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := w.Send(event); err != nil {
				return nil
			}
		case <-ticker.C:
			if err := w.Comment("heartbeat"); err != nil {
				return nil
			}
		}
	}
}
