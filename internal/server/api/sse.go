package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// sseWriter SSE响应写入器
type sseWriter struct {
	response *echo.Response
}

// newSSEWriter 写入SSE响应头并返回写入器
func newSSEWriter(c echo.Context) *sseWriter {
	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set("Cache-Control", "no-cache")
	response.Header().Set("Connection", "keep-alive")
	response.WriteHeader(http.StatusOK)
	return &sseWriter{response: response}
}

// Send 发送一条data事件
func (w *sseWriter) Send(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.response, "data: %s\n\n", payload); err != nil {
		return err
	}
	w.response.Flush()
	return nil
}

// Comment 发送一条注释行，心跳保活使用
func (w *sseWriter) Comment(text string) error {
	if _, err := fmt.Fprintf(w.response, ": %s\n\n", text); err != nil {
		return err
	}
	w.response.Flush()
	return nil
}
