package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/logger"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// 流式请求不设超时，连接由ctx控制
var streamClient = &http.Client{}

// openStream 建立SSE连接
func (c *Client) openStream(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, c.transportError(err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, c.statusError(resp.StatusCode, nil)
	}
	return resp, nil
}

// readStream 逐行读取SSE消息体，把data行交给dispatch处理
func readStream(resp *http.Response, dispatch func(data []byte) bool) error {
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			// 空行和注释行(心跳)直接跳过
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if done := dispatch([]byte(data)); done {
			return nil
		}
	}
	return scanner.Err()
}

// StreamEvents 监听 /events 事件流，流结束或出错时返回，重连策略由调用方决定
func (c *Client) StreamEvents(ctx context.Context, handler func(types.Event)) error {
	resp, err := c.openStream(ctx, "/events")
	if err != nil {
		return err
	}

	return readStream(resp, func(data []byte) bool {
		var event types.Event
		if err := json.Unmarshal(data, &event); err != nil {
			c.log.Error(logger.SampleKey("events", "decode"),
				"事件消息解析失败", zap.ByteString("data", data), zap.Error(err))
			return false
		}
		handler(event)
		return false
	})
}

// Watcher 事件流守护，断开后等待固定间隔无条件重连，直到ctx取消
type Watcher struct {
	client   *Client
	interval time.Duration
	handler  func(types.Event)
	onError  func(error)
}

// NewWatcher 创建事件流守护
func NewWatcher(c *Client, interval time.Duration, handler func(types.Event), onError func(error)) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{client: c, interval: interval, handler: handler, onError: onError}
}

// Run 维持事件流连接直到ctx取消
func (w *Watcher) Run(ctx context.Context) {
	for {
		err := w.client.StreamEvents(ctx, w.handler)
		if ctx.Err() != nil {
			return
		}
		if err != nil && w.onError != nil {
			w.onError(err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.interval):
		}
	}
}

// StreamBulkAdd 监听批量添加进度流，收到终止阶段消息后返回
func (c *Client) StreamBulkAdd(ctx context.Context, handler func(types.BulkAddMessage)) error {
	resp, err := c.openStream(ctx, "/symbols/bulk-add")
	if err != nil {
		return err
	}

	var streamErr error
	err = readStream(resp, func(data []byte) bool {
		msg, err := types.DecodeBulkAddMessage(data)
		if err != nil {
			c.log.Error(logger.SampleKey("bulk-add", "decode"),
				"进度消息解析失败", zap.ByteString("data", data), zap.Error(err))
			return false
		}
		handler(*msg)
		if msg.Phase == types.PhaseError {
			streamErr = fmt.Errorf("批量添加失败: %s", msg.Message)
			return true
		}
		return msg.Phase == types.PhaseComplete
	})
	if err != nil {
		return err
	}
	return streamErr
}

// StreamSync 监听单币种历史同步进度流，收到进度100的完成消息后返回
func (c *Client) StreamSync(ctx context.Context, symbol string, handler func(types.SyncMessage)) error {
	resp, err := c.openStream(ctx, "/symbols/"+symbol+"/sync")
	if err != nil {
		return err
	}

	return readStream(resp, func(data []byte) bool {
		msg, err := types.DecodeSyncMessage(data)
		if err != nil {
			c.log.Error(logger.SampleKey("sync", symbol, "decode"),
				"进度消息解析失败", zap.ByteString("data", data), zap.Error(err))
			return false
		}
		handler(*msg)
		return msg.Status == types.PhaseComplete
	})
}
