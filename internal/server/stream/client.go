package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

// Client 币安合约行情流客户端
type Client struct {
	endpoint      string
	proxy         string
	conn          *websocket.Conn
	mu            sync.RWMutex
	isConnected   bool
	reconnectChan chan struct{}
	ctx           context.Context
	cancel        context.CancelFunc
	klineChan     chan *types.KlineData
	config        types.StreamConfig

	subMu       sync.Mutex
	subscribed  []string
	nextRequest int64
}

// combinedMessage 组合流消息外层
type combinedMessage struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// klineEvent 币安K线推送事件
type klineEvent struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Kline     struct {
		OpenTime  int64  `json:"t"`
		CloseTime int64  `json:"T"`
		Interval  string `json:"i"`
		Open      string `json:"o"`
		Close     string `json:"c"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Volume    string `json:"v"`
		Closed    bool   `json:"x"`
	} `json:"k"`
}

// subscribeRequest 订阅请求
type subscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

// NewClient 创建行情流客户端
func NewClient(config types.StreamConfig, proxy string) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		endpoint:      config.Endpoint,
		proxy:         proxy,
		reconnectChan: make(chan struct{}, 1),
		ctx:           ctx,
		cancel:        cancel,
		klineChan:     make(chan *types.KlineData, 1000), // 缓冲1000个K线数据
		config:        config,
	}
}

// Connect 建立WebSocket连接
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 设置Dialer
	dialer := websocket.DefaultDialer
	if c.proxy != "" {
		proxyURL, err := url.Parse(c.proxy)
		if err != nil {
			return fmt.Errorf("解析代理URL失败: %v", err)
		}
		dialer.Proxy = http.ProxyURL(proxyURL)
	}

	// 建立连接
	conn, _, err := dialer.Dial(c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("WebSocket连接失败: %v", err)
	}

	c.conn = conn
	c.isConnected = true

	zap.L().Info("✅ 行情流连接建立成功",
		zap.String("endpoint", c.endpoint),
		zap.String("proxy", c.proxy))

	return nil
}

// Subscribe 订阅1分钟K线流
func (c *Client) Subscribe(symbols []string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isConnected || c.conn == nil {
		return fmt.Errorf("行情流未连接")
	}

	params := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		params = append(params, strings.ToLower(symbol)+"@kline_1m")
	}

	c.subMu.Lock()
	c.subscribed = params
	c.nextRequest++
	request := subscribeRequest{Method: "SUBSCRIBE", Params: params, ID: c.nextRequest}
	c.subMu.Unlock()

	if err := c.conn.WriteJSON(request); err != nil {
		return fmt.Errorf("发送订阅消息失败: %v", err)
	}

	zap.L().Info("📊 已订阅K线行情流",
		zap.Strings("symbols", symbols))

	return nil
}

// StartReading 开始读取行情流数据
func (c *Client) StartReading() {
	go c.readLoop()
	go c.reconnectLoop()
	go c.pingLoop()
}

// readLoop 读取数据循环
func (c *Client) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("行情流读取panic", zap.Any("error", r))
		}
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()

			if conn == nil {
				time.Sleep(time.Second)
				continue
			}

			_, message, err := conn.ReadMessage()
			if err != nil {
				zap.L().Error("行情流读取消息失败", zap.Error(err))
				c.handleDisconnect()
				continue
			}

			if err := c.parseKlineMessage(message); err != nil {
				zap.L().Warn("解析行情流消息失败", zap.Error(err))
			}
		}
	}
}

// parseKlineMessage 解析组合流K线消息
func (c *Client) parseKlineMessage(message []byte) error {
	var outer combinedMessage
	if err := json.Unmarshal(message, &outer); err != nil {
		return err
	}

	// 订阅确认等非行情消息没有stream字段
	if !strings.Contains(outer.Stream, "@kline_") {
		return nil
	}

	var event klineEvent
	if err := json.Unmarshal(outer.Data, &event); err != nil {
		return err
	}
	if event.EventType != "kline" {
		return nil
	}

	kline := &types.KlineData{
		Symbol:    event.Symbol,
		Interval:  event.Kline.Interval,
		OpenTime:  event.Kline.OpenTime,
		Open:      parseFloat(event.Kline.Open),
		High:      parseFloat(event.Kline.High),
		Low:       parseFloat(event.Kline.Low),
		Close:     parseFloat(event.Kline.Close),
		Volume:    parseFloat(event.Kline.Volume),
		CloseTime: event.Kline.CloseTime,
	}

	// 只向下游转发已收盘的K线，实时价格由调用方从Close字段读取
	if !event.Kline.Closed {
		return nil
	}

	select {
	case c.klineChan <- kline:
	default:
		zap.L().Warn("K线数据通道满，丢弃数据", zap.String("symbol", kline.Symbol))
	}

	return nil
}

// reconnectLoop 重连循环
func (c *Client) reconnectLoop() {
	reconnectAttempts := 0

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.reconnectChan:
			reconnectAttempts++
			if reconnectAttempts > c.config.MaxReconnectAttempts {
				zap.L().Error("达到最大重连次数，停止重连",
					zap.Int("max_attempts", c.config.MaxReconnectAttempts))
				return
			}

			zap.L().Info("尝试重连行情流",
				zap.Int("attempt", reconnectAttempts),
				zap.Int("max_attempts", c.config.MaxReconnectAttempts))

			if err := c.Connect(); err != nil {
				zap.L().Error("重连失败", zap.Error(err))
				time.Sleep(c.config.ReconnectInterval)
				c.reconnectChan <- struct{}{}
				continue
			}

			// 重连成功，恢复订阅并重置重连次数
			if err := c.resubscribe(); err != nil {
				zap.L().Error("恢复订阅失败", zap.Error(err))
			}
			reconnectAttempts = 0
			zap.L().Info("行情流重连成功")
		}
	}
}

// resubscribe 重连后恢复订阅
func (c *Client) resubscribe() error {
	c.subMu.Lock()
	params := c.subscribed
	c.nextRequest++
	id := c.nextRequest
	c.subMu.Unlock()

	if len(params) == 0 {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil {
		return fmt.Errorf("行情流未连接")
	}
	return c.conn.WriteJSON(subscribeRequest{Method: "SUBSCRIBE", Params: params, ID: id})
}

// pingLoop 心跳循环
func (c *Client) pingLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.mu.RLock()
			conn := c.conn
			isConnected := c.isConnected
			c.mu.RUnlock()

			if !isConnected || conn == nil {
				continue
			}

			if err := conn.WriteMessage(websocket.PongMessage, nil); err != nil {
				zap.L().Error("发送心跳失败", zap.Error(err))
				c.handleDisconnect()
			}
		}
	}
}

// handleDisconnect 处理断线
func (c *Client) handleDisconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.isConnected = false

	// 触发重连
	select {
	case c.reconnectChan <- struct{}{}:
	default:
	}
}

// GetKlineChannel 获取已收盘K线通道
func (c *Client) GetKlineChannel() <-chan *types.KlineData {
	return c.klineChan
}

// Close 关闭行情流连接
func (c *Client) Close() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		c.isConnected = false
		return err
	}

	return nil
}

// IsConnected 检查连接状态
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}
