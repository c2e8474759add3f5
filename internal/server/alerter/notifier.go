package alerter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Notifier 通知接口
type Notifier interface {
	SendText(content string) error
}

// ConsoleNotifier 控制台通知器
type ConsoleNotifier struct{}

func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (cn *ConsoleNotifier) SendText(content string) error {
	border := "╔" + strings.Repeat("═", 60) + "╗"
	bottomBorder := "╚" + strings.Repeat("═", 60) + "╝"

	fmt.Println()
	fmt.Println(border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Printf("║ %s\n", line)
	}
	fmt.Println(bottomBorder)
	fmt.Println()
	return nil
}

// WechatNotifier 企业微信群机器人通知器
type WechatNotifier struct {
	webhookURL string
	httpClient *http.Client
}

// wechatMessage 企业微信文本消息结构
type wechatMessage struct {
	MsgType string `json:"msgtype"`
	Text    struct {
		Content string `json:"content"`
	} `json:"text"`
}

// wechatResponse 企业微信API响应
type wechatResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// NewWechatNotifier 创建企业微信通知器，未配置webhook时降级为控制台输出
func NewWechatNotifier(webhookURL string) Notifier {
	if webhookURL == "" {
		zap.L().Info("🔧 未配置企业微信Webhook，使用控制台输出模式")
		return NewConsoleNotifier()
	}

	zap.L().Info("✅ 已配置企业微信通知服务")
	return &WechatNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (wn *WechatNotifier) SendText(content string) error {
	var message wechatMessage
	message.MsgType = "text"
	message.Text.Content = content

	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %v", err)
	}

	resp, err := wn.httpClient.Post(wn.webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("HTTP请求失败: %v", err)
	}
	defer resp.Body.Close()

	var wechatResp wechatResponse
	if err := json.NewDecoder(resp.Body).Decode(&wechatResp); err != nil {
		return fmt.Errorf("解析响应失败: %v", err)
	}

	if wechatResp.ErrCode != 0 {
		return fmt.Errorf("企业微信API错误 [%d]: %s", wechatResp.ErrCode, wechatResp.ErrMsg)
	}

	return nil
}
