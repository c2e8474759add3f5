package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/logger"
	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultLogSampleWindow = 30 * time.Second
)

// 状态码对应的用户提示文案
var statusMessages = map[int]string{
	http.StatusBadRequest:          "请求参数错误",
	http.StatusUnauthorized:        "未授权，请重新登录",
	http.StatusForbidden:           "拒绝访问",
	http.StatusNotFound:            "请求的资源不存在",
	http.StatusUnprocessableEntity: "请求参数校验失败",
	http.StatusInternalServerError: "服务器内部错误",
	http.StatusBadGateway:          "网关错误",
	http.StatusServiceUnavailable:  "服务不可用",
	http.StatusGatewayTimeout:      "网关超时",
}

const (
	timeoutMessage = "请求超时，请稍后重试"
	networkMessage = "网络连接失败，请检查服务端地址"
)

// APIError 服务端请求失败
type APIError struct {
	StatusCode int
	Detail     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Detail != "" && e.Detail != e.Message {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// ValidationDetail 422响应中的单条校验错误
type ValidationDetail struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type"`
}

// Client 管理控制台的API客户端
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.SampledLogger
}

// New 创建API客户端，baseURL形如 http://localhost:8000
func New(cfg types.ConsoleConfig, mode string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	window := cfg.LogSampleWindow
	if window <= 0 {
		window = defaultLogSampleWindow
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/") + "/api",
		http:    &http.Client{Timeout: timeout},
		log:     logger.NewSampledLogger(mode, window),
	}
}

// BaseURL API根地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get 发送GET请求并解析响应
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, query, body, out)
}

func (c *Client) put(ctx context.Context, path string, query url.Values, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, query, body, out)
}

func (c *Client) delete(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodDelete, path, query, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := c.transportError(err)
		c.log.Error(logger.SampleKey(method, path, "transport"),
			"请求失败", zap.String("url", target), zap.Error(err))
		return apiErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		apiErr := c.statusError(resp.StatusCode, data)
		c.log.Error(logger.SampleKey(method, path, fmt.Sprint(resp.StatusCode)),
			"服务端返回错误",
			zap.String("url", target),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", apiErr.Detail))
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

// transportError 网络层错误转换为APIError
func (c *Client) transportError(err error) *APIError {
	message := networkMessage

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		message = timeoutMessage
	} else if errors.Is(err, context.DeadlineExceeded) {
		message = timeoutMessage
	}

	return &APIError{Detail: err.Error(), Message: message}
}

// statusError 按状态码构造APIError，解析 {detail:...} 错误体
func (c *Client) statusError(status int, body []byte) *APIError {
	message, ok := statusMessages[status]
	if !ok {
		message = fmt.Sprintf("请求失败(%d)", status)
	}

	return &APIError{
		StatusCode: status,
		Detail:     parseErrorDetail(body),
		Message:    message,
	}
}

// parseErrorDetail 解析错误响应的detail字段，兼容字符串和校验错误数组两种形式
func parseErrorDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var details []ValidationDetail
	if err := json.Unmarshal(envelope.Detail, &details); err == nil {
		parts := make([]string, 0, len(details))
		for _, d := range details {
			loc := make([]string, 0, len(d.Loc))
			for _, item := range d.Loc {
				loc = append(loc, fmt.Sprint(item))
			}
			if len(loc) > 0 {
				parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(loc, "."), d.Msg))
			} else {
				parts = append(parts, d.Msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	return strings.TrimSpace(string(envelope.Detail))
}
