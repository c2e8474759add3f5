package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

func newTestClient(serverURL string) *Client {
	return New(types.ConsoleConfig{
		BaseURL: serverURL,
		Timeout: 5 * time.Second,
	}, "development")
}

func TestClientUnwrapsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/symbols", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("skip"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total":2,"items":[{"id":1,"symbol":"BTCUSDT","is_active":true},{"id":2,"symbol":"ETHUSDT","is_active":false}]}`))
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).ListSymbols(context.Background(), SymbolQuery{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "BTCUSDT", page.Items[0].Symbol)
	assert.True(t, page.Items[0].IsActive)
}

func TestClientMapsStatusToMessage(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		message string
		detail  string
	}{
		{http.StatusBadRequest, `{"detail":"币种已存在"}`, "请求参数错误", "币种已存在"},
		{http.StatusNotFound, `{"detail":"币种不存在"}`, "请求的资源不存在", "币种不存在"},
		{http.StatusInternalServerError, `{"detail":"服务器内部错误"}`, "服务器内部错误", "服务器内部错误"},
		{http.StatusBadGateway, `{"detail":"上游超时"}`, "网关错误", "上游超时"},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(tt.body))
		}))

		_, err := newTestClient(server.URL).Dashboard(context.Background())
		server.Close()

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, tt.status, apiErr.StatusCode)
		assert.Equal(t, tt.message, apiErr.Message)
		assert.Equal(t, tt.detail, apiErr.Detail)
	}
}

func TestClientParsesValidationDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","value"],"msg":"1_volume_percent 必须在0到100之间","type":"value_error.number.not_in_range"}]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).SetConfig(context.Background(), "1_volume_percent", "150")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "请求参数校验失败", apiErr.Message)
	assert.Equal(t, "body.value: 1_volume_percent 必须在0到100之间", apiErr.Detail)
}

func TestClientNetworkError(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")

	_, err := c.Dashboard(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.StatusCode)
	assert.Equal(t, networkMessage, apiErr.Message)
}

func TestClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := New(types.ConsoleConfig{BaseURL: server.URL, Timeout: 50 * time.Millisecond}, "development")
	_, err := c.Dashboard(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, timeoutMessage, apiErr.Message)
}

func TestParseErrorDetail(t *testing.T) {
	assert.Equal(t, "币种不存在", parseErrorDetail([]byte(`{"detail":"币种不存在"}`)))
	assert.Equal(t, "plain text", parseErrorDetail([]byte("plain text")))
	assert.Equal(t, "value: 必须是数字",
		parseErrorDetail([]byte(`{"detail":[{"loc":["value"],"msg":"必须是数字","type":"type_error.float"}]}`)))
}
