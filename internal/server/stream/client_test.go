package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

func newTestClient() *Client {
	return NewClient(types.StreamConfig{
		Endpoint:             "wss://fstream.binance.com/stream",
		ReconnectInterval:    time.Second,
		PingInterval:         20 * time.Second,
		MaxReconnectAttempts: 3,
	}, "")
}

func TestParseClosedKline(t *testing.T) {
	c := newTestClient()

	message := []byte(`{
		"stream": "btcusdt@kline_1m",
		"data": {
			"e": "kline",
			"s": "BTCUSDT",
			"k": {
				"t": 1717200000000,
				"T": 1717200059999,
				"i": "1m",
				"o": "65000.1",
				"c": "65100.5",
				"h": "65200.0",
				"l": "64950.0",
				"v": "123.45",
				"x": true
			}
		}
	}`)

	require.NoError(t, c.parseKlineMessage(message))

	select {
	case kline := <-c.GetKlineChannel():
		assert.Equal(t, "BTCUSDT", kline.Symbol)
		assert.Equal(t, "1m", kline.Interval)
		assert.Equal(t, int64(1717200000000), kline.OpenTime)
		assert.Equal(t, 65100.5, kline.Close)
		assert.Equal(t, 123.45, kline.Volume)
	default:
		t.Fatal("已收盘K线应写入通道")
	}
}

func TestParseUnclosedKlineNotForwarded(t *testing.T) {
	c := newTestClient()

	message := []byte(`{
		"stream": "btcusdt@kline_1m",
		"data": {"e": "kline", "s": "BTCUSDT", "k": {"t": 1, "T": 2, "i": "1m", "o": "1", "c": "2", "h": "3", "l": "0.5", "v": "10", "x": false}}
	}`)

	require.NoError(t, c.parseKlineMessage(message))

	select {
	case <-c.GetKlineChannel():
		t.Fatal("未收盘K线不应转发")
	default:
	}
}

func TestParseSubscribeAck(t *testing.T) {
	c := newTestClient()

	// 订阅确认消息没有stream字段，直接忽略
	require.NoError(t, c.parseKlineMessage([]byte(`{"result": null, "id": 1}`)))

	select {
	case <-c.GetKlineChannel():
		t.Fatal("非行情消息不应转发")
	default:
	}
}

func TestParseInvalidMessage(t *testing.T) {
	c := newTestClient()
	assert.Error(t, c.parseKlineMessage([]byte(`not-json`)))
}
