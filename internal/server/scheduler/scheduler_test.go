package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 1, hour, minute, 0, 0, types.CST)
}

func TestIntervalsToSync(t *testing.T) {
	tests := []struct {
		name string
		time time.Time
		want []string
	}{
		{"普通分钟只同步1m", at(10, 7), []string{"1m"}},
		{"整15分钟", at(10, 45), []string{"1m", "15m"}},
		{"第1分钟带30m和非4小时点", at(10, 1), []string{"1m", "30m"}},
		{"第31分钟带30m", at(10, 31), []string{"1m", "30m"}},
		{"第2分钟带1h", at(10, 2), []string{"1m", "1h"}},
		{"4小时整点的第3分钟", at(8, 3), []string{"1m", "4h"}},
		{"非4小时整点的第3分钟", at(9, 3), []string{"1m"}},
		{"每日00:04同步1d", at(0, 4), []string{"1m", "1d"}},
		{"每日00:05同步3d", at(0, 5), []string{"1m", "3d"}},
		{"00:00同时命中15m和4h门控", at(0, 0), []string{"1m", "15m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IntervalsToSync(tt.time))
		})
	}
}

func TestIntervalsToSyncConvertsTimezone(t *testing.T) {
	// UTC 16:02 等于北京时间 00:02
	utc := time.Date(2025, 6, 1, 16, 2, 0, 0, time.UTC)
	assert.Equal(t, []string{"1m", "1h"}, IntervalsToSync(utc))
}
