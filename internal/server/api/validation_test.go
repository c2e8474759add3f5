package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfigValue(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{"百分比合法", "1_volume_percent", "12.5", false},
		{"百分比非数字", "1_volume_percent", "abc", true},
		{"百分比超出范围", "2_rise_percent", "150", true},
		{"误差合法", "3_price_error", "1.0", false},
		{"误差为负", "3_price_error", "-0.5", true},
		{"间隔合法", "1_reminder_interval", "60", false},
		{"间隔非整数", "1_reminder_interval", "60.5", true},
		{"数量为负", "3_middle_kline_cnt", "-1", true},
		{"布尔合法", "3_dedup_enabled", "true", false},
		{"布尔非法", "3_dedup_enabled", "yes", true},
		{"未知后缀不校验", "max_lookback_days", "whatever", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigValue(tt.key, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				require.Len(t, ve.Details, 1)
				assert.Equal(t, []string{"body", "value"}, ve.Details[0].Loc)
				assert.NotEmpty(t, ve.Details[0].Msg)
				assert.NotEmpty(t, ve.Details[0].Type)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFloatRange(t *testing.T) {
	assert.NoError(t, validateFloatRange("price_error", nil, 0, 100))

	ok := 1.5
	assert.NoError(t, validateFloatRange("price_error", &ok, 0, 100))

	bad := 101.0
	err := validateFloatRange("price_error", &bad, 0, 100)
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"body", "price_error"}, ve.Details[0].Loc)
}

func TestValidateNonNegative(t *testing.T) {
	assert.NoError(t, validateNonNegative("middle_kline_cnt", nil))

	ok := 3
	assert.NoError(t, validateNonNegative("middle_kline_cnt", &ok))

	bad := -1
	require.Error(t, validateNonNegative("middle_kline_cnt", &bad))
}
