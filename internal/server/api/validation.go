package api

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationDetail 单条校验错误，包含字段路径、消息和错误类型
type ValidationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError 参数校验失败
type ValidationError struct {
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "参数校验失败"
	}
	return e.Details[0].Msg
}

func newValidationError(loc []string, msg, errType string) *ValidationError {
	return &ValidationError{Details: []ValidationDetail{{Loc: loc, Msg: msg, Type: errType}}}
}

// validateConfigValue 按键名后缀校验配置值
func validateConfigValue(key, value string) error {
	loc := []string{"body", "value"}

	switch {
	case strings.HasSuffix(key, "_percent") || strings.HasSuffix(key, "_error"):
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return newValidationError(loc, fmt.Sprintf("%s 必须是数字", key), "type_error.float")
		}
		if v < 0 || v > 100 {
			return newValidationError(loc, fmt.Sprintf("%s 必须在0到100之间", key), "value_error.number.not_in_range")
		}
	case strings.HasSuffix(key, "_cnt") || strings.HasSuffix(key, "_count") || strings.HasSuffix(key, "_interval"):
		v, err := strconv.Atoi(value)
		if err != nil {
			return newValidationError(loc, fmt.Sprintf("%s 必须是整数", key), "type_error.integer")
		}
		if v < 0 {
			return newValidationError(loc, fmt.Sprintf("%s 不能为负数", key), "value_error.number.not_ge")
		}
	case strings.HasSuffix(key, "_enabled"):
		if _, err := strconv.ParseBool(value); err != nil {
			return newValidationError(loc, fmt.Sprintf("%s 必须是布尔值", key), "type_error.bool")
		}
	}

	return nil
}

// validateRange 校验可空浮点字段范围
func validateFloatRange(field string, value *float64, min, max float64) error {
	if value == nil {
		return nil
	}
	if *value < min || *value > max {
		return newValidationError([]string{"body", field},
			fmt.Sprintf("%s 必须在%g到%g之间", field, min, max), "value_error.number.not_in_range")
	}
	return nil
}

// validateNonNegative 校验可空整型字段非负
func validateNonNegative(field string, value *int) error {
	if value == nil {
		return nil
	}
	if *value < 0 {
		return newValidationError([]string{"body", field},
			fmt.Sprintf("%s 不能为负数", field), "value_error.number.not_ge")
	}
	return nil
}
