package stream

import "strconv"

// parseFloat 解析浮点数，币安推送的数值均为字符串
func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
