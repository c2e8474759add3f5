package types

import "time"

// CST 北京时区，所有落库和展示时间统一使用
var CST = time.FixedZone("CST", 8*3600)

// NowCST 当前北京时间
func NowCST() time.Time {
	return time.Now().In(CST)
}
