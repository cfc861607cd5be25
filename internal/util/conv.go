package util

import (
	"strconv"
)

// MustParseUint 解析路径参数里的数字ID（如 /students/:id），
// 解析失败时返回 0，由调用方按记录不存在处理
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}
