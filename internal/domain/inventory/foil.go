package inventory

import (
	"strconv"
	"strings"
)

// ParseFoil 统一的闪卡标记解析
// 大小写不敏感,去除首尾空白:
//   - true:  true, 1, yes, y, foil
//   - false: 空, false, 0, no, n, non-foil, nonfoil, normal
//
// 其他取值返回ErrInvalidRow
func ParseFoil(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "y", "foil":
		return true, nil
	case "", "false", "0", "no", "n", "non-foil", "nonfoil", "normal":
		return false, nil
	default:
		return false, InvalidRowf("unrecognized foil value %q", raw)
	}
}

// ParseQuantity 解析导入数量(正整数)
func ParseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, InvalidRowf("quantity %q is not an integer", raw)
	}
	if n < 1 {
		return 0, InvalidRowf("quantity must be a positive integer, got %d", n)
	}
	return n, nil
}
