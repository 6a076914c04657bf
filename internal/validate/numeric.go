package validate

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// 数字段允许用单个下划线分组（1_000），但下划线必须夹在数字之间。
var (
	intRE   = regexp.MustCompile(`^[+-]?[0-9]+(?:_[0-9]+)*$`)
	floatRE = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:_[0-9]+)*(?:\.(?:[0-9]+(?:_[0-9]+)*)?)?|\.[0-9]+(?:_[0-9]+)*)(?:[eE][+-]?[0-9]+(?:_[0-9]+)*)?$`)
)

// CanParseInt 判断 s 是否是十进制整数（可带符号，两侧空白忽略，不限位数）。
func CanParseInt(s string) bool {
	return intRE.MatchString(strings.TrimSpace(s))
}

// CanParseFloat 判断 s 是否是浮点字面量。整数形态、指数形态、inf/infinity/nan 都算；
// 十六进制形态不算。
func CanParseFloat(s string) bool {
	_, ok := ParseFloat(s)
	return ok
}

// ParseFloat 按 CanParseFloat 的语法解析 s。
// 超出 float64 范围的值（如 1e400）返回 ±Inf 且 ok=true。
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if v, ok := parseSpecial(s); ok {
		return v, true
	}
	if !floatRE.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func parseSpecial(s string) (float64, bool) {
	sign := 1.0
	body := s
	switch s[0] {
	case '+':
		body = s[1:]
	case '-':
		sign = -1
		body = s[1:]
	}
	switch strings.ToLower(body) {
	case "inf", "infinity":
		return math.Inf(int(sign)), true
	case "nan":
		return math.NaN(), true
	default:
		return 0, false
	}
}
