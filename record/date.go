package record

import (
	"strconv"
	"strings"
)

// InvalidDate 是无法解析日期时输出的占位文本。
const InvalidDate = "Invalid Date"

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// FormatDate 将 YYYY-MM-DD 转为 "March 5, 2024" 形式。
// 长度不是 10、形状不符或月/日超出范围时返回 InvalidDate，从不报错。
// 日只校验 1..31，不区分大小月。
func FormatDate(s string) string {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return InvalidDate
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return InvalidDate
	}
	year, ok := digits(parts[0], 4)
	if !ok {
		return InvalidDate
	}
	month, ok := digits(parts[1], 2)
	if !ok {
		return InvalidDate
	}
	day, ok := digits(parts[2], 2)
	if !ok {
		return InvalidDate
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return InvalidDate
	}
	return monthNames[month-1] + " " + strconv.Itoa(day) + ", " + strconv.Itoa(year)
}

func digits(s string, n int) (int, bool) {
	if len(s) != n {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
