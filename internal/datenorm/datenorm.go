// 包 datenorm：将家谱源文本中的单点日期归一化为 ISO 日期（YYYY-MM-DD）
package datenorm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	qualifierRe = regexp.MustCompile(`(?i)^(about|abt|circa|ca|c|before|bef|after|aft|estimated|est|calculated|calc|cal)\.?\s+`)

	yearOnlyRe     = regexp.MustCompile(`^(\d{4})$`)
	dashedRe       = regexp.MustCompile(`^(\d{1,2})-([A-Za-z]{3})-(\d{4})$`)
	dayMonthYearRe = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)\.?\s+(\d{4})$`)
	monthDayYearRe = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2}),\s*(\d{4})$`)
	monthYearRe    = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{4})$`)

	yearRe = regexp.MustCompile(`\d{4}`)
)

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// 文档注释：日期归一化
// 背景：仅支持单点日期；先去掉 about/bef/aft 等前缀限定词，再按固定顺序匹配，先命中者为准。
// 约束：区间（BET ... AND ...）、双重纪年、非公历以及 "unknown" 一律返回 false，不做猜测；
// 月份内不存在的日（如 31 Feb）同样视为无法解析。
func Normalize(text string) (string, bool) {
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(qualifierRe.ReplaceAllString(s, ""))
	if s == "" {
		return "", false
	}
	if m := yearOnlyRe.FindStringSubmatch(s); m != nil {
		return build(m[1], time.January, "1")
	}
	if m := dashedRe.FindStringSubmatch(s); m != nil {
		if mon, ok := lookupMonth(m[2]); ok {
			return build(m[3], mon, m[1])
		}
		return "", false
	}
	if m := dayMonthYearRe.FindStringSubmatch(s); m != nil {
		if mon, ok := lookupMonth(m[2]); ok {
			return build(m[3], mon, m[1])
		}
		return "", false
	}
	if m := monthDayYearRe.FindStringSubmatch(s); m != nil {
		if mon, ok := lookupMonth(m[1]); ok {
			return build(m[3], mon, m[2])
		}
		return "", false
	}
	if m := monthYearRe.FindStringSubmatch(s); m != nil {
		if mon, ok := lookupMonth(m[1]); ok {
			return build(m[2], mon, "1")
		}
	}
	return "", false
}

// Year 返回文本中第一个四位数字串，用于树节点的年份属性；无则返回空串
func Year(text string) string {
	return yearRe.FindString(text)
}

func lookupMonth(name string) (time.Month, bool) {
	m, ok := months[strings.ToLower(name)]
	return m, ok
}

func build(yearText string, mon time.Month, dayText string) (string, bool) {
	y, err := strconv.Atoi(yearText)
	if err != nil {
		return "", false
	}
	d, err := strconv.Atoi(dayText)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, mon, d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != mon {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, int(mon), d), true
}
