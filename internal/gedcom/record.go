// 包 gedcom：解析层级标签格式的家谱文本（GEDCOM 子集），输出个人与家庭链接记录
package gedcom

import (
	"regexp"
	"strconv"
	"strings"
)

// RawRecord：单行解析结果，仅在解析期存在
type RawRecord struct {
	Level int
	Xref  string
	Tag   string
	Value string
}

var lineRe = regexp.MustCompile(`^\s*(\d+)\s+(\S+)(?:\s+(.*))?$`)

// 文档注释：解析单行
// 背景：行格式为 "<level> [@xref@] <TAG> [value]"；0 级记录头的 xref 在标签之前。
// 约束：无法匹配（无前导整数等）的行返回 false，由调用方静默跳过。
func parseLine(line string) (RawRecord, bool) {
	m := lineRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return RawRecord{}, false
	}
	lvl, err := strconv.Atoi(m[1])
	if err != nil {
		return RawRecord{}, false
	}
	r := RawRecord{Level: lvl, Tag: strings.ToUpper(m[2]), Value: strings.TrimSpace(m[3])}
	if strings.HasPrefix(m[2], "@") {
		r.Xref = trimXref(m[2])
		tag, rest, _ := strings.Cut(r.Value, " ")
		r.Tag = strings.ToUpper(tag)
		r.Value = strings.TrimSpace(rest)
	}
	return r, true
}

// trimXref 去掉 @I1@ 两侧的 @
func trimXref(s string) string {
	return strings.Trim(strings.TrimSpace(s), "@")
}

var parenRe = regexp.MustCompile(`\s*\([^)]*\)`)

func stripParens(s string) string {
	return strings.TrimSpace(parenRe.ReplaceAllString(s, ""))
}

// 文档注释：拆分 NAME 值 "John /Smith/"
// 约束：首个斜杠前为名，两个斜杠之间为姓；无斜杠时整体视为名。
func splitName(v string) (given, surname string) {
	before, after, found := strings.Cut(v, "/")
	given = strings.TrimSpace(before)
	if !found {
		return given, ""
	}
	sur, _, _ := strings.Cut(after, "/")
	return given, stripParens(sur)
}
