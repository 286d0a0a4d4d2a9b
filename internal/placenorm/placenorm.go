// 包 placenorm：改写家谱中的地名文本以提高外部地理编码的命中率
package placenorm

import (
	"regexp"
	"strings"
)

// 文档注释：历史地名替换表
// 背景：目标语料中已知的旧称，替换为现代国家/地区名后外部服务才能识别。
// 约束：表刻意保持小而明确，不是通用地名库；按整词、大小写不敏感匹配。
var historical = []struct {
	re  *regexp.Regexp
	out string
}{
	{regexp.MustCompile(`(?i)\bVan Diemen'?s Land\b`), "Tasmania, Australia"},
	{regexp.MustCompile(`(?i)\bCeylon\b`), "Sri Lanka"},
	{regexp.MustCompile(`(?i)\bPrussia\b`), "Germany"},
	{regexp.MustCompile(`(?i)\bBohemia\b`), "Czech Republic"},
	{regexp.MustCompile(`(?i)\bPersia\b`), "Iran"},
	{regexp.MustCompile(`(?i)\bSiam\b`), "Thailand"},
	{regexp.MustCompile(`(?i)\bBurma\b`), "Myanmar"},
	{regexp.MustCompile(`(?i)\bFormosa\b`), "Taiwan"},
}

// 文档注释：单词地名消歧表
// 背景：源数据只给出城镇名时，外部服务常返回同名的其他地点；此处补充国家。
var disambiguation = map[string]string{
	"sydney":    "Sydney, Australia",
	"melbourne": "Melbourne, Australia",
	"perth":     "Perth, Australia",
	"hobart":    "Hobart, Australia",
	"london":    "London, England",
	"dublin":    "Dublin, Ireland",
	"paris":     "Paris, France",
}

var (
	// 末尾注释（" - probably"、" -- unverified" 等）
	annotationRe  = regexp.MustCompile(`\s+-+\s+[A-Za-z][A-Za-z ]*$`)
	parentheticRe = regexp.MustCompile(`\s*\([^)]*\)`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// 文档注释：地名归一化
// 背景：固定顺序执行：去掉末尾注释 → 历史名替换 → 去掉括号限定 → 折叠逗号与空白 → 单词地名消歧。
// 返回：空输入、占位符 "?"、或处理后为空时返回 false；调用方据此跳过外部查询。
func Normalize(text string) (string, bool) {
	s := strings.TrimSpace(text)
	if s == "" || s == "?" {
		return "", false
	}
	s = annotationRe.ReplaceAllString(s, "")
	for _, h := range historical {
		s = h.re.ReplaceAllString(s, h.out)
	}
	s = parentheticRe.ReplaceAllString(s, "")
	s = collapse(s)
	if s == "" || s == "?" {
		return "", false
	}
	if !strings.Contains(s, ",") {
		if v, ok := disambiguation[strings.ToLower(s)]; ok {
			s = v
		}
	}
	return s, true
}

// Segments 按逗号切分归一化后的地名
func Segments(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, ", ")
}

func collapse(s string) string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(spaceRe.ReplaceAllString(p, " "))
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
