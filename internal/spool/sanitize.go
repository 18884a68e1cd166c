package spool

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reFilenameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_\-]+`)
	reReportUnsafe   = regexp.MustCompile(`[^a-zA-Z0-9_]+`)
	reMultiUnderline = regexp.MustCompile(`_{2,}`)
	reSpaces         = regexp.MustCompile(`\s+`)
)

// stripMarks NFD 分解后去掉组合附加符 (á → a, ñ → n)。Transformer 有状态，每次调用新建。
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SanitizeFilenameComponent 文件名片段: 去重音，空白转 '_'，只保留 [A-Za-z0-9_-]，
// 合并连续 '_' 并去掉首尾 '_'；结果为空时返回 def。
func SanitizeFilenameComponent(value, def string) string {
	s := strings.TrimSpace(value)
	if s == "" {
		return def
	}
	s = stripMarks(s)
	s = reSpaces.ReplaceAllString(s, "_")
	s = reFilenameUnsafe.ReplaceAllString(s, "")
	s = reMultiUnderline.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return def
	}
	return s
}

// CleanReportName 报表名 (嵌入 SPOOL 目标文件名): 去重音，空白转 '_'，只保留 [a-z0-9_]，小写。
func CleanReportName(value string) string {
	s := stripMarks(strings.TrimSpace(value))
	s = reSpaces.ReplaceAllString(s, "_")
	s = reReportUnsafe.ReplaceAllString(s, "")
	s = reMultiUnderline.ReplaceAllString(s, "_")
	s = strings.ToLower(strings.Trim(s, "_"))
	if s == "" {
		return "report"
	}
	return s
}
