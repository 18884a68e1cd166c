package pathguard

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	driveAbsRe   = regexp.MustCompile(`^[A-Za-z]:[\\/]`)
	driveRootRe  = regexp.MustCompile(`^[A-Za-z]:\\`)
	adminShareRe = regexp.MustCompile(`(?i)^\\\\[^\\]+\\([a-z]\$|admin\$)\\`)
)

// Normalize 将原始路径规范为目录形式:
// 去首尾空白，外来分隔符替换为本风格分隔符，再去尾部空白，末尾无分隔符时补一个。
// 空串保持为空。纯函数，不访问文件系统，幂等。
func Normalize(raw string, style Style) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	sep := style.Sep()
	s = strings.ReplaceAll(s, string(style.foreign()), string(sep))
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	if s[len(s)-1] != sep {
		s += string(sep)
	}
	return s
}

// HasTraversal 在规范化形式上按分隔符切分，任一段为 ".." 即返回 true。
//
// Windows 风格下，Win32 会去掉段尾的点和空格，因此 "... " / ".. " 之类的段同样视为穿越。
func HasTraversal(raw string, style Style) bool {
	for _, seg := range strings.Split(Normalize(raw, style), string(style.Sep())) {
		if seg == ".." {
			return true
		}
		if style == StyleWindows && strings.Contains(seg, "..") && strings.TrimRight(seg, ". ") == "" {
			return true
		}
	}
	return false
}

// IsAbsolute Windows: 盘符绝对路径 (X:\) 或 UNC (\\)；POSIX: 以 '/' 开头。
func IsAbsolute(raw string, style Style) bool {
	s := strings.TrimSpace(raw)
	if style == StylePOSIX {
		return strings.HasPrefix(s, "/")
	}
	return driveAbsRe.MatchString(s) || strings.HasPrefix(s, `\\`) || strings.HasPrefix(s, `//`)
}

// IsAdminShare 判断是否为 UNC 管理共享 (\\host\C$\、\\host\ADMIN$\)。POSIX 风格恒为 false。
func IsAdminShare(path string, style Style) bool {
	if style != StyleWindows {
		return false
	}
	return adminShareRe.MatchString(canonicalKey(path, style))
}

// Parent 返回规范化后的上级目录；根目录 (C:\、\\host\share\、/) 返回自身。
func Parent(pathAbs string, style Style) string {
	p := Normalize(pathAbs, style)
	if p == "" {
		return ""
	}
	sep := string(style.Sep())
	root := rootOf(p, style)
	if root != "" && len(p) <= len(root) {
		return p
	}
	trimmed := strings.TrimRight(p, sep)
	i := strings.LastIndex(trimmed, sep)
	if i < 0 {
		return p
	}
	parent := strings.TrimRight(trimmed[:i], sep) + sep
	if root != "" && len(parent) < len(root) {
		return root
	}
	return parent
}

// rootOf 返回规范化路径的根部分；相对路径返回 ""。
func rootOf(p string, style Style) string {
	if style == StylePOSIX {
		if strings.HasPrefix(p, "/") {
			return "/"
		}
		return ""
	}
	if driveRootRe.MatchString(p) {
		return p[:3]
	}
	if strings.HasPrefix(p, `\\`) {
		// \\host\share\
		rest := p[2:]
		host := strings.IndexByte(rest, '\\')
		if host < 0 {
			return p
		}
		share := strings.IndexByte(rest[host+1:], '\\')
		if share < 0 {
			return p
		}
		return p[:2+host+1+share+1]
	}
	return ""
}

// canonicalKey 生成用于前缀比较的小写键:
// 合并重复分隔符，去掉 "." 段；Windows 风格下去掉段尾点/空格，并展开 \\?\ 与 \\.\ 设备前缀。
// 仅用于比较，不作为输出。
func canonicalKey(raw string, style Style) string {
	p := Normalize(raw, style)
	if p == "" {
		return ""
	}
	sep := string(style.Sep())
	lead := ""
	if style == StyleWindows {
		lower := strings.ToLower(p)
		switch {
		case strings.HasPrefix(lower, `\\?\unc\`):
			p = `\\` + p[len(`\\?\unc\`):]
		case strings.HasPrefix(lower, `\\?\`), strings.HasPrefix(lower, `\\.\`):
			p = p[4:]
		}
		if strings.HasPrefix(p, `\\`) {
			lead = `\\`
			p = p[2:]
		}
	} else if strings.HasPrefix(p, "/") {
		lead = "/"
	}

	segs := strings.Split(p, sep)
	out := make([]string, 0, len(segs))
	for _, seg := range segs {
		if style == StyleWindows && seg != "." && seg != ".." {
			seg = strings.TrimRight(seg, ". ")
		}
		if seg == "" || seg == "." {
			continue
		}
		out = append(out, seg)
	}
	key := lead + strings.Join(out, sep)
	if !strings.HasSuffix(key, sep) {
		key += sep
	}
	return strings.ToLower(key)
}
