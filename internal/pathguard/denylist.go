package pathguard

import (
	"strings"

	"github.com/multi-agent/spoolgen/pkg/util"
)

// 内置黑名单: 操作系统保留目录。
var (
	defaultWindowsDeny = []string{
		`C:\Windows\`,
		`C:\Program Files\`,
		`C:\Program Files (x86)\`,
		`C:\ProgramData\`,
		`C:\$Recycle.Bin\`,
		`C:\System Volume Information\`,
		// 8.3 短名: Program Files / Program Files (x86) / ProgramData 在默认安装下的别名。
		// 其他短名取决于卷上的创建顺序，无法枚举。
		`C:\PROGRA~1\`,
		`C:\PROGRA~2\`,
		`C:\PROGRA~3\`,
		`C:\SYSTEM~1\`,
	}
	defaultPOSIXDeny = []string{
		"/bin/", "/boot/", "/dev/", "/etc/", "/lib/", "/lib64/",
		"/proc/", "/root/", "/sbin/", "/sys/", "/usr/",
	}
)

// DefaultDenyPrefixes 返回某风格的内置黑名单副本。
func DefaultDenyPrefixes(style Style) []string {
	src := defaultWindowsDeny
	if style == StylePOSIX {
		src = defaultPOSIXDeny
	}
	return append([]string(nil), src...)
}

// DenyList 有序的目录前缀黑名单。条目保存为 Normalize 形式，比较使用 canonicalKey (大小写不敏感)。
type DenyList struct {
	style    Style
	prefixes []string
	keys     []string
}

// NewDenyList 由前缀列表构造黑名单，空白项忽略。
func NewDenyList(style Style, prefixes []string) DenyList {
	d := DenyList{style: style}
	for _, raw := range prefixes {
		norm := Normalize(raw, style)
		if norm == "" {
			continue
		}
		d.prefixes = append(d.prefixes, norm)
		d.keys = append(d.keys, canonicalKey(norm, style))
	}
	return d
}

// ParseDenyList 解析 ';' 分隔的覆盖配置 (SPOOL_DENY_PREFIXES)；为空时使用内置默认值。
func ParseDenyList(raw string, style Style) DenyList {
	items := util.SplitNonEmpty(raw, ";")
	if len(items) == 0 {
		items = DefaultDenyPrefixes(style)
	}
	return NewDenyList(style, items)
}

// Prefixes 返回规范化后的前缀 (副本)。
func (d DenyList) Prefixes() []string {
	return append([]string(nil), d.prefixes...)
}

// Len 条目数。
func (d DenyList) Len() int { return len(d.prefixes) }

// Match 返回命中的第一个前缀。
func (d DenyList) Match(path string) (string, bool) {
	key := canonicalKey(path, d.style)
	if key == "" {
		return "", false
	}
	for i, k := range d.keys {
		if strings.HasPrefix(key, k) {
			return d.prefixes[i], true
		}
	}
	return "", false
}
