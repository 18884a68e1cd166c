// Package pathguard 实现导出路径的安全策略。
//
// 两个入口共享同一组纯函数原语 (Normalize / HasTraversal / IsAbsolute / IsAdminShare / DenyList):
//   - Policy.ValidateExport: 严格校验，失败即拒绝 (导出目录)
//   - Policy.List:           宽松浏览，子目录只标注 denied，不抛错 (目录选择器)
//
// 检查顺序在所有入口一致: 非法字符 → 路径穿越 → 规范化 → 绝对路径 → 管理共享 → 黑名单 → 可选写入探测。
package pathguard

import (
	"runtime"
	"strings"

	apperrors "github.com/multi-agent/spoolgen/pkg/errors"
)

// Style 路径风格，决定分隔符与绝对路径规则。
type Style int

const (
	// StyleWindows 盘符 (C:\) 或 UNC (\\host\share\)，分隔符 '\'。
	StyleWindows Style = iota
	// StylePOSIX 以 '/' 开头，分隔符 '/'。
	StylePOSIX
)

// NativeStyle 返回当前进程所在平台的路径风格。
func NativeStyle() Style {
	if runtime.GOOS == "windows" {
		return StyleWindows
	}
	return StylePOSIX
}

// ParseStyle 解析 "windows" / "posix" / "native"。
func ParseStyle(raw string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "windows", "win", "nt":
		return StyleWindows, nil
	case "posix", "unix", "linux":
		return StylePOSIX, nil
	case "", "native":
		return NativeStyle(), nil
	default:
		return StyleWindows, apperrors.Newf("pathguard.ParseStyle", "unknown path style %q", raw)
	}
}

func (s Style) String() string {
	if s == StylePOSIX {
		return "posix"
	}
	return "windows"
}

// Sep 本风格的目录分隔符。
func (s Style) Sep() byte {
	if s == StylePOSIX {
		return '/'
	}
	return '\\'
}

// foreign 需要被替换为 Sep 的另一种分隔符。
func (s Style) foreign() byte {
	if s == StylePOSIX {
		return '\\'
	}
	return '/'
}
