package pathguard

import (
	"strings"
	"sync/atomic"
)

// forbiddenChars 可突破生成脚本中引号上下文的字符 (含 NUL)。
const forbiddenChars = "\"'\r\n\t&;<>|\x00"

// Settings 策略的不可变配置快照，由 Reload 整体替换。
type Settings struct {
	Style         Style
	Deny          DenyList
	ProbeWritable bool // SPOOL_VALIDATE_EXPORT_PATH_FS
}

// NewSettings 由原始配置构造快照。denyRaw 为 ';' 分隔的覆盖列表，空则用内置默认值。
func NewSettings(style Style, denyRaw string, probe bool) Settings {
	return Settings{
		Style:         style,
		Deny:          ParseDenyList(denyRaw, style),
		ProbeWritable: probe,
	}
}

// Policy 导出路径策略。并发安全: 每次调用只读取一次当前快照。
type Policy struct {
	settings atomic.Pointer[Settings]
	probe    func(dir string) error
}

// New 创建策略。
func New(s Settings) *Policy {
	p := &Policy{probe: probeWritable}
	p.settings.Store(&s)
	return p
}

// Settings 返回当前快照。
func (p *Policy) Settings() Settings {
	return *p.settings.Load()
}

// Reload 原子替换配置快照，之后的调用立即生效。
func (p *Policy) Reload(s Settings) {
	p.settings.Store(&s)
}

// ValidateExport 校验导出目录并返回规范化路径。
//
// 失败时返回 *errors.AppError，Code 为本包拒绝码，分类哨兵决定 HTTP 语义。
func (p *Policy) ValidateExport(raw string) (string, error) {
	const op = "PathPolicy.ValidateExport"
	s := p.settings.Load()

	norm, err := precheck(op, raw, s.Style)
	if err != nil {
		return "", err
	}
	if IsAdminShare(norm, s.Style) {
		return "", forbidden(op, CodeAdminShare, "administrative shares (C$, ADMIN$) are not allowed")
	}
	if _, hit := s.Deny.Match(norm); hit {
		return "", forbidden(op, CodeSystemPath, "exporting into system directories is not allowed")
	}
	if s.ProbeWritable {
		if err := p.probe(norm); err != nil {
			return "", err
		}
	}
	return norm, nil
}

// IsDenied 目录浏览使用的标注谓词: 命中黑名单或管理共享。
func (p *Policy) IsDenied(path string) bool {
	s := p.settings.Load()
	return isDenied(s, path)
}

func isDenied(s *Settings, path string) bool {
	if IsAdminShare(path, s.Style) {
		return true
	}
	_, hit := s.Deny.Match(path)
	return hit
}

// precheck 两个入口共享的前四步: 非空 → 非法字符 → 穿越 → 规范化 → 绝对路径。
func precheck(op, raw string, style Style) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", invalid(op, CodeRequired, "path is required")
	}
	if strings.ContainsAny(trimmed, forbiddenChars) {
		return "", invalid(op, CodeInvalidChars, "path contains forbidden characters (quotes, line breaks, &, ;, <, >, |)")
	}
	if HasTraversal(trimmed, style) {
		return "", invalid(op, CodeTraversal, "'..' is not allowed in the path")
	}
	norm := Normalize(trimmed, style)
	if !IsAbsolute(norm, style) {
		if style == StylePOSIX {
			return "", invalid(op, CodeNotAbsolute, "path must be absolute (/...)")
		}
		return "", invalid(op, CodeNotAbsolute, `path must be absolute (C:\... or \\server\share\...)`)
	}
	return norm, nil
}
