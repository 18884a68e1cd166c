// Package logger 提供基于 slog 的结构化日志。
//
// 核心功能:
//   - Init() 配置默认日志器 (JSON/Text + 级别)
//   - InitWithFile() 同时输出到 stdout 和按日期命名的 JSONL 文件
//   - WithContext() / FromContext() 请求级日志器 (携带 request_id)
//   - 包级便捷方法 (Info/Error/Warn/Debug)
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	pkgerr "github.com/multi-agent/spoolgen/pkg/errors"
)

var (
	defaultLogger atomic.Pointer[slog.Logger]

	logFile   *os.File   // 全局日志文件, ShutdownFileHandler 时关闭
	logFileMu sync.Mutex // 保护 logFile 并发替换/关闭
)

func init() { defaultLogger.Store(newLogger(os.Stdout, false, slog.LevelInfo)) }

func getLogger() *slog.Logger { return defaultLogger.Load() }

// storeLogger 原子存储默认日志器并同步 slog.SetDefault。
func storeLogger(l *slog.Logger) {
	defaultLogger.Store(l)
	slog.SetDefault(l)
}

// replaceTimeAttr 时间统一输出为 UTC RFC3339 (毫秒)。
func replaceTimeAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.UTC().Format("2006-01-02T15:04:05.000Z"))
		}
	}
	return a
}

func newLogger(w io.Writer, development bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   development,
		ReplaceAttr: replaceTimeAttr,
	}
	var handler slog.Handler
	if development {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel 解析 DEBUG/INFO/WARN(ING)/ERROR，未知值回退 INFO。
func ParseLevel(raw string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "CRITICAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isDev(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "development" || env == "dev"
}

// Init 初始化日志配置。env: "development"/"dev" 输出 Text 到 stderr，其余输出 JSON 到 stdout。
func Init(env, level string) {
	dev := isDev(env)
	w := io.Writer(os.Stdout)
	if dev {
		w = os.Stderr
	}
	storeLogger(newLogger(w, dev, ParseLevel(level)))
}

// InitWithFile 初始化日志, 同时输出到 stdout 和日志文件。
//
// 日志文件: {logDir}/spoolgen-{date}.jsonl (JSON 格式)。
// 重复调用会关闭旧文件。调用者应在退出前调用 ShutdownFileHandler()。
func InitWithFile(logDir, level string) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return pkgerr.Wrap(err, "Logger.Init", "create log dir")
	}

	date := time.Now().UTC().Format("2006-01-02")
	logPath := filepath.Join(logDir, fmt.Sprintf("spoolgen-%s.jsonl", date))

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return pkgerr.Wrap(err, "Logger.Init", "open log file")
	}
	logFileMu.Lock()
	old := logFile
	logFile = f
	logFileMu.Unlock()

	storeLogger(newLogger(io.MultiWriter(os.Stdout, f), false, ParseLevel(level)))
	if old != nil {
		_ = old.Close()
	}

	Info("log file opened", FieldPath, logPath)
	return nil
}

// ShutdownFileHandler 关闭日志文件 (并发安全, 可重复调用)。
func ShutdownFileHandler() {
	logFileMu.Lock()
	defer logFileMu.Unlock()
	if logFile != nil {
		_ = logFile.Sync()
		_ = logFile.Close()
		logFile = nil
	}
	storeLogger(newLogger(os.Stdout, false, slog.LevelInfo))
}

// ========================================
// Context 感知日志
// ========================================

type ctxKey struct{}

// WithContext 将日志器注入 context。
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext 从 context 提取日志器，若不存在则返回默认日志器。
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return getLogger()
}

// ========================================
// 包级便捷方法
// ========================================

// Info/Error/Warn/Debug 记录结构化日志。args 为 key-value 对。
func Info(msg string, args ...any)  { getLogger().Info(msg, args...) }
func Error(msg string, args ...any) { getLogger().Error(msg, args...) }
func Warn(msg string, args ...any)  { getLogger().Warn(msg, args...) }
func Debug(msg string, args ...any) { getLogger().Debug(msg, args...) }

// Fatal 记录致命错误并退出。
func Fatal(msg string, args ...any) {
	getLogger().Error(msg, args...)
	ShutdownFileHandler()
	os.Exit(1)
}

// With 返回带附加上下文的日志器。
func With(args ...any) *slog.Logger { return getLogger().With(args...) }

// Get 返回底层 slog.Logger。
func Get() *slog.Logger { return getLogger() }

// 字段常量: MUST 使用常量键名，勿硬编码。
const (
	FieldRequestID  = "request_id"
	FieldComponent  = "component"
	FieldError      = "error"
	FieldCode       = "code"
	FieldStatus     = "status"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldClientIP   = "client_ip"
	FieldDurationMS = "duration_ms"
	FieldCount      = "count"
	FieldAddr       = "addr"
	FieldPhase      = "phase"
	FieldLimit      = "limit"
	FieldSQLLen     = "sql_len"
	FieldDialect    = "dialect"
	FieldMode       = "mode"
	FieldReport     = "report"
	FieldFile       = "file"
	FieldBytes      = "bytes"
	FieldStyle      = "style"
	FieldProbe      = "probe"
	FieldDeny       = "deny_prefixes"
	FieldVersion    = "version"
)
