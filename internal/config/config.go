// Package config 全局配置加载与管理。
//
// 所有字段通过 struct tag 声明环境变量映射:
//
//	`env:"VAR_NAME" default:"value" min:"0"`
//
// Load() 使用反射自动填充，无需手动逐行赋值。Duration 字段按秒解析。
package config

import (
	"time"

	"github.com/multi-agent/spoolgen/internal/pathguard"
	"github.com/multi-agent/spoolgen/pkg/util"
)

// Config 应用全局配置，字段名与 .env 变量一一对应。
type Config struct {
	// 应用
	AppName  string `env:"APP_NAME" default:"spoolgen"`
	AppEnv   string `env:"APP_ENV" default:"production"`
	HTTPAddr string `env:"SPOOL_HTTP_ADDR" default:":8080"`

	// 管理接口令牌 (X-Admin-Token)；空 = 仅回环地址可调用
	AdminToken string `env:"SPOOL_ADMIN_TOKEN"`

	// 日志
	LogLevel string `env:"LOG_LEVEL" default:"INFO"`
	LogDir   string `env:"APP_LOG_DIR"` // 空 = 只输出 stdout

	// 目录
	BaseDocsDir string `env:"APP_BASE_DOCS_DIR"`
	OutputDir   string `env:"APP_OUTPUT_DIR" default:"outputs"`

	// 导出路径策略
	ExportPathStyle    string `env:"SPOOL_EXPORT_PATH_STYLE" default:"windows"`
	DenyPrefixes       string `env:"SPOOL_DENY_PREFIXES"` // ';' 分隔，空 = 内置默认
	ValidateExportPath bool   `env:"SPOOL_VALIDATE_EXPORT_PATH_FS" default:"false"`

	// 查询采样
	SampleRows      int           `env:"SPOOL_SAMPLE_ROWS" default:"100" min:"1"`
	PreviewRows     int           `env:"SPOOL_PREVIEW_ROWS" default:"10" min:"1"`
	PreviewMaxRows  int           `env:"SPOOL_PREVIEW_MAX_ROWS" default:"100" min:"1"`
	QueryTimeout    time.Duration `env:"SPOOL_QUERY_TIMEOUT_SEC" default:"30" min:"1"`
	SampleMaxUpload int           `env:"SPOOL_SAMPLE_MAX_BYTES" default:"1048576" min:"1024"` // 1MB

	// PostgreSQL
	PostgresConnStr        string `env:"POSTGRES_CONNECTION_STRING"`
	PostgresSchema         string `env:"POSTGRES_SCHEMA" default:"public"`
	PostgresPoolMinSize    int    `env:"POSTGRES_POOL_MIN_SIZE" default:"1" min:"1"`
	PostgresPoolMaxSize    int    `env:"POSTGRES_POOL_MAX_SIZE" default:"5" min:"1"`
	PostgresPoolTimeoutSec int    `env:"POSTGRES_POOL_TIMEOUT_SEC" default:"10" min:"1"`
}

// Load 从环境变量加载配置 (通过反射读取 struct tag)。
func Load() *Config {
	var cfg Config
	util.LoadFromEnv(&cfg)
	if cfg.PreviewMaxRows < cfg.PreviewRows {
		cfg.PreviewMaxRows = cfg.PreviewRows
	}
	return &cfg
}

// ExportSettings 导出路径策略快照。风格无法识别时返回错误，调用方决定是否终止。
func (c *Config) ExportSettings() (pathguard.Settings, error) {
	style, err := pathguard.ParseStyle(c.ExportPathStyle)
	if err != nil {
		return pathguard.Settings{}, err
	}
	return pathguard.NewSettings(style, c.DenyPrefixes, c.ValidateExportPath), nil
}

// BrowseSettings 目录浏览策略: 始终按本机风格，不做写探测。
func (c *Config) BrowseSettings() pathguard.Settings {
	style := pathguard.NativeStyle()
	deny := ""
	if exp, err := pathguard.ParseStyle(c.ExportPathStyle); err == nil && exp == style {
		deny = c.DenyPrefixes
	}
	return pathguard.NewSettings(style, deny, false)
}
