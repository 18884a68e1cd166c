// Package service 编排校验、采样与脚本生成，供 HTTP 层调用。
//
// 每个请求只读取一次路径策略快照；SQL 在进入数据库或脚本之前必定先过只读校验。
package service

import (
	"context"
	"strings"

	"github.com/multi-agent/spoolgen/internal/pathguard"
	"github.com/multi-agent/spoolgen/internal/spool"
	"github.com/multi-agent/spoolgen/internal/store"
	apperrors "github.com/multi-agent/spoolgen/pkg/errors"
)

// 拒绝码 (AppError.Code)。
const (
	CodeInvalidSourceMode = "INVALID_SOURCE_MODE"
	CodeUnsupportedSample = "UNSUPPORTED_SAMPLE_FILE"
	CodeSampleTooLarge    = "SAMPLE_TOO_LARGE"
	CodeEmptySample       = "EMPTY_SAMPLE_FILE"
)

// QueryStore 数据库采样能力，由 *store.DBQueryStore 实现。
type QueryStore interface {
	Available() bool
	Dialect() store.Dialect
	Columns(ctx context.Context, sqlText string, limit int) ([]string, error)
	Preview(ctx context.Context, sqlText string, limit int) (*store.Preview, error)
}

// Options 采样行数与上传限制。
type Options struct {
	SampleRows     int
	PreviewRows    int
	PreviewMaxRows int
	SampleMaxBytes int64
}

// Service 聚合所有依赖。
type Service struct {
	Spool  *SpoolService
	Browse *pathguard.Policy
}

// New 创建 Service 层。
func New(queries QueryStore, export, browse *pathguard.Policy, writer *spool.Writer, opts Options) *Service {
	return &Service{
		Spool:  &SpoolService{queries: queries, export: export, writer: writer, opts: opts},
		Browse: browse,
	}
}

// Reload 同时替换导出与浏览两个策略快照。
func (s *Service) Reload(ctx context.Context, export, browse pathguard.Settings) {
	s.Spool.Reload(ctx, export)
	if s.Browse != nil {
		s.Browse.Reload(browse)
	}
}

// SourceMode FROM 源的来源。
type SourceMode string

const (
	// ModeSQL 列名从查询采样中发现，FROM 为内联视图。
	ModeSQL SourceMode = "sql"
	// ModeTable 显式列名或 CSV 样本表头 + 表引用。
	ModeTable SourceMode = "table"
)

// ParseSourceMode 空值按 table 处理，"csv" 为 table 的别名。
func ParseSourceMode(raw string) (SourceMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "table", "csv":
		return ModeTable, nil
	case "sql":
		return ModeSQL, nil
	default:
		return "", apperrors.Reject(apperrors.ErrInvalidInput, "Service.ParseSourceMode", CodeInvalidSourceMode,
			"source_mode must be 'sql' or 'table'").WithDetail(raw)
	}
}

func required(op, field string) error {
	return apperrors.Reject(apperrors.ErrInvalidInput, op, pathguard.CodeRequired, field+" is required").WithDetail(field)
}
