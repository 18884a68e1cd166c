package service

import (
	"context"
	"strings"

	"github.com/multi-agent/spoolgen/internal/pathguard"
	"github.com/multi-agent/spoolgen/internal/spool"
	"github.com/multi-agent/spoolgen/internal/store"
	apperrors "github.com/multi-agent/spoolgen/pkg/errors"
	"github.com/multi-agent/spoolgen/pkg/logger"
	"github.com/multi-agent/spoolgen/pkg/util"
)

// SpoolService 导出脚本生成与预览。
type SpoolService struct {
	queries QueryStore
	export  *pathguard.Policy
	writer  *spool.Writer
	opts    Options
}

// SpoolRequest 生成请求。Columns 与 Sample 只用于 table 模式，Columns 优先。
type SpoolRequest struct {
	Mode       SourceMode
	SQL        string
	Table      string
	Columns    []string
	Sample     *SampleFile
	ExportPath string
	ReportName string
	RequestID  string
}

// PreviewRequest 预览请求。Rows <= 0 时取默认值。
type PreviewRequest struct {
	Mode   SourceMode
	SQL    string
	Sample *SampleFile
	Rows   int
}

// PreviewResult 预览结果。table 模式下行来自样本文件。
type PreviewResult struct {
	Mode SourceMode `json:"mode"`
	store.Preview
}

// SQLCheck 查询校验结果。
type SQLCheck struct {
	SQL       string        `json:"sql"`
	Dialect   store.Dialect `json:"dialect"`
	SampleSQL string        `json:"sample_sql"`
}

// Generate 校验全部输入并写出脚本。调用方负责在下发后 Remove。
func (s *SpoolService) Generate(ctx context.Context, req SpoolRequest) (*spool.Artifact, error) {
	const op = "SpoolService.Generate"
	log := logger.FromContext(ctx)
	log.Info("spool_requested",
		logger.FieldMode, req.Mode,
		logger.FieldReport, req.ReportName,
		logger.FieldSQLLen, len(req.SQL),
	)

	mode, err := ParseSourceMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ReportName) == "" {
		return nil, required(op, "report_name")
	}
	exportPath, err := s.export.ValidateExport(req.ExportPath)
	if err != nil {
		return nil, err
	}

	var from string
	var cols []string
	if mode == ModeSQL {
		from, cols, err = s.sqlSource(ctx, req.SQL)
	} else {
		from, cols, err = s.tableSource(req)
	}
	if err != nil {
		return nil, err
	}

	art, err := s.writer.Write(ctx, spool.Script{
		ExportPath: exportPath,
		ReportName: spool.CleanReportName(req.ReportName),
		From:       from,
		Columns:    cols,
		RequestID:  req.RequestID,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, op, "write spool script")
	}
	log.Info("spool_generated",
		logger.FieldMode, mode,
		logger.FieldFile, art.Name,
		logger.FieldBytes, art.Size,
		logger.FieldCount, len(cols),
	)
	return art, nil
}

// sqlSource 校验查询 → 采样取列名 → 内联视图。
func (s *SpoolService) sqlSource(ctx context.Context, raw string) (string, []string, error) {
	validated, err := store.ValidateReadOnlyQuery(raw)
	if err != nil {
		return "", nil, err
	}
	view, err := spool.InlineView(validated)
	if err != nil {
		return "", nil, err
	}
	cols, err := s.queries.Columns(ctx, validated, s.opts.SampleRows)
	if err != nil {
		return "", nil, err
	}
	cols, err = spool.ValidateColumns(cols)
	if err != nil {
		return "", nil, err
	}
	return view, cols, nil
}

func (s *SpoolService) tableSource(req SpoolRequest) (string, []string, error) {
	const op = "SpoolService.tableSource"
	if req.Table == "" {
		return "", nil, required(op, "table_name")
	}
	from, err := spool.TableSource(req.Table)
	if err != nil {
		return "", nil, err
	}
	cols := req.Columns
	if len(cols) == 0 && req.Sample != nil {
		text, err := readSample(op, req.Sample, s.opts.SampleMaxBytes)
		if err != nil {
			return "", nil, err
		}
		if cols, _, err = sampleRecords(op, text, 0); err != nil {
			return "", nil, err
		}
	}
	cols, err = spool.ValidateColumns(cols)
	if err != nil {
		return "", nil, err
	}
	return from, cols, nil
}

// Preview 返回至多 Rows 行 (收敛到 [1, PreviewMaxRows])。
func (s *SpoolService) Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error) {
	const op = "SpoolService.Preview"
	mode, err := ParseSourceMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	rows := req.Rows
	if rows <= 0 {
		rows = s.opts.PreviewRows
	}
	rows = util.ClampInt(rows, 1, s.opts.PreviewMaxRows)

	if mode == ModeSQL {
		p, err := s.queries.Preview(ctx, req.SQL, rows)
		if err != nil {
			return nil, err
		}
		return &PreviewResult{Mode: ModeSQL, Preview: *p}, nil
	}

	if req.Sample == nil {
		return nil, required(op, "file")
	}
	text, err := readSample(op, req.Sample, s.opts.SampleMaxBytes)
	if err != nil {
		return nil, err
	}
	cols, recs, err := sampleRecords(op, text, rows)
	if err != nil {
		return nil, err
	}
	out := &PreviewResult{Mode: ModeTable, Preview: store.Preview{Columns: cols, Rows: make([][]any, len(recs))}}
	for i, rec := range recs {
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		out.Rows[i] = row
	}
	out.RowCount = len(recs)
	return out, nil
}

// ValidateExportPath 单独校验导出目录。
func (s *SpoolService) ValidateExportPath(raw string) (string, error) {
	return s.export.ValidateExport(raw)
}

// ValidateSQL 校验查询，并给出活动连接方言下的采样 SQL。
func (s *SpoolService) ValidateSQL(raw string, limit int) (*SQLCheck, error) {
	validated, err := store.ValidateReadOnlyQuery(raw)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.opts.SampleRows
	}
	d := s.queries.Dialect()
	return &SQLCheck{SQL: validated, Dialect: d, SampleSQL: store.BuildSampleSQL(validated, d, limit)}, nil
}

// DatabaseAvailable 是否配置了采样数据库。
func (s *SpoolService) DatabaseAvailable() bool {
	return s.queries != nil && s.queries.Available()
}

// ExportSettings 当前导出策略快照。
func (s *SpoolService) ExportSettings() pathguard.Settings {
	return s.export.Settings()
}

// Reload 替换导出路径策略快照。
func (s *SpoolService) Reload(ctx context.Context, settings pathguard.Settings) {
	s.export.Reload(settings)
	logger.FromContext(ctx).Info("export_policy_reloaded",
		logger.FieldStyle, settings.Style.String(),
		logger.FieldDeny, settings.Deny.Len(),
		logger.FieldProbe, settings.ProbeWritable,
	)
}
