// db_query.go: 在只读事务中执行采样查询 (列发现 / 数据预览)。
//
// 查询先经 ValidateReadOnlyQuery，再由 BuildSampleSQL 包装限行；执行层再加一道只读事务与超时。
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/multi-agent/spoolgen/pkg/errors"
	"github.com/multi-agent/spoolgen/pkg/logger"
	"github.com/multi-agent/spoolgen/pkg/util"
)

// 采样阶段名 (日志 phase 字段)。
const (
	PhaseColumns = "fetch_columns_from_query"
	PhasePreview = "fetch_preview_from_query"
)

// PostgreSQL SQLSTATE。
const (
	sqlstateReadOnlyTx    = "25006" // read_only_sql_transaction
	sqlstateQueryCanceled = "57014" // query_canceled (超时触发的取消)
)

// DBQueryStore 采样查询执行器。
type DBQueryStore struct {
	BaseStore
	db      txStarter
	timeout time.Duration
}

// NewDBQueryStore 创建，方言由 PoolDriver 解析。pool 为 nil 时所有查询返回 DB_UNAVAILABLE。
func NewDBQueryStore(pool *pgxpool.Pool, timeout time.Duration) (*DBQueryStore, error) {
	base, err := NewBaseStore(PoolDriver)
	if err != nil {
		return nil, err
	}
	s := &DBQueryStore{BaseStore: base, timeout: timeout}
	if pool != nil {
		s.db = pool
	}
	return s, nil
}

// Available 是否配置了数据库。
func (s *DBQueryStore) Available() bool { return s != nil && s.db != nil }

// Columns 执行限行采样，返回结果列名 (驱动元数据)。
func (s *DBQueryStore) Columns(ctx context.Context, sqlText string, limit int) ([]string, error) {
	limit = util.ClampInt(limit, 1, MaxSampleRows)
	var cols []string
	err := s.sample(ctx, PhaseColumns, sqlText, limit, func(rows pgx.Rows) error {
		cols = columnNames(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cols, nil
}

// Preview 执行限行采样，返回列名与至多 limit 行数据。
func (s *DBQueryStore) Preview(ctx context.Context, sqlText string, limit int) (*Preview, error) {
	limit = util.ClampInt(limit, 1, MaxSampleRows)
	out := &Preview{Rows: [][]any{}}
	err := s.sample(ctx, PhasePreview, sqlText, limit, func(rows pgx.Rows) error {
		out.Columns = columnNames(rows)
		for rows.Next() {
			values, err := rows.Values()
			if err != nil {
				return err
			}
			row := make([]any, len(values))
			for i, v := range values {
				row[i] = jsonValue(v)
			}
			out.Rows = append(out.Rows, row)
			if len(out.Rows) >= limit {
				break
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	out.RowCount = len(out.Rows)
	return out, nil
}

// sample 校验 → 包装 → 只读事务执行 → 记录 sql_exec_done / sql_exec_error。
func (s *DBQueryStore) sample(ctx context.Context, phase, sqlText string, limit int, consume func(pgx.Rows) error) error {
	op := "DBQueryStore." + phase
	validated, err := ValidateReadOnlyQuery(sqlText)
	if err != nil {
		return err
	}
	if !s.Available() {
		return apperrors.Reject(apperrors.ErrUnavailable, op, CodeDBUnavailable, "no database connection is configured")
	}
	sampleSQL := BuildSampleSQL(validated, s.Dialect(), limit)

	log := logger.FromContext(ctx)
	start := time.Now()
	defer func() {
		log.Info("sql_exec_done",
			logger.FieldPhase, phase,
			logger.FieldLimit, limit,
			logger.FieldSQLLen, len(validated),
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	}()

	if err := s.runReadOnly(ctx, sampleSQL, consume); err != nil {
		log.Error("sql_exec_error",
			logger.FieldPhase, phase,
			logger.FieldLimit, limit,
			logger.FieldSQLLen, len(validated),
			logger.FieldError, err.Error(),
		)
		return classifyQueryError(op, err)
	}
	return nil
}

func (s *DBQueryStore) runReadOnly(ctx context.Context, sampleSQL string, consume func(pgx.Rows) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return err
	}
	// 只读事务无需提交
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	rows, err := tx.Query(ctx, sampleSQL)
	if err != nil {
		return err
	}
	defer rows.Close()

	if err := consume(rows); err != nil {
		return err
	}
	return rows.Err()
}

func columnNames(rows pgx.Rows) []string {
	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, fd := range fields {
		cols[i] = fd.Name
	}
	return cols
}

// classifyQueryError 服务端 SQL 错误 → QUERY_EXECUTION_FAILED (只保留首行消息)；
// 超时 → QUERY_TIMEOUT；其余 (连接中断等) 归为内部错误，不向调用方泄露细节。
func classifyQueryError(op string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &pgErr) && pgErr.Code == sqlstateQueryCanceled:
		return apperrors.Reject(apperrors.ErrTimeout, op, CodeQueryTimeout, "query timed out")
	case errors.As(err, &pgErr) && serverFault(pgErr.Code):
		return apperrors.Wrap(fmt.Errorf("%w: %w", apperrors.ErrInternal, err), op, "database unavailable")
	case errors.As(err, &pgErr) && pgErr.Code == sqlstateReadOnlyTx:
		return apperrors.Reject(apperrors.ErrReadOnly, op, CodeNotReadOnly,
			"query attempted to modify data").WithDetail(pgErr.Code)
	case errors.As(err, &pgErr):
		return apperrors.Reject(apperrors.ErrInvalidInput, op, CodeQueryFailed,
			"query failed: "+firstLine(pgErr.Message)).WithDetail(pgErr.Code)
	default:
		return apperrors.Wrap(fmt.Errorf("%w: %w", apperrors.ErrInternal, err), op, "query execution failed")
	}
}

// serverFault SQLSTATE 类别: 连接 (08)、认证 (28)、资源 (53)、运维干预 (57)、系统 (58)、内部 (XX)。
// 这些与查询文本无关，按内部错误处理。
func serverFault(code string) bool {
	if len(code) < 2 {
		return false
	}
	switch code[:2] {
	case "08", "28", "53", "57", "58", "XX":
		return true
	}
	return false
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
