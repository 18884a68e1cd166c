// Package store 提供 SQL 安全校验与数据库采样访问。
//
//   - sql_mask.go   词法遮罩状态机
//   - sql_safety.go 只读单语句校验
//   - sql_sample.go 方言限行包装
//   - db_query.go   只读事务内的列发现与预览
package store

// 拒绝码 (AppError.Code)。
const (
	CodeEmptyQuery         = "EMPTY_QUERY"
	CodeMultipleStatements = "MULTIPLE_STATEMENTS"
	CodeNotReadOnly        = "NOT_READ_ONLY"
	CodeForbiddenKeyword   = "FORBIDDEN_KEYWORD"
	CodeOutfileDenied      = "OUTFILE_REDIRECTION_DENIED"
	CodeQueryFailed        = "QUERY_EXECUTION_FAILED"
	CodeQueryTimeout       = "QUERY_TIMEOUT"
	CodeDBUnavailable      = "DB_UNAVAILABLE"
)

// Preview 采样预览结果。
type Preview struct {
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
}
