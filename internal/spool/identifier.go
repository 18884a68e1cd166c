package spool

import (
	"regexp"
	"strings"

	apperrors "github.com/multi-agent/spoolgen/pkg/errors"
)

// 拒绝码。
const (
	CodeInvalidColumn = "INVALID_COLUMN_NAME"
	CodeInvalidTable  = "INVALID_TABLE_NAME"
	CodeNoColumns     = "NO_COLUMNS"
	CodeSQLPlusUnsafe = "SQLPLUS_UNSAFE_QUERY"
)

var (
	// Oracle 非引号标识符。
	reSimpleIdent = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_$#]*$`)
	// [schema.]table，可带 @dblink。
	reTableRef = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_$#]*(\.[A-Za-z][A-Za-z0-9_$#]*)?(@[A-Za-z][A-Za-z0-9_$#.]*)?$`)
)

// QuoteOracleIdentifier 去首尾空白，'"' 加倍后整体加双引号。
func QuoteOracleIdentifier(ident string) string {
	ident = strings.TrimSpace(ident)
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// columnRef A.<col> 中的列引用: 普通标识符原样，其余加引号。
func columnRef(col string) string {
	if reSimpleIdent.MatchString(col) {
		return col
	}
	return QuoteOracleIdentifier(col)
}

// ValidateColumns 列名非空、无控制字符、无 '&' (SQL*Plus 替换变量)。
func ValidateColumns(cols []string) ([]string, error) {
	const op = "Spool.ValidateColumns"
	if len(cols) == 0 {
		return nil, apperrors.Reject(apperrors.ErrInvalidInput, op, CodeNoColumns, "no columns detected")
	}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		c = strings.TrimSpace(c)
		if c == "" || strings.ContainsAny(c, "&\x00") || strings.IndexFunc(c, isControl) >= 0 {
			return nil, apperrors.Reject(apperrors.ErrInvalidInput, op, CodeInvalidColumn,
				"column names must be non-empty and must not contain '&' or control characters").WithDetail(c)
		}
		out = append(out, c)
	}
	return out, nil
}

func isControl(r rune) bool { return r < 0x20 || r == 0x7f }

// TableSource 校验 table 模式的 FROM 源: [schema.]table[@dblink]。
func TableSource(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !reTableRef.MatchString(s) {
		return "", apperrors.Reject(apperrors.ErrInvalidInput, "Spool.TableSource", CodeInvalidTable,
			"table name must be an identifier like SCHEMA.TABLE")
	}
	return s, nil
}

// InlineView SQL 模式的 FROM 源: 已校验查询作为内联视图。
//
// SQL*Plus 会在执行前解释 '&' (替换变量) 与单独成行的 '/' 或 '.' (结束语句)；
// 以 '#' 开头的行 (SQLPREFIX) 会立即作为 SQL*Plus 命令执行。这些查询拒绝。
func InlineView(validatedSQL string) (string, error) {
	const op = "Spool.InlineView"
	if strings.Contains(validatedSQL, "&") {
		return "", apperrors.Reject(apperrors.ErrInvalidInput, op, CodeSQLPlusUnsafe,
			"the query must not contain '&' (SQL*Plus substitution variable)")
	}
	for _, line := range strings.Split(validatedSQL, "\n") {
		if l := strings.TrimSpace(line); l == "/" || l == "." {
			return "", apperrors.Reject(apperrors.ErrInvalidInput, op, CodeSQLPlusUnsafe,
				"the query must not contain a line with only '/' or '.'")
		}
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "#") {
			return "", apperrors.Reject(apperrors.ErrInvalidInput, op, CodeSQLPlusUnsafe,
				"the query must not contain a line starting with '#' (SQL*Plus command prefix)")
		}
	}
	return "(\n" + validatedSQL + "\n)", nil
}
