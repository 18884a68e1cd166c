// sql_safety.go: 只读查询校验。
//
// 所有检查都在遮罩后的文本上进行: 字面量里的 ';' 或 'DROP' 不会误报。
// 只遮罩一次；反斜杠仅在 E'...' 内转义。
//
// 关键字按整词匹配，未加引号的列名/别名恰好等于关键字 (如 set) 也会被拒绝，属于预期行为。
package store

import (
	"regexp"
	"strings"

	apperrors "github.com/multi-agent/spoolgen/pkg/errors"
)

var (
	// 读查询入口: 允许前导空白与左括号。
	reReadOnlyStart = regexp.MustCompile(`(?i)^\s*\(*\s*(select|with)\b`)

	// DML / DDL / 事务控制 / 过程执行 / 会话变更。
	reForbiddenKeyword = regexp.MustCompile(`(?i)\b(` +
		`insert|update|delete|merge|drop|alter|create|truncate|grant|revoke|` +
		`commit|rollback|savepoint|` +
		`call|execute|exec|` +
		`begin|declare|` +
		`set|use` +
		`)\b`)

	// MySQL/MariaDB 文件写出。
	reOutfile = regexp.MustCompile(`(?i)\binto\s+(outfile|dumpfile)\b`)
)

const validateOp = "SqlPolicy.Validate"

// ValidateReadOnlyQuery 校验单条只读查询，返回去掉结尾 ';' 并 trim 后的原文 (不是遮罩文本)。
//
// 失败返回 *errors.AppError: EMPTY_QUERY / MULTIPLE_STATEMENTS / NOT_READ_ONLY /
// FORBIDDEN_KEYWORD (Detail 为命中的关键字原文) / OUTFILE_REDIRECTION_DENIED。
func ValidateReadOnlyQuery(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if strings.HasSuffix(s, ";") {
		s = strings.TrimSpace(s[:len(s)-1])
	}
	if s == "" {
		return "", apperrors.Reject(apperrors.ErrInvalidInput, validateOp, CodeEmptyQuery, "the SQL query is empty")
	}

	if err := checkMasked(MaskSQL(s)); err != nil {
		return "", err
	}
	return s, nil
}

func checkMasked(masked string) error {
	if strings.Contains(masked, ";") {
		return apperrors.Reject(apperrors.ErrInvalidInput, validateOp, CodeMultipleStatements,
			"multiple statements are not allowed; remove intermediate ';' and keep a single query")
	}
	if !reReadOnlyStart.MatchString(masked) {
		return apperrors.Reject(apperrors.ErrReadOnly, validateOp, CodeNotReadOnly,
			"only read queries are allowed: SELECT or WITH ... SELECT")
	}
	if m := reForbiddenKeyword.FindString(masked); m != "" {
		return apperrors.Reject(apperrors.ErrReadOnly, validateOp, CodeForbiddenKeyword,
			"query rejected: contains forbidden keyword '"+m+"'").WithDetail(m)
	}
	if reOutfile.MatchString(masked) {
		return apperrors.Reject(apperrors.ErrReadOnly, validateOp, CodeOutfileDenied,
			"query rejected: SELECT ... INTO OUTFILE/DUMPFILE is not allowed")
	}
	return nil
}
