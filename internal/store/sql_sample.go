// sql_sample.go: 方言感知的限行采样包装。
package store

import (
	"strconv"
	"strings"

	apperrors "github.com/multi-agent/spoolgen/pkg/errors"
	"github.com/multi-agent/spoolgen/pkg/util"
)

// Dialect 受信任的封闭方言集合，由活动连接决定，从不取自用户输入。
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
	DialectOracle   Dialect = "oracle"
)

// MaxSampleRows 采样行数上限。
const MaxSampleRows = 10000

var dialectAliases = map[string]Dialect{
	"postgres":   DialectPostgres,
	"postgresql": DialectPostgres,
	"pgx":        DialectPostgres,
	"psycopg2":   DialectPostgres,
	"mysql":      DialectMySQL,
	"mariadb":    DialectMySQL,
	"pymysql":    DialectMySQL,
	"sqlite":     DialectSQLite,
	"sqlite3":    DialectSQLite,
	"oracle":     DialectOracle,
	"oracledb":   DialectOracle,
	"cx_oracle":  DialectOracle,
	"godror":     DialectOracle,
}

// ParseDialect 解析驱动/方言名 (大小写不敏感)。
func ParseDialect(name string) (Dialect, error) {
	if d, ok := dialectAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d, nil
	}
	return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "SqlPolicy.ParseDialect", "unsupported dialect %q", name)
}

// usesRownum Oracle 家族没有 LIMIT。
func (d Dialect) usesRownum() bool { return d == DialectOracle }

// BuildSampleSQL 把已校验的查询包成子查询并加方言行数上限。
//
// limit 收敛到 [1, MaxSampleRows] 后以十进制数字拼接，查询原文只出现一次。
func BuildSampleSQL(validated string, dialect Dialect, limit int) string {
	n := strconv.Itoa(util.ClampInt(limit, 1, MaxSampleRows))
	var b strings.Builder
	b.Grow(len(validated) + 48)
	b.WriteString("SELECT * FROM (\n")
	b.WriteString(validated)
	b.WriteString("\n) q ")
	if dialect.usesRownum() {
		b.WriteString("WHERE ROWNUM <= ")
	} else {
		b.WriteString("LIMIT ")
	}
	b.WriteString(n)
	return b.String()
}
