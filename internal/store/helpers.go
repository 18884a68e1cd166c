// helpers.go: Store 层公共基底与值转换。
package store

import (
	"context"
	"encoding/hex"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// txStarter 连接池的最小子集，*pgxpool.Pool 满足。
type txStarter interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// PoolDriver database.NewPool 创建的连接池所用驱动。
const PoolDriver = "pgx"

// BaseStore Store 的嵌入基底，记录驱动对应的 SQL 方言。
//
//	type FooStore struct{ BaseStore }
//	base, err := NewBaseStore(PoolDriver)
type BaseStore struct{ dialect Dialect }

// NewBaseStore 按驱动名解析方言，未知驱动返回 ErrInvalidInput。
func NewBaseStore(driver string) (BaseStore, error) {
	d, err := ParseDialect(driver)
	if err != nil {
		return BaseStore{}, err
	}
	return BaseStore{dialect: d}, nil
}

// Dialect 活动连接的方言。
func (b BaseStore) Dialect() Dialect { return b.dialect }

// jsonValue 把驱动返回值转换为适合 JSON 输出的形式。
// uuid ([16]byte) → 字符串；合法 UTF-8 的 []byte → 字符串，否则十六进制；time 统一 RFC3339Nano。
func jsonValue(v any) any {
	switch t := v.(type) {
	case [16]byte:
		return uuid.UUID(t).String()
	case []byte:
		if utf8.Valid(t) {
			return string(t)
		}
		return `\x` + hex.EncodeToString(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return v
	}
}
