package store

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	apperrors "github.com/multi-agent/spoolgen/pkg/errors"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in   string
		want Dialect
	}{
		{"postgresql", DialectPostgres},
		{"PGX", DialectPostgres},
		{"mariadb", DialectMySQL},
		{"sqlite3", DialectSQLite},
		{"cx_oracle", DialectOracle},
		{" OracleDB ", DialectOracle},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if err != nil || got != tt.want {
				t.Errorf("ParseDialect(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
	for _, bad := range []string{"", "mssql", "oracle; drop"} {
		if _, err := ParseDialect(bad); err == nil {
			t.Errorf("ParseDialect(%q) should fail", bad)
		}
	}
}

func TestNewBaseStore_Dialect(t *testing.T) {
	base, err := NewBaseStore(PoolDriver)
	if err != nil || base.Dialect() != DialectPostgres {
		t.Errorf("NewBaseStore(%q) = %q, %v; want %q", PoolDriver, base.Dialect(), err, DialectPostgres)
	}
	s, err := NewDBQueryStore(nil, time.Second)
	if err != nil || s.Dialect() != DialectPostgres {
		t.Errorf("NewDBQueryStore dialect = %v, %v", s, err)
	}
	if _, err := NewBaseStore("mssql"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("NewBaseStore(mssql) err = %v, want ErrInvalidInput", err)
	}
}

func TestBuildSampleSQL(t *testing.T) {
	const q = "select a from t"
	tests := []struct {
		name    string
		dialect Dialect
		limit   int
		want    string
	}{
		{"postgres", DialectPostgres, 100, "SELECT * FROM (\nselect a from t\n) q LIMIT 100"},
		{"mysql", DialectMySQL, 5, "SELECT * FROM (\nselect a from t\n) q LIMIT 5"},
		{"sqlite", DialectSQLite, 1, "SELECT * FROM (\nselect a from t\n) q LIMIT 1"},
		{"oracle", DialectOracle, 100, "SELECT * FROM (\nselect a from t\n) q WHERE ROWNUM <= 100"},
		{"zero clamps to one", DialectPostgres, 0, "SELECT * FROM (\nselect a from t\n) q LIMIT 1"},
		{"negative clamps to one", DialectOracle, -7, "SELECT * FROM (\nselect a from t\n) q WHERE ROWNUM <= 1"},
		{"huge clamps to max", DialectPostgres, 1 << 40, "SELECT * FROM (\nselect a from t\n) q LIMIT 10000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildSampleSQL(q, tt.dialect, tt.limit); got != tt.want {
				t.Errorf("BuildSampleSQL = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestBuildSampleSQL_DigitsAndSingleOccurrence 上限只以数字出现，原查询恰好出现一次。
func TestBuildSampleSQL_DigitsAndSingleOccurrence(t *testing.T) {
	tail := regexp.MustCompile(`(LIMIT|ROWNUM <=) ([0-9]+)$`)
	queries := []string{"select 1", "select 'LIMIT 5' as x", "with q as (select 1) select * from q"}
	for _, q := range queries {
		for _, d := range []Dialect{DialectPostgres, DialectMySQL, DialectSQLite, DialectOracle} {
			for _, limit := range []int{-1, 0, 1, 10, 100, 99999} {
				got := BuildSampleSQL(q, d, limit)
				if !tail.MatchString(got) {
					t.Errorf("BuildSampleSQL(%q, %s, %d) = %q: bound is not digits", q, d, limit, got)
				}
				if n := strings.Count(got, q); n != 1 {
					t.Errorf("BuildSampleSQL(%q, %s, %d) contains query %d times", q, d, limit, n)
				}
			}
		}
	}
}
