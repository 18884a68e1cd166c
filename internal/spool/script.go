// Package spool 生成 SQL*Plus 导出脚本 (SPOOL 到 CSV)。
//
// 嵌入脚本的每个片段在进入本包之前都已校验: 导出目录来自 pathguard，
// FROM 源来自 TableSource 或已校验查询的 InlineView，列名经 ValidateColumns。
package spool

import (
	"strings"
	"time"
)

// Script 渲染所需的全部输入。
type Script struct {
	ExportPath  string    // 规范化导出目录 (带尾分隔符)
	ReportName  string    // CleanReportName 之后
	From        string    // 表引用或内联视图
	Columns     []string  // 已校验列名
	RequestID   string
	GeneratedAt time.Time
}

// Render 生成脚本文本。
func (s Script) Render() string {
	pieces := make([]string, len(s.Columns))
	header := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		pieces[i] = `'"'||REPLACE(NVL(TO_CHAR(A.` + columnRef(col) + `), ''), '"', '""')||'"'`
		header[i] = QuoteOracleIdentifier(col)
	}
	headerLiteral := strings.ReplaceAll(strings.Join(header, ","), "'", "''")

	var b strings.Builder
	b.WriteString("-- generated_by=spool-ctl-generator\n")
	b.WriteString("-- request_id=" + s.RequestID + "\n")
	b.WriteString("-- generated_at=" + s.GeneratedAt.Format("2006-01-02T15:04:05") + "\n\n")
	b.WriteString(`SET LINESIZE 10000
SET ECHO OFF
SET TIMING OFF
SET PAGESIZE 0
SET TERMOUT OFF
SET FEEDBACK OFF
SET TRIMSPOOL ON
SET SQLBLANKLINES ON

WHENEVER SQLERROR EXIT 1;

COLUMN tm NEW_VALUE FILE_TIME NOPRINT
SELECT to_char(TRUNC(SYSDATE - 1), 'DDMMYYYY') tm FROM DUAL;
PROMPT &FILE_TIME

`)
	b.WriteString(`SPOOL "` + s.ExportPath + s.ReportName + `_&FILE_TIME..csv"` + "\n")
	b.WriteString("SELECT '" + headerLiteral + "' FROM DUAL;\n")
	b.WriteString("SELECT\n")
	b.WriteString(strings.Join(pieces, "||','||\n"))
	b.WriteString("\nFROM " + s.From + " A;\n\n")
	b.WriteString("SPOOL OFF;\nDISCONNECT;\nEXIT;")
	return b.String()
}
