// sql_mask.go: SQL 词法遮罩。
//
// 单次左到右扫描的有限状态机，把字符串字面量、带引号标识符、行注释、块注释的内容替换为空格，
// 其余字节原样保留在原偏移处。结果与输入字节长度相同，供关键字/分号检测使用。
//
// 普通字面量内 '\' 是普通字符；只有 PostgreSQL 的 E'...' (E 单独成词) 内 '\' 转义下一个字节。
package store

type maskState int

const (
	stateNormal maskState = iota
	stateSingleQuote
	stateEscapeQuote
	stateDoubleQuote
	stateLineComment
	stateBlockComment
)

// MaskSQL 按标准 SQL 规则遮罩 ('' 与 "" 为转义)。
// 未闭合的字面量/注释遮罩到结尾，不报错。
func MaskSQL(sql string) string {
	n := len(sql)
	out := make([]byte, n)
	state := stateNormal

	blank := func(from, to int) {
		for k := from; k < to; k++ {
			out[k] = ' '
		}
	}

	for i := 0; i < n; {
		c := sql[i]
		var next byte
		if i+1 < n {
			next = sql[i+1]
		}

		switch state {
		case stateNormal:
			switch {
			case c == '\'':
				state = stateSingleQuote
				if escapePrefixed(sql, i) {
					state = stateEscapeQuote
				}
				blank(i, i+1)
				i++
			case c == '"':
				state = stateDoubleQuote
				blank(i, i+1)
				i++
			case c == '-' && next == '-':
				state = stateLineComment
				blank(i, i+2)
				i += 2
			case c == '/' && next == '*':
				state = stateBlockComment
				blank(i, i+2)
				i += 2
			default:
				out[i] = c
				i++
			}

		case stateSingleQuote, stateEscapeQuote, stateDoubleQuote:
			quote := byte('\'')
			if state == stateDoubleQuote {
				quote = '"'
			}
			switch {
			case state == stateEscapeQuote && c == '\\' && i+1 < n:
				blank(i, i+2)
				i += 2
			case c == quote && next == quote:
				blank(i, i+2)
				i += 2
			case c == quote:
				state = stateNormal
				blank(i, i+1)
				i++
			default:
				blank(i, i+1)
				i++
			}

		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out[i] = '\n'
			} else {
				out[i] = ' '
			}
			i++

		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				blank(i, i+2)
				i += 2
			} else {
				out[i] = ' '
				i++
			}
		}
	}
	return string(out)
}

// escapePrefixed 报告 sql[i] 处的 ' 是否紧跟在独立的 E/e 之后 (如 E'..'，而非 likE'..')。
func escapePrefixed(sql string, i int) bool {
	if i < 1 || (sql[i-1] != 'E' && sql[i-1] != 'e') {
		return false
	}
	return i < 2 || !isIdentByte(sql[i-2])
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
