package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	apperrors "github.com/multi-agent/spoolgen/pkg/errors"
)

// SampleFile 上传的 CSV/TXT 样本，首行为表头。
type SampleFile struct {
	Name string
	Body io.Reader
}

// readSample 读取样本并解码: 合法 UTF-8 原样使用 (去 BOM)，否则按 Latin-1 解码。
func readSample(op string, f *SampleFile, maxBytes int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if ext != ".csv" && ext != ".txt" {
		return "", apperrors.Reject(apperrors.ErrInvalidInput, op, CodeUnsupportedSample,
			"sample file must be .csv or .txt").WithDetail(f.Name)
	}
	raw, err := io.ReadAll(io.LimitReader(f.Body, maxBytes+1))
	if err != nil {
		return "", apperrors.Wrap(err, op, "read sample file")
	}
	if int64(len(raw)) > maxBytes {
		return "", apperrors.Reject(apperrors.ErrInvalidInput, op, CodeSampleTooLarge, "sample file is too large")
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), raw)
	if err != nil {
		return "", apperrors.Wrap(err, op, "decode sample file")
	}
	return string(out), nil
}

// sampleRecords 按 CSV 解析，至多返回表头 + limit 行。字段数不一致的行照样接受。
func sampleRecords(op, text string, limit int) ([]string, [][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, apperrors.Reject(apperrors.ErrInvalidInput, op, CodeEmptySample, "sample file is empty")
	}
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInvalidInput, op, "parse sample header: "+err.Error())
	}
	cols := make([]string, 0, len(header))
	for _, h := range header {
		if h = strings.TrimSpace(h); h != "" {
			cols = append(cols, h)
		}
	}

	rows := make([][]string, 0, limit)
	for len(rows) < limit {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrInvalidInput, op, "parse sample row: "+err.Error())
		}
		rows = append(rows, rec)
	}
	return cols, rows, nil
}
