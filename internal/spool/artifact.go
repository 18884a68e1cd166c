package spool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/multi-agent/spoolgen/pkg/errors"
	"github.com/multi-agent/spoolgen/pkg/logger"
)

// Artifact 写出的脚本文件。
type Artifact struct {
	Path string
	Name string
	Size int64
}

// UniqueFilename control_<report>_<yyyymmdd_hhmmss_micro>_<rand8>.sql
func UniqueFilename(report string, now time.Time) string {
	base := strings.ToLower(SanitizeFilenameComponent(report, "report"))
	stamp := now.Format("20060102_150405") + fmt.Sprintf("_%06d", now.Nanosecond()/1000)
	rand := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("control_%s_%s_%s.sql", base, stamp, rand)
}

// Writer 把脚本写入输出目录。
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter 创建；dir 不存在时在首次写入时创建。
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// Write 渲染并写出脚本，记录 artifact_written。
func (w *Writer) Write(ctx context.Context, s Script) (*Artifact, error) {
	const op = "Spool.Write"
	if s.GeneratedAt.IsZero() {
		s.GeneratedAt = w.now()
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, apperrors.Wrap(err, op, "create output dir")
	}
	name := UniqueFilename(s.ReportName, w.now())
	path := filepath.Join(w.dir, name)

	content := s.Render()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, apperrors.Wrap(err, op, "create artifact")
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, apperrors.Wrap(err, op, "write artifact")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, apperrors.Wrap(err, op, "close artifact")
	}

	art := &Artifact{Path: path, Name: name, Size: int64(len(content))}
	logger.FromContext(ctx).Info("artifact_written",
		logger.FieldFile, path,
		logger.FieldBytes, art.Size,
		logger.FieldReport, s.ReportName,
	)
	return art, nil
}

// Remove 删除已下发的脚本，错误忽略。
func (a *Artifact) Remove() {
	if a != nil && a.Path != "" {
		_ = os.Remove(a.Path)
	}
}
