// handler.go: REST API handlers。
package httpapi

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/multi-agent/spoolgen/internal/service"
	pkgerr "github.com/multi-agent/spoolgen/pkg/errors"
	"github.com/multi-agent/spoolgen/pkg/util"
)

// registerRoutes 注册 API 路由。
func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.healthz)

	api := s.router.Group("/api/v1")

	api.GET("/fs/roots", s.fsRoots)
	api.GET("/fs/list", s.fsList)

	api.POST("/export-path/validate", s.validateExportPath)
	api.POST("/sql/validate", s.validateSQL)

	api.POST("/spool/preview", s.spoolPreview)
	api.POST("/spool", s.spoolGenerate)

	admin := api.Group("/admin", adminGuard(s.opts.AdminToken))
	admin.POST("/reload", s.reload)
}

func (s *Server) healthz(c *gin.Context) {
	set := s.svc.Spool.ExportSettings()
	success(c, gin.H{
		"status":            "ok",
		"version":           s.opts.Version,
		"export_path_style": set.Style.String(),
		"deny_prefixes":     set.Deny.Len(),
		"probe_writable":    set.ProbeWritable,
		"database":          s.svc.Spool.DatabaseAvailable(),
	})
}

// ========================================
// 目录浏览
// ========================================

func (s *Server) fsRoots(c *gin.Context) {
	success(c, s.svc.Browse.Roots(s.opts.DocsDir))
}

func (s *Server) fsList(c *gin.Context) {
	listing, err := s.svc.Browse.List(c.Query("path"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, listing)
}

// ========================================
// 校验
// ========================================

func (s *Server) validateExportPath(c *gin.Context) {
	var req struct {
		ExportPath string `json:"export_path" form:"export_path"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, codeBadRequest, err.Error())
		return
	}
	normalized, err := s.svc.Spool.ValidateExportPath(req.ExportPath)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"export_path": normalized})
}

func (s *Server) validateSQL(c *gin.Context) {
	var req struct {
		SQL   string `json:"sql_query" form:"sql_query"`
		Limit int    `json:"limit" form:"limit"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, codeBadRequest, err.Error())
		return
	}
	res, err := s.svc.Spool.ValidateSQL(req.SQL, req.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, res)
}

// ========================================
// 预览 / 生成
// ========================================

// spoolForm JSON 与 form/multipart 共用。columns 可重复，也可逗号分隔。
type spoolForm struct {
	SourceMode  string   `json:"source_mode" form:"source_mode"`
	SQL         string   `json:"sql_query" form:"sql_query"`
	TableName   string   `json:"table_name" form:"table_name"`
	Columns     []string `json:"columns" form:"columns"`
	ExportPath  string   `json:"export_path" form:"export_path"`
	ReportName  string   `json:"report_name" form:"report_name"`
	PreviewRows int      `json:"preview_rows" form:"preview_rows"`
}

func (f *spoolForm) columns() []string {
	var out []string
	for _, c := range f.Columns {
		out = append(out, util.SplitNonEmpty(c, ",")...)
	}
	return out
}

// sampleFile 取可选上传文件 "file"；返回的 closer 由调用方关闭。
func sampleFile(c *gin.Context) (*service.SampleFile, func(), error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, func() {}, nil
	}
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, pkgerr.Wrap(pkgerr.ErrInvalidInput, "HTTP.sampleFile", err.Error())
	}
	if strings.TrimSpace(fh.Filename) == "" {
		return nil, func() {}, nil
	}
	var f multipart.File
	if f, err = fh.Open(); err != nil {
		return nil, func() {}, pkgerr.Wrap(err, "HTTP.sampleFile", "open upload")
	}
	return &service.SampleFile{Name: fh.Filename, Body: f}, func() { _ = f.Close() }, nil
}

func (s *Server) spoolPreview(c *gin.Context) {
	var req spoolForm
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, codeBadRequest, err.Error())
		return
	}
	sample, closeSample, err := sampleFile(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer closeSample()

	res, err := s.svc.Spool.Preview(c.Request.Context(), service.PreviewRequest{
		Mode:   service.SourceMode(req.SourceMode),
		SQL:    req.SQL,
		Sample: sample,
		Rows:   req.PreviewRows,
	})
	if err != nil {
		fail(c, err)
		return
	}
	success(c, res)
}

// spoolGenerate 以附件形式返回生成的 .sql，响应写完后删除文件。
func (s *Server) spoolGenerate(c *gin.Context) {
	var req spoolForm
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, codeBadRequest, err.Error())
		return
	}
	sample, closeSample, err := sampleFile(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer closeSample()

	art, err := s.svc.Spool.Generate(c.Request.Context(), service.SpoolRequest{
		Mode:       service.SourceMode(req.SourceMode),
		SQL:        req.SQL,
		Table:      strings.TrimSpace(req.TableName),
		Columns:    req.columns(),
		Sample:     sample,
		ExportPath: req.ExportPath,
		ReportName: req.ReportName,
		RequestID:  c.GetString(ctxRequestID),
	})
	if err != nil {
		fail(c, err)
		return
	}
	defer art.Remove()

	c.Header("Content-Type", "application/sql")
	c.FileAttachment(art.Path, art.Name)
}

// ========================================
// 管理
// ========================================

func (s *Server) reload(c *gin.Context) {
	if s.opts.Reload == nil {
		fail(c, pkgerr.Reject(pkgerr.ErrUnavailable, "HTTP.reload", "RELOAD_UNAVAILABLE", "reload is not configured"))
		return
	}
	if err := s.opts.Reload(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	set := s.svc.Spool.ExportSettings()
	success(c, gin.H{
		"export_path_style": set.Style.String(),
		"deny_prefixes":     set.Deny.Prefixes(),
		"probe_writable":    set.ProbeWritable,
	})
}
