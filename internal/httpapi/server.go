// Package httpapi 提供导出脚本生成的 HTTP 接口 (gin)。
package httpapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/multi-agent/spoolgen/internal/service"
	pkgerr "github.com/multi-agent/spoolgen/pkg/errors"
	"github.com/multi-agent/spoolgen/pkg/logger"
	"github.com/multi-agent/spoolgen/pkg/util"
)

// Options 服务选项。
type Options struct {
	DocsDir        string                          // 目录浏览的 "Documents" 根
	MaxUploadBytes int64                           // multipart 内存上限
	Reload         func(ctx context.Context) error // 重新加载策略；nil 时 reload 接口返回 503
	AdminToken     string                          // 管理接口令牌；为空时只允许回环地址
	Version        string
}

// Server HTTP 服务。
type Server struct {
	router *gin.Engine
	svc    *service.Service
	opts   Options
}

// NewServer 创建服务并注册路由。
func NewServer(svc *service.Service, opts Options) *Server {
	r := gin.New()
	if opts.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = opts.MaxUploadBytes
	}
	r.Use(requestID(), accessLog(), recovery())
	s := &Server{router: r, svc: svc, opts: opts}
	s.registerRoutes()
	return s
}

// Engine 返回 Gin 引擎。
func (s *Server) Engine() *gin.Engine { return s.router }

// ListenAndServe 启动 HTTP 服务，ctx 取消后优雅关闭 (给活跃请求 5 秒)。
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	util.SafeGo(func() {
		<-ctx.Done()
		logger.Info("http: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http: shutdown error", logger.FieldError, err)
			return
		}
		logger.Info("http: shutdown completed")
	})

	logger.Info("http: listening", logger.FieldAddr, addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return pkgerr.Wrap(err, "Server.ListenAndServe", "listen")
	}
	return nil
}
