// cmd/server: 导出脚本生成服务主入口。
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/multi-agent/spoolgen/internal/config"
	"github.com/multi-agent/spoolgen/internal/database"
	"github.com/multi-agent/spoolgen/internal/httpapi"
	"github.com/multi-agent/spoolgen/internal/pathguard"
	"github.com/multi-agent/spoolgen/internal/service"
	"github.com/multi-agent/spoolgen/internal/spool"
	"github.com/multi-agent/spoolgen/internal/store"
	"github.com/multi-agent/spoolgen/pkg/logger"
	"github.com/multi-agent/spoolgen/pkg/util"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	logger.Init(cfg.AppEnv, cfg.LogLevel)
	if cfg.LogDir != "" {
		if err := logger.InitWithFile(cfg.LogDir, cfg.LogLevel); err != nil {
			logger.Warn("log file unavailable, stdout only", logger.FieldError, err)
		}
	}
	defer logger.ShutdownFileHandler()

	exportSettings, err := cfg.ExportSettings()
	if err != nil {
		logger.Fatal("invalid export path style", logger.FieldError, err)
	}

	// 数据库可选: 未配置时 SQL 模式返回 DB_UNAVAILABLE，其余功能照常
	pool, err := database.NewPool(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		logger.Warn("database not configured, sql sampling disabled")
	case err != nil:
		logger.Fatal("database init failed", logger.FieldError, err)
	default:
		defer pool.Close()
	}

	queries, err := store.NewDBQueryStore(pool, cfg.QueryTimeout)
	if err != nil {
		logger.Fatal("query store init failed", logger.FieldError, err)
	}
	svc := service.New(
		queries,
		pathguard.New(exportSettings),
		pathguard.New(cfg.BrowseSettings()),
		spool.NewWriter(cfg.OutputDir),
		service.Options{
			SampleRows:     cfg.SampleRows,
			PreviewRows:    cfg.PreviewRows,
			PreviewMaxRows: cfg.PreviewMaxRows,
			SampleMaxBytes: int64(cfg.SampleMaxUpload),
		},
	)

	reload := func(ctx context.Context) error {
		next := config.Load()
		export, err := next.ExportSettings()
		if err != nil {
			return err
		}
		svc.Reload(ctx, export, next.BrowseSettings())
		return nil
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	util.SafeGo(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if err := reload(ctx); err != nil {
					logger.Error("reload failed, keeping current policy", logger.FieldError, err)
				}
			}
		}
	})

	logger.Info("spoolgen starting",
		logger.FieldVersion, version,
		logger.FieldStyle, exportSettings.Style.String(),
		logger.FieldDeny, exportSettings.Deny.Len(),
		logger.FieldProbe, exportSettings.ProbeWritable,
	)

	srv := httpapi.NewServer(svc, httpapi.Options{
		DocsDir:        util.FirstNonEmpty(cfg.BaseDocsDir, defaultDocsDir()),
		MaxUploadBytes: int64(cfg.SampleMaxUpload),
		Reload:         reload,
		AdminToken:     cfg.AdminToken,
		Version:        version,
	})
	if err := srv.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
		logger.Fatal("server failed", logger.FieldError, err)
	}
	logger.Info("shut down")
}

// defaultDocsDir 用户主目录下的 Documents。
func defaultDocsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Documents")
}
