package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"family-atlas/internal/logger"
	"family-atlas/internal/metrics"
)

// 文档注释：导入期间暴露 /metrics
// 约束：addr 为空时不启动；返回的 stop 函数在命令结束时关闭服务。
func startMetricsServer(addr string) (stop func()) {
	if addr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           logger.ScrapeLogger(logger.L())(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Error("metrics_listen_error", "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
