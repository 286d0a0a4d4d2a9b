// 包 logger：指标端点的抓取日志中间件
package logger

import (
	"log/slog"
	"net/http"
	"time"
)

// scrapeRecorder：记录指标响应的状态码与负载大小
type scrapeRecorder struct {
	http.ResponseWriter
	status  int
	payload int
}

func (w *scrapeRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *scrapeRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.payload += n
	return n, err
}

// 文档注释：指标抓取日志
// 背景：导入期间 /metrics 只被抓取端访问；记录抓取端标识与负载大小，便于确认抓取是否覆盖整次导入。
// 约束：成功抓取为 debug 级别；状态码 >= 400 时升为 warn。
func ScrapeLogger(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &scrapeRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			lvl := slog.LevelDebug
			if rec.status >= http.StatusBadRequest {
				lvl = slog.LevelWarn
			}
			l.Log(r.Context(), lvl, "metrics_scrape",
				"path", r.URL.Path,
				"status", rec.status,
				"payload_bytes", rec.payload,
				"scraper", r.UserAgent(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
