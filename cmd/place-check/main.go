// 批处理工具：从文件或标准输入读取地名（每行一个），经同一地理编码服务批量解析并输出结果
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"family-atlas/internal/config"
	"family-atlas/internal/geocode"
	"family-atlas/internal/logger"
	"family-atlas/internal/model"
	"family-atlas/internal/placenorm"
	"family-atlas/internal/utils"
)

type resolver interface {
	ResolveAll(ctx context.Context, places []string, progress func(done, total int)) map[string]*model.Coordinate
}

// placeResult：每个输入地名一行 JSON
type placeResult struct {
	Place      string            `json:"place"`
	Normalized string            `json:"normalized"`
	Coordinate *model.Coordinate `json:"coordinate"`
}

type summary struct {
	Total      int `json:"total"`
	Unique     int `json:"unique"`
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
}

// readPlaces 跳过空行与 # 注释行
func readPlaces(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024), 1024*1024)
	var out []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// 文档注释：批量解析并逐行输出
// 约束：输出顺序与去重后的输入顺序一致；进度按去重地名计数。
// 异常：写输出失败时停止并返回已统计的摘要与首个错误。
func check(ctx context.Context, places []string, svc resolver, w io.Writer) (summary, error) {
	res := svc.ResolveAll(ctx, places, func(done, total int) {
		if done == total || done%25 == 0 {
			logger.L().Info("place_check_progress", "done", done, "total", total)
		}
	})
	enc := json.NewEncoder(w)
	s := summary{Total: len(places), Unique: len(res)}
	seen := make(map[string]struct{}, len(res))
	for _, p := range places {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		norm, _ := placenorm.Normalize(p)
		c := res[p]
		if c != nil {
			s.Resolved++
		} else {
			s.Unresolved++
		}
		if err := enc.Encode(placeResult{Place: p, Normalized: norm, Coordinate: c}); err != nil {
			return s, fmt.Errorf("write result for %q: %w", p, err)
		}
	}
	return s, nil
}

func main() {
	l := logger.Setup()
	l.Info("place_check_start")
	cfg, err := config.Load(".env", filepath.Join("data", "env", ".env"))
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}

	var in io.Reader = os.Stdin
	if p := os.Getenv("PLACE_CHECK_INPUT"); p != "" {
		f, err := os.Open(p)
		if err != nil {
			l.Error("input_open_error", "err", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}
	places, err := readPlaces(in)
	if err != nil {
		l.Error("input_read_error", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	rc := utils.OpenRedis(cfg.Redis)
	if rc != nil {
		defer rc.Close()
	}
	client := geocode.NewNominatimClient(cfg.Geocode.Endpoint, cfg.Geocode.UserAgent, &http.Client{Timeout: cfg.Geocode.Timeout()})
	svc := geocode.New(client, geocode.Options{
		Interval: cfg.Geocode.Interval(),
		Timeout:  cfg.Geocode.Timeout(),
		Redis:    rc,
		RedisTTL: cfg.Geocode.RedisTTL(),
	})
	s, err := check(ctx, places, svc, os.Stdout)
	if err != nil {
		l.Error("output_write_error", "err", err)
		os.Exit(1)
	}
	l.Info("place_check_done", "total", s.Total, "unique", s.Unique, "resolved", s.Resolved, "unresolved", s.Unresolved, "lookups", svc.Lookups())
}
