// 包 geocode：地名 → 坐标解析服务（外部查询 + 进程内缓存 + 全局请求间隔闸门）
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"family-atlas/internal/logger"
	"family-atlas/internal/metrics"
)

// Candidate：外部服务返回的候选项，经纬度为十进制字符串
type Candidate struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Lookup：单次外部查询契约；Service 只使用第一个候选
type Lookup interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

var ErrBadStatus = errors.New("geocode: unexpected status")

// 文档注释：Nominatim 搜索客户端
// 背景：对齐 OSM Nominatim /search 接口，仅请求一个候选；使用政策要求携带可识别的 User-Agent。
// 约束：不在此处限速与缓存，由 Service 统一处理；client 为空时使用 10s 超时的默认客户端。
type NominatimClient struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

func NewNominatimClient(endpoint, userAgent string, client *http.Client) *NominatimClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &NominatimClient{endpoint: strings.TrimRight(endpoint, "/"), userAgent: userAgent, client: client}
}

// 文档注释：查询单个地名
// 返回：候选列表（可能为空）；网络错误、非 200 状态与解码失败返回错误，由上层按“无结果”降级。
func (c *NominatimClient) Search(ctx context.Context, query string) ([]Candidate, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	t0 := time.Now()
	metrics.GeocodeRequestsTotal.Inc()
	logger.L().Debug("geocode_req", "q", query)
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.GeocodeFailTotal.Inc()
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		metrics.GeocodeFailTotal.Inc()
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}
	var out []Candidate
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.GeocodeFailTotal.Inc()
		return nil, fmt.Errorf("geocode: decode: %w", err)
	}
	dur := time.Since(t0).Milliseconds()
	metrics.GeocodeDurationMs.Observe(float64(dur))
	if len(out) > 0 {
		metrics.GeocodeSuccessTotal.Inc()
	}
	logger.L().Debug("geocode_resp", "q", query, "candidates", len(out), "duration_ms", dur)
	return out, nil
}
