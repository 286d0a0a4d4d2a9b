package geocode

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"family-atlas/internal/logger"
	"family-atlas/internal/metrics"
	"family-atlas/internal/model"
	"family-atlas/internal/placenorm"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultInterval = 1100 * time.Millisecond
	DefaultTimeout  = 10 * time.Second
)

// Options：Service 构造参数；Interval 为 0 时关闭间隔闸门（仅用于测试）
type Options struct {
	Interval time.Duration
	Timeout  time.Duration
	Redis    *redis.Client
	RedisTTL time.Duration
}

// 文档注释：地理编码服务
// 背景：缓存与请求间隔闸门由同一个显式构造的实例持有；生产进程只持有一个长生命周期实例，测试可各自新建。
// 约束：
// - 闸门为 burst=1 的令牌桶，保证任意两次外部请求的间隔不小于 Interval，并发调用方在此排队；
// - 同一归一化地名的并发请求经 singleflight 合并为一次外部查询；
// - 成功与失败都会缓存，进程内不重试。
type Service struct {
	lookup  Lookup
	limiter *rate.Limiter
	timeout time.Duration
	cache   *memCache
	remote  *remoteCache
	group   singleflight.Group
	lookups atomic.Int64
}

func New(lookup Lookup, o Options) *Service {
	lim := rate.NewLimiter(rate.Inf, 1)
	if o.Interval > 0 {
		lim = rate.NewLimiter(rate.Every(o.Interval), 1)
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	s := &Service{lookup: lookup, limiter: lim, timeout: o.Timeout, cache: newMemCache()}
	if o.Redis != nil {
		ttl := o.RedisTTL
		if ttl <= 0 {
			ttl = 30 * 24 * time.Hour
		}
		s.remote = &remoteCache{rc: o.Redis, ttl: ttl}
	}
	return s
}

// Lookups 返回已发出的外部查询次数（含回退查询）
func (s *Service) Lookups() int64 { return s.lookups.Load() }

// CacheSize 返回进程内缓存条目数
func (s *Service) CacheSize() int { return s.cache.len() }

// 文档注释：解析单个地名
// 背景：先经 PlaceNormalizer 归一化（无效地名直接返回 nil，不发请求），再依次查进程内缓存、Redis、外部服务。
// 返回：首个候选的坐标；无结果、网络错误或超时均返回 nil。
func (s *Service) Resolve(ctx context.Context, place string) *model.Coordinate {
	norm, ok := placenorm.Normalize(place)
	if !ok {
		logger.L().Debug("geocode_skip_placeholder", "place", place)
		return nil
	}
	if c, ok := s.cache.get(norm); ok {
		metrics.GeocodeCacheTotal.WithLabelValues("memory", "hit").Inc()
		return c
	}
	v, _, _ := s.group.Do(norm, func() (any, error) {
		if c, ok := s.cache.get(norm); ok {
			return c, nil
		}
		metrics.GeocodeCacheTotal.WithLabelValues("memory", "miss").Inc()
		if c, ok := s.remote.get(ctx, norm); ok {
			metrics.GeocodeCacheTotal.WithLabelValues("redis", "hit").Inc()
			return s.cache.setIfAbsent(norm, c), nil
		}
		c, definitive := s.resolveRemote(ctx, norm)
		c = s.cache.setIfAbsent(norm, c)
		if definitive {
			s.remote.set(ctx, norm, c)
		}
		return c, nil
	})
	c, _ := v.(*model.Coordinate)
	return c
}

// 文档注释：外部查询 + 城市/国家回退
// 背景：原始地名无结果且多于两段时，仅用最后两段再查一次。
// 返回：definitive 表示两次查询均未出现网络错误，结果可写入跨进程缓存。
func (s *Service) resolveRemote(ctx context.Context, norm string) (*model.Coordinate, bool) {
	c, err := s.attempt(ctx, norm)
	if c != nil {
		return c, true
	}
	definitive := err == nil
	segs := placenorm.Segments(norm)
	if len(segs) > 2 {
		fb := strings.Join(segs[len(segs)-2:], ", ")
		metrics.GeocodeFallbackTotal.Inc()
		logger.L().Debug("geocode_fallback", "place", norm, "query", fb)
		c2, err2 := s.attempt(ctx, fb)
		if c2 != nil {
			return c2, true
		}
		definitive = definitive && err2 == nil
	}
	logger.L().Info("geocode_unresolved", "place", norm)
	return nil, definitive
}

func (s *Service) attempt(ctx context.Context, q string) (*model.Coordinate, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		logger.L().Warn("geocode_gate_error", "q", q, "err", err)
		return nil, err
	}
	s.lookups.Add(1)
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	cands, err := s.lookup.Search(cctx, q)
	if err != nil {
		logger.L().Warn("geocode_lookup_error", "q", q, "err", err)
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(cands[0].Lat), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(cands[0].Lon), 64)
	if err1 != nil || err2 != nil {
		logger.L().Debug("geocode_bad_candidate", "q", q, "lat", cands[0].Lat, "lon", cands[0].Lon)
		return nil, nil
	}
	return &model.Coordinate{Lat: lat, Lon: lon}, nil
}

// 文档注释：批量解析
// 背景：输入按首次出现顺序去重后顺序处理；闸门使并行对单一外部端点没有收益。
// 约束：每处理完一个地名（无论成败）回调 progress(已完成数, 去重总数)；返回以原始输入字符串为键。
func (s *Service) ResolveAll(ctx context.Context, places []string, progress func(done, total int)) map[string]*model.Coordinate {
	seen := make(map[string]struct{}, len(places))
	uniq := make([]string, 0, len(places))
	for _, p := range places {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		uniq = append(uniq, p)
	}
	out := make(map[string]*model.Coordinate, len(uniq))
	for i, p := range uniq {
		out[p] = s.Resolve(ctx, p)
		if progress != nil {
			progress(i+1, len(uniq))
		}
	}
	logger.L().Debug("geocode_batch_done", "unique", len(uniq), "lookups", s.Lookups())
	return out
}
