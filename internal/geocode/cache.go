package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"family-atlas/internal/logger"
	"family-atlas/internal/model"

	"github.com/redis/go-redis/v9"
)

// 文档注释：进程内缓存（归一化地名 → 坐标或确定的缺失）
// 约束：无容量上限、无过期，生命周期与进程一致；nil 值表示已确认无结果，同样视为命中。
type memCache struct {
	mu   sync.RWMutex
	dict map[string]*model.Coordinate
}

func newMemCache() *memCache {
	return &memCache{dict: make(map[string]*model.Coordinate)}
}

func (c *memCache) get(k string) (*model.Coordinate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.dict[k]
	return v, ok
}

// setIfAbsent 保留先写入的值
func (c *memCache) setIfAbsent(k string, v *model.Coordinate) *model.Coordinate {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.dict[k]; ok {
		return old
	}
	c.dict[k] = v
	return v
}

func (c *memCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.dict)
}

// 文档注释：Redis 二级缓存
// 背景：多进程/重启之间复用确定的查询结果，减少对外部服务的重复请求。
// 约束：值为坐标 JSON 或字面量 null；Redis 不可用时静默降级为未命中，不影响主流程。
type remoteCache struct {
	rc  *redis.Client
	ttl time.Duration
}

const nullValue = "null"

func remoteKey(norm string) string { return "geocode:" + norm }

func (r *remoteCache) get(ctx context.Context, norm string) (*model.Coordinate, bool) {
	if r == nil || r.rc == nil {
		return nil, false
	}
	s, err := r.rc.Get(ctx, remoteKey(norm)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L().Debug("geocode_redis_get_error", "err", err)
		}
		return nil, false
	}
	if s == nullValue {
		return nil, true
	}
	var c model.Coordinate
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return nil, false
	}
	return &c, true
}

func (r *remoteCache) set(ctx context.Context, norm string, c *model.Coordinate) {
	if r == nil || r.rc == nil {
		return
	}
	v := nullValue
	if c != nil {
		b, _ := json.Marshal(c)
		v = string(b)
	}
	if err := r.rc.Set(ctx, remoteKey(norm), v, r.ttl).Err(); err != nil {
		logger.L().Debug("geocode_redis_set_error", "err", err)
	}
}
