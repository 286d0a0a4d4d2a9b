// 包 utils：Postgres / Redis 连接工具
package utils

import (
	"family-atlas/internal/config"
	"family-atlas/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis：未启用时返回 nil，调用方据此跳过二级缓存
func OpenRedis(o config.RedisOptions) *redis.Client {
	if !o.Enabled {
		return nil
	}
	logger.L().Debug("redis_open", "addr", o.Addr(), "db", o.DB)
	return redis.NewClient(&redis.Options{Addr: o.Addr(), Password: o.Password, DB: o.DB})
}
