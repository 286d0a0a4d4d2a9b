// 包 config：集中读取环境变量配置（支持 .env），供 CLI 与批处理工具共用
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// PostgresOptions：沿用 PG_* 变量命名
type PostgresOptions struct {
	Host         string `env:"PG_HOST" envDefault:"localhost"`
	Port         string `env:"PG_PORT" envDefault:"5432"`
	User         string `env:"PG_USER" envDefault:"postgres"`
	Password     string `env:"PG_PASSWORD"`
	DB           string `env:"PG_DB" envDefault:"familyatlas"`
	SSLMode      string `env:"PG_SSLMODE" envDefault:"disable"`
	MaxOpenConns int    `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int    `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
}

// DSN 生成 postgres:// 连接串；用户名与密码经 URL 转义，含 @ / # 等字符时不会改变主机与库名
func (p PostgresOptions) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.User(p.User),
		Host:     net.JoinHostPort(p.Host, p.Port),
		Path:     "/" + p.DB,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	if p.Password != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	return u.String()
}

type RedisOptions struct {
	Enabled  bool   `env:"GEOCODE_REDIS_ENABLED" envDefault:"false"`
	Host     string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

func (r RedisOptions) Addr() string { return net.JoinHostPort(r.Host, r.Port) }

// 文档注释：地理编码配置
// 约束：外部服务的使用政策要求请求间隔不低于 1s，默认 1100ms；UserAgent 为必须携带的客户端标识。
type GeocodeOptions struct {
	Endpoint   string `env:"GEOCODE_ENDPOINT" envDefault:"https://nominatim.openstreetmap.org"`
	UserAgent  string `env:"GEOCODE_USER_AGENT" envDefault:"family-atlas/1.0"`
	IntervalMs int    `env:"GEOCODE_INTERVAL_MS" envDefault:"1100"`
	TimeoutMs  int    `env:"GEOCODE_TIMEOUT_MS" envDefault:"10000"`
	RedisTTLS  int    `env:"GEOCODE_REDIS_TTL_S" envDefault:"2592000"`
}

const (
	minIntervalMs     = 1000
	defaultIntervalMs = 1100
)

// Interval 低于 1000ms（含 0 与负数）的配置回落到默认 1100ms；闸门只能在测试中经 geocode.Options 直接关闭
func (g GeocodeOptions) Interval() time.Duration {
	ms := g.IntervalMs
	if ms < minIntervalMs {
		ms = defaultIntervalMs
	}
	return time.Duration(ms) * time.Millisecond
}

func (g GeocodeOptions) Timeout() time.Duration {
	return time.Duration(g.TimeoutMs) * time.Millisecond
}

func (g GeocodeOptions) RedisTTL() time.Duration {
	return time.Duration(g.RedisTTLS) * time.Second
}

type Configuration struct {
	Postgres    PostgresOptions
	Redis       RedisOptions
	Geocode     GeocodeOptions
	MetricsAddr string `env:"METRICS_ADDR"`
}

// 文档注释：加载配置
// 背景：先加载存在的 .env 文件（不存在时忽略），再由环境变量解析结构体；环境变量优先于 .env。
func Load(envFiles ...string) (*Configuration, error) {
	var existing []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("load env files: %w", err)
		}
	}
	c := &Configuration{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}
