package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"path/filepath"

	"family-atlas/internal/config"
	"family-atlas/internal/geocode"
	"family-atlas/internal/logger"
	"family-atlas/internal/migrate"
	"family-atlas/internal/model"
	"family-atlas/internal/store"
	"family-atlas/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "family-atlas",
		Short:         "Genealogy import, geocoding and family tree tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newImportCmd(), newTreeCmd(), newEventsCmd(), newMemberCmd(), newRelationCmd(), newGeocodeCmd(), newMigrateCmd())
	return cmd
}

// loadConfig 依次尝试工作目录与 data/env 下的 .env
func loadConfig() (*config.Configuration, error) {
	return config.Load(".env", filepath.Join("data", "env", ".env"))
}

func openDB(ctx context.Context, cfg *config.Configuration) (*sql.DB, error) {
	db, err := utils.OpenPostgres(cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.L().Info("db_open_ok", "host", cfg.Postgres.Host)
	return db, nil
}

// repository：读取与在线维护命令所需的持久化方法，store.Store 与 store.Memory 均满足
type repository interface {
	LoadGenealogy(ctx context.Context, ownerID string) ([]model.Person, []model.FamilyLink, error)
	LoadMembers(ctx context.Context, ownerID string) ([]model.Member, error)
	LoadRelationships(ctx context.Context, ownerID string) ([]model.Relationship, error)
	ListEvents(ctx context.Context, ownerID string) ([]model.Event, error)
	AddMember(ctx context.Context, ownerID string, m model.Member) error
	AddRelationship(ctx context.Context, ownerID string, r model.Relationship) error
}

// openRepository 打开 Postgres 仓库并确保表结构存在；返回的 closer 由调用方 defer
var openRepository = func(ctx context.Context, cfg *config.Configuration) (repository, func(), error) {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store.AttachDB(db), func() { _ = db.Close() }, nil
}

// 文档注释：装配地理编码服务
// 背景：每个进程只构造一个 Service；Redis 未启用或不可达时只用进程内缓存。
// 返回：服务与可能为 nil 的 Redis 客户端（调用方负责关闭）。
func newGeocoder(ctx context.Context, cfg *config.Configuration) (*geocode.Service, *redis.Client) {
	rc := utils.OpenRedis(cfg.Redis)
	if rc == nil {
		logger.L().Info("redis_disabled")
	} else if err := rc.Ping(ctx).Err(); err != nil {
		logger.L().Warn("redis_ping_error", "err", err)
	} else {
		logger.L().Info("redis_ping_ok")
	}
	client := geocode.NewNominatimClient(cfg.Geocode.Endpoint, cfg.Geocode.UserAgent, &http.Client{Timeout: cfg.Geocode.Timeout()})
	svc := geocode.New(client, geocode.Options{
		Interval: cfg.Geocode.Interval(),
		Timeout:  cfg.Geocode.Timeout(),
		Redis:    rc,
		RedisTTL: cfg.Geocode.RedisTTL(),
	})
	return svc, rc
}
