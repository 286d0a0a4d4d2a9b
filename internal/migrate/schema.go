package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"family-atlas/internal/logger"
)

var stmts = []string{
	`CREATE TABLE IF NOT EXISTS fa_persons (
        owner_id TEXT NOT NULL,
        position INT NOT NULL,
        external_id TEXT NOT NULL,
        given_name TEXT NOT NULL DEFAULT '',
        surname TEXT NOT NULL DEFAULT '',
        sex TEXT NOT NULL DEFAULT 'U',
        birth_date TEXT NOT NULL DEFAULT '',
        birth_place TEXT NOT NULL DEFAULT '',
        death_date TEXT NOT NULL DEFAULT '',
        death_place TEXT NOT NULL DEFAULT '',
        burial_place TEXT NOT NULL DEFAULT '',
        PRIMARY KEY (owner_id, position)
    )`,
	`CREATE TABLE IF NOT EXISTS fa_family_links (
        owner_id TEXT NOT NULL,
        position INT NOT NULL,
        external_family_id TEXT NOT NULL DEFAULT '',
        husband_id TEXT NOT NULL DEFAULT '',
        wife_id TEXT NOT NULL DEFAULT '',
        child_ids TEXT[] NOT NULL DEFAULT '{}',
        PRIMARY KEY (owner_id, position)
    )`,
	`CREATE TABLE IF NOT EXISTS fa_events (
        id UUID PRIMARY KEY,
        owner_id TEXT NOT NULL,
        person_name TEXT NOT NULL,
        title TEXT NOT NULL,
        description TEXT NOT NULL,
        event_date TEXT NOT NULL,
        raw_date TEXT NOT NULL,
        place TEXT NOT NULL,
        category TEXT NOT NULL,
        latitude DOUBLE PRECISION NOT NULL,
        longitude DOUBLE PRECISION NOT NULL,
        geohash TEXT NOT NULL,
        source TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_events_owner ON fa_events(owner_id, event_date)`,
	`CREATE INDEX IF NOT EXISTS idx_events_geohash ON fa_events(geohash)`,
	`CREATE TABLE IF NOT EXISTS fa_members (
        seq BIGSERIAL,
        owner_id TEXT NOT NULL,
        id TEXT NOT NULL,
        name TEXT NOT NULL DEFAULT '',
        sex TEXT NOT NULL DEFAULT 'U',
        birth_date TEXT NOT NULL DEFAULT '',
        death_date TEXT NOT NULL DEFAULT '',
        PRIMARY KEY (owner_id, id)
    )`,
	`CREATE TABLE IF NOT EXISTS fa_relationships (
        seq BIGSERIAL PRIMARY KEY,
        owner_id TEXT NOT NULL,
        from_id TEXT NOT NULL,
        to_id TEXT NOT NULL,
        rel_type TEXT NOT NULL CHECK (rel_type IN ('parent','child','spouse'))
    )`,
	`CREATE INDEX IF NOT EXISTS idx_relationships_owner ON fa_relationships(owner_id, seq)`,
}

// 背景：首次运行自动创建所需表与索引，保障后续导入与建树查询
// 约束：使用 IF NOT EXISTS，可重复执行；任一语句失败立即返回
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	logger.L().Debug("schema_done", "statements", len(stmts))
	return nil
}
