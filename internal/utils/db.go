package utils

import (
	"database/sql"

	"family-atlas/internal/config"
	"family-atlas/internal/logger"

	_ "github.com/lib/pq"
)

// OpenPostgres：按配置打开连接池；不在此处 Ping，由调用方决定是否探活
func OpenPostgres(o config.PostgresOptions) (*sql.DB, error) {
	db, err := sql.Open("postgres", o.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(o.MaxOpenConns)
	db.SetMaxIdleConns(o.MaxIdleConns)
	logger.L().Debug("pg_open", "host", o.Host, "db", o.DB)
	return db, nil
}
