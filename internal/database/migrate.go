package database

import (
	"context"
	"database/sql"
	"fmt"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS seat_assignments (
		id       BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		ident    VARCHAR(191) NOT NULL,
		roll     VARCHAR(64)  NOT NULL,
		branch   VARCHAR(32)  NOT NULL,
		year     INT          NOT NULL,
		room     VARCHAR(128) NOT NULL,
		location VARCHAR(255) NOT NULL,
		UNIQUE KEY uq_seat_assignments_ident (ident),
		KEY idx_seat_assignments_branch_year (branch, year)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS seat_meta (
		name  VARCHAR(64)  NOT NULL PRIMARY KEY,
		value VARCHAR(255) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS seat_assignments (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		ident    TEXT    NOT NULL UNIQUE,
		roll     TEXT    NOT NULL,
		branch   TEXT    NOT NULL,
		year     INTEGER NOT NULL,
		room     TEXT    NOT NULL,
		location TEXT    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_seat_assignments_branch_year ON seat_assignments (branch, year)`,
	`CREATE TABLE IF NOT EXISTS seat_meta (
		name  TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

// Migrate creates the seat tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	stmts := mysqlSchema
	if d == SQLite {
		stmts = sqliteSchema
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
