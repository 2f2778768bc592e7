package shopstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// OpenDB opens a bun handle for the given driver. Supported drivers are
// "sqlite3" and "postgres".
func OpenDB(driver, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	switch driver {
	case "sqlite3":
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case "postgres":
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		sqldb.Close()
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// CreateSchema creates the shop tables if they do not exist yet. It is meant
// for tests and the example program; production deployments migrate out of
// band.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*Product)(nil),
		(*Customer)(nil),
		(*Order)(nil),
		(*OrderItem)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}
	return nil
}
