package tasks

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenSQLite opens a sqlite backed bun.DB. The shim resolves to the CGO-free
// modernc driver, so `file::memory:?cache=shared` works for tests.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open sqlite database")
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// OpenPostgres opens a postgres backed bun.DB using bun's companion driver
func OpenPostgres(dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// CreateSchema bootstraps the users and tasks tables. Idempotent, safe to run
// on every startup. The unique email index is part of the model definition and
// is what enforces the single-account-per-email rule under concurrent writes.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create users table")
	}

	if _, err := db.NewCreateTable().
		Model((*Task)(nil)).
		IfNotExists().
		ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create tasks table")
	}

	if _, err := db.NewCreateIndex().
		Model((*Task)(nil)).
		IfNotExists().
		Index("idx_tasks_user_id").
		Column("user_id").
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create tasks index")
	}

	return nil
}
