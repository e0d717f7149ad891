package users

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/dbx"
	"github.com/dmitrijs2005/fileshare/internal/server/migrations"
	"github.com/dmitrijs2005/fileshare/internal/server/models"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Dialect selects SQL placeholder style and goose dialect.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func (d Dialect) driver() string {
	if d == DialectSQLite {
		return "sqlite"
	}
	return "pgx"
}

func (d Dialect) goose() string {
	if d == DialectSQLite {
		return "sqlite3"
	}
	return "pgx"
}

func (d Dialect) insertQuery() string {
	if d == DialectSQLite {
		return `INSERT INTO users (position, username, password_hash) VALUES (?, ?, ?)`
	}
	return `INSERT INTO users (position, username, password_hash) VALUES ($1, $2, $3)`
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// SQLRepository stores one row per user; position keeps insertion order.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLRepository(db *sql.DB, dialect Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// OpenSQLRepository opens the database for dialect, checks connectivity and
// applies the embedded migrations.
func OpenSQLRepository(ctx context.Context, dialect Dialect, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(dialect.driver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	r := NewSQLRepository(db, dialect)
	if err := r.RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return r, nil
}

// RunMigrations applies the embedded goose migrations.
func (r *SQLRepository) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(r.dialect.goose()); err != nil {
		return err
	}
	return gooseUpContext(ctx, r.db, ".")
}

func (r *SQLRepository) Load(ctx context.Context) ([]models.UserRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username, password_hash FROM users ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrorStorage, err)
	}
	defer rows.Close()

	records := []models.UserRecord{}
	for rows.Next() {
		var u models.UserRecord
		if err := rows.Scan(&u.Username, &u.PasswordHash); err != nil {
			return nil, fmt.Errorf("%w: db error: %w", common.ErrorStorage, err)
		}
		records = append(records, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrorStorage, err)
	}
	return records, nil
}

// Save replaces the table contents with records in one transaction.
func (r *SQLRepository) Save(ctx context.Context, records []models.UserRecord) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
			return err
		}
		for i, u := range records {
			if _, err := tx.ExecContext(ctx, r.dialect.insertQuery(), i, u.Username, u.PasswordHash); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: db error: %w", common.ErrorStorage, err)
	}
	return nil
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}
