package users

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/server/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestSQLRepository_Load_Postgres(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewSQLRepository(db, DialectPostgres)

	mock.ExpectQuery(`SELECT username, password_hash FROM users ORDER BY position`).
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash"}).
			AddRow("alice", "h1").
			AddRow("bob", "h2"))

	got, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.UserRecord{{Username: "alice", PasswordHash: "h1"}, {Username: "bob", PasswordHash: "h2"}}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_Load_EmptyAndError(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewSQLRepository(db, DialectPostgres)

	mock.ExpectQuery(`SELECT username`).WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash"}))
	got, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.UserRecord{}, got)

	mock.ExpectQuery(`SELECT username`).WillReturnError(errors.New("boom"))
	_, err = r.Load(context.Background())
	assert.ErrorIs(t, err, common.ErrorStorage)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_Save_Postgres(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewSQLRepository(db, DialectPostgres)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM users`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO users \(position, username, password_hash\) VALUES \(\$1, \$2, \$3\)`).
		WithArgs(0, "alice", "h1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(1, "bob", "h2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := r.Save(context.Background(), []models.UserRecord{{Username: "alice", PasswordHash: "h1"}, {Username: "bob", PasswordHash: "h2"}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_Save_RollbackOnInsertError(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewSQLRepository(db, DialectPostgres)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM users`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := r.Save(context.Background(), []models.UserRecord{{Username: "alice", PasswordHash: "h1"}})
	assert.ErrorIs(t, err, common.ErrorStorage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_RunMigrations(t *testing.T) {
	db, _ := newMockDB(t)

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, NewSQLRepository(db, DialectPostgres).RunMigrations(context.Background()))
	assert.Equal(t, ".", gotDir)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.EqualError(t, NewSQLRepository(db, DialectPostgres).RunMigrations(context.Background()), "boom")
}

func TestSQLRepository_SQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.db")

	r, err := OpenSQLRepository(ctx, DialectSQLite, path)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	want := []models.UserRecord{
		{Username: "zed", PasswordHash: "h1"},
		{Username: "alice", PasswordHash: "h2"},
	}
	require.NoError(t, r.Save(ctx, want))

	got, err = r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want = append(want, models.UserRecord{Username: "bob", PasswordHash: "h3"})
	require.NoError(t, r.Save(ctx, want))

	got, err = r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDialect_InsertQuery(t *testing.T) {
	assert.Contains(t, DialectPostgres.insertQuery(), "$1")
	assert.Contains(t, DialectSQLite.insertQuery(), "?")
	assert.Equal(t, "pgx", DialectPostgres.driver())
	assert.Equal(t, "sqlite", DialectSQLite.driver())
}
