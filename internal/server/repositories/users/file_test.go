package users

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRepository_LoadCreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	r := NewFileRepository(path)

	got, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestFileRepository_LoadDoesNotReplaceConcurrentSave(t *testing.T) {
	ctx := context.Background()
	want := []models.UserRecord{{Username: "alice", PasswordHash: "h1"}}

	for i := 0; i < 50; i++ {
		path := filepath.Join(t.TempDir(), "users.json")
		r := NewFileRepository(path)

		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := r.Load(ctx)
				assert.NoError(t, err)
			}()
		}
		require.NoError(t, r.Save(ctx, want))
		wg.Wait()

		got, err := r.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, want, got, "iteration %d", i)
	}
}

func TestFileRepository_SaveLoadKeepsOrder(t *testing.T) {
	r := NewFileRepository(filepath.Join(t.TempDir(), "users.json"))
	ctx := context.Background()

	want := []models.UserRecord{
		{Username: "zed", PasswordHash: "h1"},
		{Username: "alice", PasswordHash: "h2"},
		{Username: "Alice", PasswordHash: "h3"},
	}
	require.NoError(t, r.Save(ctx, want))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileRepository_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	r := NewFileRepository(path)

	require.NoError(t, r.Save(context.Background(), []models.UserRecord{{Username: "alice", PasswordHash: "h"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"username\": \"alice\",\n    \"passwordHash\": \"h\"\n  }\n]", string(data))
}

func TestFileRepository_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileRepository(path).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorStorage)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data), "malformed file must not be overwritten")
}

func TestFileRepository_NullIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o600))

	got, err := NewFileRepository(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.UserRecord{}, got)
}

func TestFileRepository_SaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	r := NewFileRepository(filepath.Join(blocker, "users.json"))
	err := r.Save(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrorStorage)
}
