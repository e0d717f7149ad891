package filex

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	assert.True(t, Exists(file))
	assert.True(t, Exists(dir))
	assert.False(t, Exists(filepath.Join(dir, "missing")))
}

func TestIsNotExist(t *testing.T) {
	_, err := os.Open(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, IsNotExist(err))
	assert.False(t, IsNotExist(nil))
}

func TestWriteFileAtomic_CreatesAndReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "users.json")

	require.NoError(t, WriteFileAtomic(path, []byte("[]"), 0o600))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, WriteFileAtomic(path, []byte(`[{"username":"a"}]`), 0o600))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"username":"a"}]`, string(got))

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteFileAtomic_FailsWhenTargetIsDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "users.json")
	require.NoError(t, os.Mkdir(target, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0o600))

	err := WriteFileAtomic(target, []byte("[]"), 0o600)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be cleaned up on failure")
}

func TestWriteFileExclusive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")

	require.NoError(t, WriteFileExclusive(path, []byte("[]"), 0o600))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, WriteFileAtomic(path, []byte(`[{"username":"a"}]`), 0o600))

	err = WriteFileExclusive(path, []byte("[]"), 0o600)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrExist)

	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"username":"a"}]`, string(got), "existing file must not be replaced")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteFileExclusive_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	const n = 16
	var (
		wg      sync.WaitGroup
		created atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if WriteFileExclusive(path, []byte("[]"), 0o600) == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
}
