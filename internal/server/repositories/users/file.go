package users

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/filex"
	"github.com/dmitrijs2005/fileshare/internal/server/models"
)

// FileRepository keeps users in a pretty-printed JSON array on disk.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load reads the store, creating it with an empty list when absent. The
// create step never replaces a file written concurrently by Save or by
// another Load.
func (r *FileRepository) Load(ctx context.Context) ([]models.UserRecord, error) {
	records, err := r.read()
	if !filex.IsNotExist(err) {
		return records, err
	}

	empty := []models.UserRecord{}
	data, err := encodeRecords(empty)
	if err != nil {
		return nil, err
	}

	err = filex.WriteFileExclusive(r.path, data, 0o600)
	switch {
	case err == nil:
		return empty, nil
	case errors.Is(err, fs.ErrExist):
		return r.read()
	default:
		return nil, fmt.Errorf("%w: %w", common.ErrorStorage, err)
	}
}

func (r *FileRepository) read() ([]models.UserRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", common.ErrorStorage, r.path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", common.ErrorStorage, r.path, err)
	}
	return decodeRecords(data)
}

func (r *FileRepository) Save(ctx context.Context, records []models.UserRecord) error {
	data, err := encodeRecords(records)
	if err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(r.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorStorage, err)
	}
	return nil
}
