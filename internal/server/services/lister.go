package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/filex"
	"github.com/dmitrijs2005/fileshare/internal/server/models"
)

// DirectoryLister enumerates the immediate children of a directory.
type DirectoryLister struct {
	readDir func(name string) ([]os.DirEntry, error)
}

func NewDirectoryLister() *DirectoryLister {
	return &DirectoryLister{readDir: os.ReadDir}
}

// List returns directories first, then everything else. Each group keeps the
// order the filesystem enumeration produced. A missing directory wraps
// common.ErrorNotFound; any other read failure wraps common.ErrorIO.
func (l *DirectoryLister) List(dir string) ([]models.DirectoryEntry, error) {
	des, err := l.readDir(dir)
	if err != nil {
		if filex.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %w", common.ErrorNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorIO, err)
	}

	dirs := make([]models.DirectoryEntry, 0, len(des))
	files := make([]models.DirectoryEntry, 0, len(des))
	for _, de := range des {
		if de.IsDir() {
			dirs = append(dirs, models.DirectoryEntry{Name: de.Name(), Kind: models.KindDirectory})
		} else {
			files = append(files, models.DirectoryEntry{Name: de.Name(), Kind: models.KindFile})
		}
	}
	return append(dirs, files...), nil
}

// Filter keeps entries whose name contains query, ignoring case. An empty
// query returns entries unchanged.
func Filter(entries []models.DirectoryEntry, query string) []models.DirectoryEntry {
	if query == "" {
		return entries
	}

	q := strings.ToLower(query)
	out := make([]models.DirectoryEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}
