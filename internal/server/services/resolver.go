package services

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/fileshare/internal/server/models"
)

// viewableTypes is the inline-rendering allow-list, keyed by lowercased
// extension.
var viewableTypes = map[string]string{
	".md":   "text/markdown; charset=utf-8",
	".pdf":  "application/pdf",
	".html": "text/html; charset=utf-8",
	".txt":  "text/plain; charset=utf-8",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// FileResolver maps request paths under the base directory to files and
// decides whether they may be rendered inline.
type FileResolver struct {
	base string
	stat func(name string) (os.FileInfo, error)
}

func NewFileResolver(base string) *FileResolver {
	return &FileResolver{base: base, stat: os.Stat}
}

// Abs joins rel onto the base directory.
//
// TODO: reject rel values that escape the base directory after
// filepath.Join; "..", absolute-looking segments and symlinks are currently
// followed as-is.
func (f *FileResolver) Abs(rel string) string {
	return filepath.Join(f.base, rel)
}

// ResolveForView classifies the file at rel under the base directory.
func (f *FileResolver) ResolveForView(rel string) models.Resolution {
	return f.Classify(f.Abs(rel))
}

// Classify decides how the file at path is served. Missing paths are
// ViewNotFound. Directories and extensions outside the allow-list are
// ViewRefused.
func (f *FileResolver) Classify(path string) models.Resolution {
	fi, err := f.stat(path)
	if err != nil {
		return models.Resolution{Status: models.ViewNotFound, Path: path}
	}
	if fi.IsDir() {
		return models.Resolution{Status: models.ViewRefused, Path: path}
	}

	ct, ok := viewableTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return models.Resolution{Status: models.ViewRefused, Path: path}
	}
	return models.Resolution{Status: models.ViewViewable, Path: path, ContentType: ct}
}
