package models

// EntryKind classifies a directory child.
type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "directory"
)

// DirectoryEntry is one child of a listed directory.
type DirectoryEntry struct {
	Name string
	Kind EntryKind
}

// IsDir reports whether the entry is a directory.
func (e DirectoryEntry) IsDir() bool {
	return e.Kind == KindDirectory
}
