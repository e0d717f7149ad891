package models

// ViewStatus is the outcome of resolving a path for inline viewing.
type ViewStatus int

const (
	ViewNotFound ViewStatus = iota
	ViewRefused
	ViewViewable
)

func (s ViewStatus) String() string {
	switch s {
	case ViewViewable:
		return "viewable"
	case ViewRefused:
		return "refused"
	default:
		return "not_found"
	}
}

// Resolution describes how a file should be served. ContentType is set only
// for ViewViewable.
type Resolution struct {
	Status      ViewStatus
	Path        string
	ContentType string
}
