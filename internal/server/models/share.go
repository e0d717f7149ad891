package models

import "time"

// ShareEntry maps a share token to an absolute path. Entries are never
// updated and live until the process exits.
type ShareEntry struct {
	Token     string
	Path      string
	CreatedAt time.Time
}
