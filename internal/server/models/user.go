// Package models defines the data types shared by fileshare services,
// repositories and HTTP handlers.
package models

// UserRecord is one persisted account. Username is unique and compared
// case-sensitively; PasswordHash is an opaque bcrypt string.
type UserRecord struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}
