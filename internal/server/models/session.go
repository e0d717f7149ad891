package models

import "time"

// Session is the server-side half of a browser session. The cookie only
// carries ID; destroying the Session invalidates the cookie.
type Session struct {
	ID            string
	Username      string
	Authenticated bool
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
