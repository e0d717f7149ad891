// Package common contains shared constants and sentinel errors used across
// fileshare components.
package common

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "fileshare_session"

// BcryptCost is the work factor used for password hashes.
const BcryptCost = 10
