package models

import "time"

// SessionToken is an issued, signed session token. It is never persisted;
// Value is what callers present back.
type SessionToken struct {
	Value     string
	ID        string
	SubjectID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims are the verified contents of a presented token.
type Claims struct {
	ID        string
	SubjectID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
