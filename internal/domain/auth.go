package domain

import "time"

// SubjectType tells guest tokens from staff tokens.
type SubjectType string

const (
	SubjectTypeUser  SubjectType = "USER"
	SubjectTypeStaff SubjectType = "STAFF"
)

// Token is the metadata of an issued access token. Role is only set for
// staff subjects.
type Token struct {
	ID        string
	SubjectID string
	Subject   SubjectType
	Role      *StaffRole
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TTL returns the lifetime the token was issued with.
func (t Token) TTL() time.Duration {
	return t.ExpiresAt.Sub(t.IssuedAt)
}
