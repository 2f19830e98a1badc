package domain

import "time"

// IssuedToken is the metadata returned alongside a freshly signed token.
type IssuedToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuance is the audit record of one issued token. The token and claim
// values are not kept.
type TokenIssuance struct {
	ID         string
	ClaimNames []string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}
