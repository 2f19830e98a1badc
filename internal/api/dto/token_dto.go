package dto

import "time"

// IssueTokenRequest payload for POST /tokens.
type IssueTokenRequest struct {
	Claims map[string]any `json:"claims"`
}

// IssueTokenResponse standard response for issuance.
type IssueTokenResponse struct {
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyTokenRequest payload for POST /tokens/verify.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// VerifiedTokenResponse describes a verified token.
type VerifiedTokenResponse struct {
	Header    map[string]any `json:"header"`
	Claims    map[string]any `json:"claims"`
	IssuedAt  *time.Time     `json:"issued_at,omitempty"`
	ExpiresAt time.Time      `json:"expires_at"`
}
