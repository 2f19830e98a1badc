package auth

import "errors"

// Token failure signals. Every error returned by TokenService wraps exactly
// one of these, so callers can branch with errors.Is.
var (
	ErrSigning              = errors.New("token signing failed")
	ErrMalformedToken       = errors.New("malformed token")
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
	ErrSignatureMismatch    = errors.New("token signature mismatch")
	ErrExpiredToken         = errors.New("token expired")
)

// ErrEmptySecret is returned by NewTokenService when no secret is configured.
var ErrEmptySecret = errors.New("token secret is empty")

var reasons = []struct {
	err  error
	code string
}{
	{ErrSigning, "signing_failed"},
	{ErrMalformedToken, "malformed_token"},
	{ErrUnsupportedAlgorithm, "unsupported_algorithm"},
	{ErrSignatureMismatch, "signature_mismatch"},
	{ErrExpiredToken, "token_expired"},
}

// Reason returns a short machine-readable label for a token error, or
// "unknown" when err does not wrap one of the token signals.
func Reason(err error) string {
	if err == nil {
		return "ok"
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.code
		}
	}
	return "unknown"
}
