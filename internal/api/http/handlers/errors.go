package handlers

import (
	"errors"
	"net/http"

	"github.com/spec-kit/scan-token-service/internal/auth"
	"github.com/spec-kit/scan-token-service/internal/service"
	apperrors "github.com/spec-kit/scan-token-service/pkg/util"
)

var tokenErrors = []struct {
	err     error
	code    string
	message string
	status  int
}{
	{auth.ErrMalformedToken, "MALFORMED_TOKEN", "token is malformed", http.StatusBadRequest},
	{auth.ErrUnsupportedAlgorithm, "UNSUPPORTED_ALGORITHM", "token algorithm not accepted", http.StatusUnauthorized},
	{auth.ErrSignatureMismatch, "SIGNATURE_MISMATCH", "token signature invalid", http.StatusUnauthorized},
	{auth.ErrExpiredToken, "TOKEN_EXPIRED", "token expired", http.StatusUnauthorized},
	{auth.ErrSigning, "SIGNING_FAILED", "token could not be signed", http.StatusInternalServerError},
}

// mapServiceError converts token and scan errors into DomainErrors.
func mapServiceError(err error) error {
	if err == nil {
		return nil
	}
	for _, te := range tokenErrors {
		if errors.Is(err, te.err) {
			return apperrors.Wrap(apperrors.NewDomainError(te.code, te.message, te.status, nil), err)
		}
	}

	var missing *service.MissingClaimsError
	if errors.As(err, &missing) {
		return apperrors.NewDomainError("MISSING_CLAIMS", "required claims missing", http.StatusUnprocessableEntity,
			map[string]any{"missing": missing.Missing})
	}

	var limited *service.RateLimitError
	if errors.As(err, &limited) {
		return apperrors.NewTooManyRequests("too many scans", map[string]any{
			"max":            limited.Max,
			"window_seconds": int(limited.Window.Seconds()),
		})
	}

	if errors.Is(err, service.ErrHistoryUnavailable) {
		return apperrors.NewDomainError("HISTORY_UNAVAILABLE", "scan history not configured", http.StatusServiceUnavailable, nil)
	}
	return apperrors.MapError(err)
}
