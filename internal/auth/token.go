package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of every issued token.
const TokenTTL = time.Hour

const (
	claimIssuedAt  = "iat"
	claimExpiresAt = "exp"
)

// Claims is the caller-defined payload carried by a token.
type Claims map[string]any

// Verified is the outcome of a successful verification.
type Verified struct {
	Header    map[string]any
	Claims    Claims
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies compact HS256 tokens under one secret.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the wall clock used for iat, exp and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenService builds a service keyed by secret.
func NewTokenService(secret []byte, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	s := &TokenService{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs payload with iat set to now and exp one TokenTTL later.
// Caller supplied iat/exp claims are overwritten.
//
// Claims travel as JSON, so Verify hands back JSON-shaped values: integral
// numbers as int64, other numbers as float64, objects as map[string]any and
// arrays as []any.
func (s *TokenService) Issue(payload Claims) (string, error) {
	token, _, err := s.IssueWithExpiry(payload)
	return token, err
}

// IssueWithExpiry is Issue that also reports the exp written into the token.
func (s *TokenService) IssueWithExpiry(payload Claims) (string, time.Time, error) {
	if s == nil || len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("%w: %w", ErrSigning, ErrEmptySecret)
	}

	issuedAt := s.clock().Truncate(jwt.TimePrecision)
	expiresAt := issuedAt.Add(TokenTTL)
	claims := make(jwt.MapClaims, len(payload)+2)
	for k, v := range payload {
		claims[k] = v
	}
	claims[claimIssuedAt] = jwt.NewNumericDate(issuedAt)
	claims[claimExpiresAt] = jwt.NewNumericDate(expiresAt)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return signed, expiresAt, nil
}

// Verify checks structure, algorithm, signature and expiry of tokenStr and
// returns its header and claims. Nothing is returned unless every check passes.
func (s *TokenService) Verify(tokenStr string) (*Verified, error) {
	if s == nil {
		return nil, ErrSignatureMismatch
	}
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation(), jwt.WithJSONNumber())
	parsed, err := parser.ParseWithClaims(tokenStr, jwt.MapClaims{}, s.keyFunc)
	if err != nil {
		return nil, classify(err)
	}

	// Non-canonical base64 tails decode to the same bytes; reject them so any
	// edit of the signature segment is a mismatch.
	if base64.RawURLEncoding.EncodeToString(parsed.Signature) != parts[2] {
		return nil, ErrSignatureMismatch
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformedToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing or invalid exp claim", ErrMalformedToken)
	}
	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid iat claim", ErrMalformedToken)
	}

	if !s.clock().Before(exp.Time) {
		return nil, fmt.Errorf("%w: expired at %s", ErrExpiredToken, exp.Time.UTC().Format(time.RFC3339))
	}

	out := &Verified{
		Header:    parsed.Header,
		Claims:    make(Claims, len(claims)),
		ExpiresAt: exp.Time,
	}
	if iat != nil {
		out.IssuedAt = iat.Time
	}
	for k, v := range claims {
		if k == claimIssuedAt || k == claimExpiresAt {
			continue
		}
		out.Claims[k] = normalizeJSON(v)
	}
	return out, nil
}

// normalizeJSON replaces json.Number values so integers survive without
// float64 rounding.
func normalizeJSON(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeJSON(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeJSON(item)
		}
		return val
	default:
		return v
	}
}

func (s *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedAlgorithm, token.Header["alg"])
	}
	if len(s.secret) == 0 {
		return nil, ErrSignatureMismatch
	}
	return s.secret, nil
}

func (s *TokenService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// classify maps parser errors onto the token failure signals.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrUnsupportedAlgorithm), errors.Is(err, ErrSignatureMismatch):
		return err
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		// alg missing or not registered with the parser
		return fmt.Errorf("%w: %w", ErrUnsupportedAlgorithm, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrSignatureMismatch, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
}
