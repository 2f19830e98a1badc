package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/scan-token-service/internal/auth"
	"github.com/spec-kit/scan-token-service/internal/domain"
	"github.com/spec-kit/scan-token-service/internal/events"
	"github.com/spec-kit/scan-token-service/internal/observability"
)

// TokenService exposes issuance and verification to transports.
type TokenService struct {
	tokens     *auth.TokenService
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// TokenDependencies bundles collaborators for the token service.
type TokenDependencies struct {
	Tokens     *auth.TokenService
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewTokenService builds the service.
func NewTokenService(deps TokenDependencies) *TokenService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenService{
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Issue signs claims and announces the issuance.
func (s *TokenService) Issue(ctx context.Context, claims auth.Claims) (*domain.IssuedToken, error) {
	token, expiresAt, err := s.tokens.IssueWithExpiry(claims)
	s.metrics.RecordTokenOutcome("issue", auth.Reason(err))
	if err != nil {
		s.logger.Error("token issuance failed", zap.Error(err))
		return nil, err
	}

	issued := &domain.IssuedToken{
		Token:     token,
		IssuedAt:  expiresAt.Add(-auth.TokenTTL),
		ExpiresAt: expiresAt,
	}
	s.logger.Info("token issued",
		zap.Strings("claims", claimNames(claims)),
		zap.Time("expires_at", expiresAt))
	s.publish(ctx, events.EventTokenIssued, events.TokenIssuedPayload{
		ClaimNames: claimNames(claims),
		IssuedAt:   issued.IssuedAt,
		ExpiresAt:  expiresAt,
	})
	return issued, nil
}

// Verify checks a token and returns its header and claims.
func (s *TokenService) Verify(_ context.Context, token string) (*auth.Verified, error) {
	verified, err := s.tokens.Verify(token)
	s.metrics.RecordTokenOutcome("verify", auth.Reason(err))
	if err != nil {
		s.logger.Debug("token rejected", zap.String("reason", auth.Reason(err)), zap.Error(err))
		return nil, err
	}
	return verified, nil
}

func (s *TokenService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

func claimNames(claims auth.Claims) []string {
	names := make([]string, 0, len(claims))
	for k := range claims {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
