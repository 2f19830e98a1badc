package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/scan-token-service/internal/auth"
	"github.com/spec-kit/scan-token-service/internal/domain"
	"github.com/spec-kit/scan-token-service/internal/events"
	"github.com/spec-kit/scan-token-service/internal/observability"
	"github.com/spec-kit/scan-token-service/internal/repository"
)

const anonymousDevice = "anonymous"

var (
	// ErrMissingClaims is matched by *MissingClaimsError.
	ErrMissingClaims = errors.New("required claims missing")
	// ErrHistoryUnavailable is returned when neither the history cache nor the
	// scan event store is configured.
	ErrHistoryUnavailable = errors.New("scan history unavailable")
)

// MissingClaimsError lists the required claims absent from a verified token.
type MissingClaimsError struct {
	Missing []string
}

func (e *MissingClaimsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingClaims, strings.Join(e.Missing, ", "))
}

func (e *MissingClaimsError) Is(target error) bool {
	return target == ErrMissingClaims
}

// TokenVerifier verifies a compact token.
type TokenVerifier interface {
	Verify(token string) (*auth.Verified, error)
}

// ScanInput is a decoded barcode as reported by the scanning client.
type ScanInput struct {
	Format   string
	RawValue string
	DeviceID string
}

// ScanResult is the outcome of a successful scan. Verified is nil for ignored formats.
type ScanResult struct {
	Event    domain.ScanEvent
	Verified *auth.Verified
}

// ScanService verifies tokens read from QR codes.
type ScanService struct {
	verifier       TokenVerifier
	history        repository.ScanHistory
	store          repository.ScanEventRepository
	limiter        *RateLimiter
	dispatcher     events.Dispatcher
	metrics        *observability.Metrics
	logger         *zap.Logger
	requiredClaims []string
	now            func() time.Time
}

// ScanDependencies bundles collaborators for the scan service.
type ScanDependencies struct {
	Verifier       TokenVerifier
	History        repository.ScanHistory
	Store          repository.ScanEventRepository
	Limiter        *RateLimiter
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	RequiredClaims []string
	Now            func() time.Time
}

// NewScanService builds the service.
func NewScanService(deps ScanDependencies) *ScanService {
	svc := &ScanService{
		verifier:       deps.Verifier,
		history:        deps.History,
		store:          deps.Store,
		limiter:        deps.Limiter,
		dispatcher:     deps.Dispatcher,
		metrics:        deps.Metrics,
		logger:         deps.Logger,
		requiredClaims: deps.RequiredClaims,
		now:            deps.Now,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// Scan handles one decoded barcode. Only QR codes are verified; other formats
// are acknowledged as ignored. Every processed scan, accepted or not, is
// published as a scan_completed event.
func (s *ScanService) Scan(ctx context.Context, in ScanInput) (*ScanResult, error) {
	deviceID := strings.TrimSpace(in.DeviceID)
	if deviceID == "" {
		deviceID = anonymousDevice
	}
	if err := s.limiter.Allow(deviceID); err != nil {
		s.logger.Warn("scan rate limited", zap.String("device_id", deviceID))
		return nil, err
	}

	event := domain.ScanEvent{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		Format:    domain.ParseBarcodeFormat(in.Format),
		ScannedAt: s.now().UTC(),
	}

	if event.Format != domain.BarcodeFormatQRCode {
		event.Outcome = domain.ScanOutcomeIgnored
		s.complete(ctx, event)
		return &ScanResult{Event: event}, nil
	}

	verified, err := s.verifier.Verify(strings.TrimSpace(in.RawValue))
	if err == nil {
		err = s.checkRequiredClaims(verified.Claims)
	}
	if err != nil {
		event.Outcome = domain.ScanOutcomeRejected
		event.Reason = scanReason(err)
		s.complete(ctx, event)
		return nil, err
	}

	event.Outcome = domain.ScanOutcomeVerified
	event.Claims = verified.Claims
	s.complete(ctx, event)
	return &ScanResult{Event: event, Verified: verified}, nil
}

// History returns up to limit recent scans of a device, newest first. The
// Redis history is read first; the scan event store answers when the cache is
// not configured or fails.
func (s *ScanService) History(ctx context.Context, deviceID string, limit int) ([]domain.ScanEvent, error) {
	if s.history != nil {
		recent, err := s.history.Recent(ctx, deviceID, limit)
		if err == nil || s.store == nil {
			return recent, err
		}
		s.logger.Warn("scan history cache failed, reading store", zap.String("device_id", deviceID), zap.Error(err))
	}
	if s.store == nil {
		return nil, ErrHistoryUnavailable
	}
	return s.store.ListByDevice(ctx, deviceID, limit)
}

func (s *ScanService) checkRequiredClaims(claims auth.Claims) error {
	var missing []string
	for _, name := range s.requiredClaims {
		if _, ok := claims[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingClaimsError{Missing: missing}
	}
	return nil
}

func (s *ScanService) complete(ctx context.Context, event domain.ScanEvent) {
	s.metrics.RecordScan(string(event.Outcome))
	s.logger.Info("scan completed",
		zap.String("scan_id", event.ID),
		zap.String("device_id", event.DeviceID),
		zap.String("format", string(event.Format)),
		zap.String("outcome", string(event.Outcome)),
		zap.String("reason", event.Reason))

	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventScanCompleted,
		Timestamp: event.ScannedAt,
		Payload:   events.ScanCompletedPayload{Scan: event},
	})
}

func scanReason(err error) string {
	if errors.Is(err, ErrMissingClaims) {
		return "missing_claims"
	}
	return auth.Reason(err)
}
