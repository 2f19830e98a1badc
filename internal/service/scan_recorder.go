package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/scan-token-service/internal/domain"
	"github.com/spec-kit/scan-token-service/internal/events"
	"github.com/spec-kit/scan-token-service/internal/repository"
)

// ScanRecorder persists completed scans and token issuances published on the
// dispatcher.
type ScanRecorder struct {
	dispatcher events.Dispatcher
	store      repository.ScanEventRepository
	issuances  repository.TokenIssuanceRepository
	history    repository.ScanHistory
	logger     *zap.Logger
}

// NewScanRecorder creates the recorder. store, issuances and history may be nil
// when the backing database or cache is not configured.
func NewScanRecorder(dispatcher events.Dispatcher, store repository.ScanEventRepository, issuances repository.TokenIssuanceRepository, history repository.ScanHistory, logger *zap.Logger) *ScanRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanRecorder{
		dispatcher: dispatcher,
		store:      store,
		issuances:  issuances,
		history:    history,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (r *ScanRecorder) RegisterHandlers() {
	if r.dispatcher == nil {
		return
	}
	r.dispatcher.Subscribe(events.EventScanCompleted, r.handleScanCompleted)
	if r.issuances != nil {
		r.dispatcher.Subscribe(events.EventTokenIssued, r.handleTokenIssued)
	}
}

func (r *ScanRecorder) handleScanCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ScanCompletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	scan := payload.Scan

	var errs []error
	if r.store != nil {
		if err := r.store.Create(ctx, &scan); err != nil {
			errs = append(errs, fmt.Errorf("persist scan %s: %w", scan.ID, err))
		}
	}
	if r.history != nil {
		if err := r.history.Push(ctx, &scan); err != nil {
			errs = append(errs, fmt.Errorf("push scan history %s: %w", scan.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (r *ScanRecorder) handleTokenIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TokenIssuedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	issuance := &domain.TokenIssuance{
		ID:         event.ID,
		ClaimNames: payload.ClaimNames,
		IssuedAt:   payload.IssuedAt,
		ExpiresAt:  payload.ExpiresAt,
	}
	if err := r.issuances.Create(ctx, issuance); err != nil {
		return fmt.Errorf("record issuance %s: %w", event.ID, err)
	}
	r.logger.Debug("token issuance recorded", zap.String("issuance_id", event.ID))
	return nil
}
