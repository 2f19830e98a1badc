package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/scan-token-service/internal/domain"
)

// ScanEventRepository manages scan event persistence.
type ScanEventRepository interface {
	Create(ctx context.Context, event *domain.ScanEvent) error
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]domain.ScanEvent, error)
}

type scanEventRepository struct {
	pool *pgxpool.Pool
}

// NewScanEventRepository constructs repository.
func NewScanEventRepository(pool *pgxpool.Pool) ScanEventRepository {
	return &scanEventRepository{pool: pool}
}

func (r *scanEventRepository) Create(ctx context.Context, event *domain.ScanEvent) error {
	const query = `
        INSERT INTO scan_events (id, device_id, format, outcome, reason, claims, scanned_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.DeviceID,
		string(event.Format),
		string(event.Outcome),
		event.Reason,
		event.Claims,
		event.ScannedAt,
	)
	return err
}

func (r *scanEventRepository) ListByDevice(ctx context.Context, deviceID string, limit int) ([]domain.ScanEvent, error) {
	const query = `
        SELECT id, device_id, format, outcome, reason, claims, scanned_at
        FROM scan_events WHERE device_id=$1
        ORDER BY scanned_at DESC
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.ScanEvent
	for rows.Next() {
		var (
			event   domain.ScanEvent
			format  string
			outcome string
		)
		if err := rows.Scan(
			&event.ID,
			&event.DeviceID,
			&format,
			&outcome,
			&event.Reason,
			&event.Claims,
			&event.ScannedAt,
		); err != nil {
			return nil, err
		}
		event.Format = domain.BarcodeFormat(format)
		event.Outcome = domain.ScanOutcome(outcome)
		events = append(events, event)
	}
	return events, rows.Err()
}
