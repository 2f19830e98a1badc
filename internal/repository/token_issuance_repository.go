package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/scan-token-service/internal/domain"
)

// TokenIssuanceRepository records issued tokens for auditing.
type TokenIssuanceRepository interface {
	Create(ctx context.Context, issuance *domain.TokenIssuance) error
}

type tokenIssuanceRepository struct {
	pool *pgxpool.Pool
}

// NewTokenIssuanceRepository constructs repository.
func NewTokenIssuanceRepository(pool *pgxpool.Pool) TokenIssuanceRepository {
	return &tokenIssuanceRepository{pool: pool}
}

func (r *tokenIssuanceRepository) Create(ctx context.Context, issuance *domain.TokenIssuance) error {
	const query = `
        INSERT INTO token_issuances (id, claim_names, issued_at, expires_at)
        VALUES ($1,$2,$3,$4)`
	claimNames := issuance.ClaimNames
	if claimNames == nil {
		claimNames = []string{}
	}
	_, err := r.pool.Exec(ctx, query, issuance.ID, claimNames, issuance.IssuedAt, issuance.ExpiresAt)
	return err
}
