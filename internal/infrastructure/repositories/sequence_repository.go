package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
)

// SequenceRepository hands out per-payer outbound sequence numbers.
type SequenceRepository struct {
	db *sqlx.DB
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *sqlx.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// NextSequence returns the payer's current sequence and increments it
// in one statement, so concurrent sends never observe the same value.
func (r *SequenceRepository) NextSequence(ctx context.Context, payer entities.Address) (uint64, error) {
	query := `
		INSERT INTO signer_sequences (payer, value) VALUES ($1, 1)
		ON CONFLICT (payer) DO UPDATE SET value = signer_sequences.value + 1
		RETURNING value - 1`

	var seq int64
	if err := r.db.GetContext(ctx, &seq, query, payer); err != nil {
		return 0, err
	}
	return uint64(seq), nil
}
