package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
)

// RelayRepository implements the relay ledger
type RelayRepository struct {
	db *sqlx.DB
}

// NewRelayRepository creates a new relay repository
func NewRelayRepository(db *sqlx.DB) *RelayRepository {
	return &RelayRepository{db: db}
}

func (r *RelayRepository) Create(ctx context.Context, relay *entities.RelayTransaction) error {
	query := `
		INSERT INTO relay_transactions (
			id, direction, payer, mint, amount, to_native_amount, relayer_fee,
			chain, recipient, sequence, message_hash, status, error_message,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	now := time.Now()
	relay.CreatedAt = now
	relay.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, query,
		relay.ID, relay.Direction, relay.Payer, relay.Mint,
		relay.Amount, relay.ToNativeAmount, relay.RelayerFee,
		int32(relay.Chain), relay.Recipient, int64(relay.Sequence),
		nullString(relay.MessageHash), relay.Status, nullString(relay.ErrorMessage),
		relay.CreatedAt, relay.UpdatedAt,
	)
	return err
}

func (r *RelayRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.RelayTransaction, error) {
	var relay entities.RelayTransaction
	query := `SELECT * FROM relay_transactions WHERE id = $1`
	if err := r.db.GetContext(ctx, &relay, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("relay transaction not found: %s", id)
		}
		return nil, err
	}
	return &relay, nil
}

func (r *RelayRepository) GetByMessageHash(ctx context.Context, messageHash string) (*entities.RelayTransaction, error) {
	var relay entities.RelayTransaction
	query := `SELECT * FROM relay_transactions WHERE message_hash = $1`
	if err := r.db.GetContext(ctx, &relay, query, messageHash); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &relay, nil
}

func (r *RelayRepository) MarkPosted(ctx context.Context, id uuid.UUID, sequence uint64, messageHash string) error {
	query := `UPDATE relay_transactions SET status = $2, sequence = $3, message_hash = $4, updated_at = $5 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, entities.RelayStatusPosted, int64(sequence), nullString(messageHash), time.Now())
	return err
}

func (r *RelayRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.RelayStatus, errorMsg string) error {
	query := `UPDATE relay_transactions SET status = $2, error_message = $3, updated_at = $4 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status, nullString(errorMsg), time.Now())
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
