package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
)

// ConfigRepository persists the owner, sender and redeemer config
// singletons. Mutations that span rows run inside one transaction so
// the three configs never disagree about the owner or precisions.
type ConfigRepository struct {
	db *sqlx.DB
}

// NewConfigRepository creates a new config repository
func NewConfigRepository(db *sqlx.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

type ownerConfigRow struct {
	Owner        entities.Address `db:"owner"`
	Assistant    entities.Address `db:"assistant"`
	PendingOwner sql.NullString   `db:"pending_owner"`
	UpdatedAt    time.Time        `db:"updated_at"`
}

func (r *ConfigRepository) Initialize(ctx context.Context, owner, assistant, feeRecipient entities.Address, relayerFeePrecision, swapRatePrecision uint32) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO owner_configs (id, owner, assistant, pending_owner, updated_at) VALUES (TRUE, $1, $2, NULL, $3)`,
			owner, assistant, now,
		); err != nil {
			return fmt.Errorf("insert owner config: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sender_configs (id, owner, relayer_fee_precision, swap_rate_precision, paused, updated_at) VALUES (TRUE, $1, $2, $3, FALSE, $4)`,
			owner, int64(relayerFeePrecision), int64(swapRatePrecision), now,
		); err != nil {
			return fmt.Errorf("insert sender config: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO redeemer_configs (id, owner, relayer_fee_precision, swap_rate_precision, fee_recipient, updated_at) VALUES (TRUE, $1, $2, $3, $4, $5)`,
			owner, int64(relayerFeePrecision), int64(swapRatePrecision), feeRecipient, now,
		); err != nil {
			return fmt.Errorf("insert redeemer config: %w", err)
		}
		return nil
	})
}

func (r *ConfigRepository) IsInitialized(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM owner_configs`); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ConfigRepository) GetOwnerConfig(ctx context.Context) (*entities.OwnerConfig, error) {
	var row ownerConfigRow
	if err := r.db.GetContext(ctx, &row, `SELECT owner, assistant, pending_owner, updated_at FROM owner_configs WHERE id`); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("owner config not initialized")
		}
		return nil, err
	}

	cfg := &entities.OwnerConfig{
		Owner:     row.Owner,
		Assistant: row.Assistant,
		UpdatedAt: row.UpdatedAt,
	}
	if row.PendingOwner.Valid {
		pending, err := entities.ParseAddress(row.PendingOwner.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt pending owner: %w", err)
		}
		cfg.PendingOwner = &pending
	}
	return cfg, nil
}

func (r *ConfigRepository) GetSenderConfig(ctx context.Context) (*entities.SenderConfig, error) {
	var cfg entities.SenderConfig
	if err := r.db.GetContext(ctx, &cfg, `SELECT owner, relayer_fee_precision, swap_rate_precision, paused, updated_at FROM sender_configs WHERE id`); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sender config not initialized")
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *ConfigRepository) GetRedeemerConfig(ctx context.Context) (*entities.RedeemerConfig, error) {
	var cfg entities.RedeemerConfig
	if err := r.db.GetContext(ctx, &cfg, `SELECT owner, relayer_fee_precision, swap_rate_precision, fee_recipient, updated_at FROM redeemer_configs WHERE id`); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("redeemer config not initialized")
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *ConfigRepository) SetPendingOwner(ctx context.Context, pending *entities.Address) error {
	var value interface{}
	if pending != nil {
		value = pending.String()
	}
	_, err := r.db.ExecContext(ctx, `UPDATE owner_configs SET pending_owner = $1, updated_at = $2 WHERE id`, value, time.Now())
	return err
}

func (r *ConfigRepository) ConfirmOwnershipTransfer(ctx context.Context, newOwner entities.Address) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()
		if _, err := tx.ExecContext(ctx, `UPDATE owner_configs SET owner = $1, pending_owner = NULL, updated_at = $2 WHERE id`, newOwner, now); err != nil {
			return fmt.Errorf("update owner config: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE sender_configs SET owner = $1, updated_at = $2 WHERE id`, newOwner, now); err != nil {
			return fmt.Errorf("update sender config: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE redeemer_configs SET owner = $1, updated_at = $2 WHERE id`, newOwner, now); err != nil {
			return fmt.Errorf("update redeemer config: %w", err)
		}
		return nil
	})
}

func (r *ConfigRepository) UpdateAssistant(ctx context.Context, assistant entities.Address) error {
	_, err := r.db.ExecContext(ctx, `UPDATE owner_configs SET assistant = $1, updated_at = $2 WHERE id`, assistant, time.Now())
	return err
}

func (r *ConfigRepository) UpdateFeeRecipient(ctx context.Context, feeRecipient entities.Address) error {
	_, err := r.db.ExecContext(ctx, `UPDATE redeemer_configs SET fee_recipient = $1, updated_at = $2 WHERE id`, feeRecipient, time.Now())
	return err
}

func (r *ConfigRepository) SetPaused(ctx context.Context, paused bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sender_configs SET paused = $1, updated_at = $2 WHERE id`, paused, time.Now())
	return err
}

func (r *ConfigRepository) UpdateRelayerFeePrecision(ctx context.Context, precision uint32) error {
	return r.updatePrecision(ctx, "relayer_fee_precision", precision)
}

func (r *ConfigRepository) UpdateSwapRatePrecision(ctx context.Context, precision uint32) error {
	return r.updatePrecision(ctx, "swap_rate_precision", precision)
}

// updatePrecision applies a precision change to the sender and redeemer
// rows in one transaction; the two copies must never diverge.
func (r *ConfigRepository) updatePrecision(ctx context.Context, column string, precision uint32) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE sender_configs SET %s = $1, updated_at = $2 WHERE id`, column), int64(precision), now); err != nil {
			return fmt.Errorf("update sender config: %w", err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE redeemer_configs SET %s = $1, updated_at = $2 WHERE id`, column), int64(precision), now); err != nil {
			return fmt.Errorf("update redeemer config: %w", err)
		}
		return nil
	})
}

func (r *ConfigRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
