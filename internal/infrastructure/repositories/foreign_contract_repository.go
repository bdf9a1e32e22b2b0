package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
)

// ForeignContractRepository implements the foreign contract registry
type ForeignContractRepository struct {
	db *sqlx.DB
}

// NewForeignContractRepository creates a new foreign contract repository
func NewForeignContractRepository(db *sqlx.DB) *ForeignContractRepository {
	return &ForeignContractRepository{db: db}
}

func (r *ForeignContractRepository) GetByChain(ctx context.Context, chain uint16) (*entities.ForeignContract, error) {
	var contract entities.ForeignContract
	query := `SELECT * FROM foreign_contracts WHERE chain = $1`
	if err := r.db.GetContext(ctx, &contract, query, int32(chain)); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

func (r *ForeignContractRepository) Upsert(ctx context.Context, contract *entities.ForeignContract) error {
	query := `
		INSERT INTO foreign_contracts (chain, address, bridge_endpoint, fee, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (chain) DO UPDATE SET
			address = EXCLUDED.address,
			bridge_endpoint = EXCLUDED.bridge_endpoint,
			fee = EXCLUDED.fee,
			updated_at = EXCLUDED.updated_at`

	now := time.Now()
	contract.CreatedAt = now
	contract.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, query,
		int32(contract.Chain), contract.Address, contract.BridgeEndpoint, contract.Fee,
		contract.CreatedAt, contract.UpdatedAt,
	)
	return err
}

func (r *ForeignContractRepository) UpdateFee(ctx context.Context, chain uint16, fee uint64) error {
	query := `UPDATE foreign_contracts SET fee = $2, updated_at = $3 WHERE chain = $1`
	res, err := r.db.ExecContext(ctx, query, int32(chain), fee, time.Now())
	if err != nil {
		return err
	}
	return requireRowAffected(res, "foreign contract", fmt.Sprintf("%d", chain))
}
