package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
	"github.com/relayer-service/relayer_service/internal/infrastructure/cache"
)

const tokenCacheTTL = 30 * time.Second

// TokenRepository implements the token repository interface with a
// Redis read-through cache. Every mutation invalidates the cached row.
type TokenRepository struct {
	db     *sqlx.DB
	cache  cache.RedisClient
	logger *zap.Logger
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *sqlx.DB, cache cache.RedisClient, logger *zap.Logger) *TokenRepository {
	return &TokenRepository{db: db, cache: cache, logger: logger}
}

func tokenCacheKey(mint entities.Address) string {
	return "registered_token:" + mint.String()
}

func (r *TokenRepository) GetByMint(ctx context.Context, mint entities.Address) (*entities.RegisteredToken, error) {
	if r.cache != nil {
		var cached entities.RegisteredToken
		if err := r.cache.Get(ctx, tokenCacheKey(mint), &cached); err == nil {
			return &cached, nil
		}
	}

	var token entities.RegisteredToken
	query := `SELECT * FROM registered_tokens WHERE mint = $1`
	if err := r.db.GetContext(ctx, &token, query, mint); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, tokenCacheKey(mint), &token, tokenCacheTTL); err != nil {
			r.logger.Warn("Failed to cache registered token", zap.String("mint", mint.String()), zap.Error(err))
		}
	}
	return &token, nil
}

func (r *TokenRepository) Create(ctx context.Context, token *entities.RegisteredToken) error {
	query := `
		INSERT INTO registered_tokens (mint, swap_rate, max_native_swap_amount, is_registered, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (mint) DO UPDATE SET
			swap_rate = EXCLUDED.swap_rate,
			max_native_swap_amount = EXCLUDED.max_native_swap_amount,
			is_registered = EXCLUDED.is_registered,
			updated_at = EXCLUDED.updated_at`

	now := time.Now()
	token.CreatedAt = now
	token.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, query,
		token.Mint, token.SwapRate, token.MaxNativeSwapAmount, token.IsRegistered,
		token.CreatedAt, token.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return r.invalidate(ctx, token.Mint)
}

func (r *TokenRepository) UpdateSwapRate(ctx context.Context, mint entities.Address, swapRate uint64) error {
	query := `UPDATE registered_tokens SET swap_rate = $2, updated_at = $3 WHERE mint = $1 AND is_registered`
	res, err := r.db.ExecContext(ctx, query, mint, swapRate, time.Now())
	if err != nil {
		return err
	}
	if err := requireRowAffected(res, "registered token", mint.String()); err != nil {
		return err
	}
	return r.invalidate(ctx, mint)
}

func (r *TokenRepository) UpdateMaxNativeSwapAmount(ctx context.Context, mint entities.Address, max uint64) error {
	query := `UPDATE registered_tokens SET max_native_swap_amount = $2, updated_at = $3 WHERE mint = $1 AND is_registered`
	res, err := r.db.ExecContext(ctx, query, mint, max, time.Now())
	if err != nil {
		return err
	}
	if err := requireRowAffected(res, "registered token", mint.String()); err != nil {
		return err
	}
	return r.invalidate(ctx, mint)
}

func (r *TokenRepository) Deregister(ctx context.Context, mint entities.Address) error {
	query := `
		UPDATE registered_tokens
		SET swap_rate = 0, max_native_swap_amount = 0, is_registered = FALSE, updated_at = $2
		WHERE mint = $1 AND is_registered`
	res, err := r.db.ExecContext(ctx, query, mint, time.Now())
	if err != nil {
		return err
	}
	if err := requireRowAffected(res, "registered token", mint.String()); err != nil {
		return err
	}
	return r.invalidate(ctx, mint)
}

func (r *TokenRepository) invalidate(ctx context.Context, mint entities.Address) error {
	if r.cache == nil {
		return nil
	}
	if err := r.cache.Del(ctx, tokenCacheKey(mint)); err != nil {
		r.logger.Warn("Failed to invalidate token cache", zap.String("mint", mint.String()), zap.Error(err))
	}
	return nil
}

func requireRowAffected(res sql.Result, resource, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s not found: %s", resource, key)
	}
	return nil
}
