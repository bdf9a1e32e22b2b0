// Package repositories defines the persistence interfaces consumed by
// the domain services. Implementations live in
// internal/infrastructure/repositories.
package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
)

// TokenRepository persists registered tokens, keyed by mint address.
type TokenRepository interface {
	// GetByMint returns the token record, or nil if never registered.
	GetByMint(ctx context.Context, mint entities.Address) (*entities.RegisteredToken, error)
	Create(ctx context.Context, token *entities.RegisteredToken) error
	UpdateSwapRate(ctx context.Context, mint entities.Address, swapRate uint64) error
	UpdateMaxNativeSwapAmount(ctx context.Context, mint entities.Address, max uint64) error
	// Deregister zeroes the token's rate and cap and clears the
	// registration flag.
	Deregister(ctx context.Context, mint entities.Address) error
}

// ForeignContractRepository persists trusted foreign emitters, keyed by
// chain id.
type ForeignContractRepository interface {
	// GetByChain returns the contract record, or nil if unregistered.
	GetByChain(ctx context.Context, chain uint16) (*entities.ForeignContract, error)
	// Upsert creates or overwrites the record for its chain id.
	Upsert(ctx context.Context, contract *entities.ForeignContract) error
	UpdateFee(ctx context.Context, chain uint16, fee uint64) error
}

// ConfigRepository persists the owner/sender/redeemer singletons.
// Multi-row mutations (ownership confirmation, precision updates) are
// applied in a single database transaction.
type ConfigRepository interface {
	Initialize(ctx context.Context, owner, assistant, feeRecipient entities.Address, relayerFeePrecision, swapRatePrecision uint32) error
	IsInitialized(ctx context.Context) (bool, error)

	GetOwnerConfig(ctx context.Context) (*entities.OwnerConfig, error)
	GetSenderConfig(ctx context.Context) (*entities.SenderConfig, error)
	GetRedeemerConfig(ctx context.Context) (*entities.RedeemerConfig, error)

	SetPendingOwner(ctx context.Context, pending *entities.Address) error
	// ConfirmOwnershipTransfer installs newOwner across the owner,
	// sender and redeemer configs atomically and clears the pending
	// owner.
	ConfirmOwnershipTransfer(ctx context.Context, newOwner entities.Address) error
	UpdateAssistant(ctx context.Context, assistant entities.Address) error
	UpdateFeeRecipient(ctx context.Context, feeRecipient entities.Address) error
	SetPaused(ctx context.Context, paused bool) error
	UpdateRelayerFeePrecision(ctx context.Context, precision uint32) error
	UpdateSwapRatePrecision(ctx context.Context, precision uint32) error
}

// SequenceRepository hands out per-payer outbound sequence numbers.
type SequenceRepository interface {
	// NextSequence returns the payer's current sequence value and
	// increments it, atomically.
	NextSequence(ctx context.Context, payer entities.Address) (uint64, error)
}

// RelayRepository is the audit ledger of relayed transfers.
type RelayRepository interface {
	Create(ctx context.Context, relay *entities.RelayTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.RelayTransaction, error)
	GetByMessageHash(ctx context.Context, messageHash string) (*entities.RelayTransaction, error)
	MarkPosted(ctx context.Context, id uuid.UUID, sequence uint64, messageHash string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.RelayStatus, errorMsg string) error
}
