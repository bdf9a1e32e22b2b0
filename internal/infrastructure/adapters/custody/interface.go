package custody

import (
	"context"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
)

// CustodyClient is the token custody surface this service consumes:
// moving tokens between custody accounts, delegating bounded spending
// to the bridge, temporary escrow accounts, native currency wrapping
// and bridge-authority minting for wrapped assets. Errors propagate
// verbatim; money movement is never retried here.
type CustodyClient interface {
	// TokenDecimals returns the decimal count of a mint.
	TokenDecimals(ctx context.Context, mint entities.Address) (uint8, error)

	// Transfer moves tokens between custody accounts.
	Transfer(ctx context.Context, mint, from, to entities.Address, amount uint64) error

	// TransferNative moves native currency from payer to recipient,
	// funding a gas-drop swap out-of-band.
	TransferNative(ctx context.Context, from, to entities.Address, amount uint64) error

	// Approve delegates spending of up to amount to the bridge's
	// authority signer.
	Approve(ctx context.Context, mint, delegate entities.Address, amount uint64) error

	// OpenEscrow creates a temporary custody account at the derived
	// storage key and returns its address.
	OpenEscrow(ctx context.Context, mint entities.Address, escrowKey string) (entities.Address, error)

	// CloseEscrow drains and closes a temporary custody account,
	// returning the residual to destination.
	CloseEscrow(ctx context.Context, escrowKey string, destination entities.Address) error

	// WrapNative converts native currency into its tokenized form
	// inside the escrow account.
	WrapNative(ctx context.Context, escrowKey string, amount uint64) error

	// UnwrapNative converts tokenized native currency in escrow back
	// into native currency paid to destination.
	UnwrapNative(ctx context.Context, escrowKey string, destination entities.Address) error

	// MintWrapped mints a bridge-wrapped asset into a custody account
	// under the bridge-held mint authority.
	MintWrapped(ctx context.Context, mint, to entities.Address, amount uint64) error
}

// Ensure Client implements CustodyClient
var _ CustodyClient = (*Client)(nil)
