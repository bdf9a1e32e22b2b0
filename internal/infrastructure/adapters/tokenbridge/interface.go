package tokenbridge

import (
	"context"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
)

// BridgeClient is the narrow surface this service consumes from the
// message-passing token bridge.
type BridgeClient interface {
	// PostMessageWithPayload publishes an outbound transfer message and
	// returns the bridge-assigned sequence.
	PostMessageWithPayload(ctx context.Context, req *PostMessageRequest) (*PostedMessage, error)

	// GetAttestedTransfer fetches a verified inbound transfer by id.
	GetAttestedTransfer(ctx context.Context, messageID string) (*AttestedTransfer, error)

	// IsClaimed reports whether the transfer behind messageHash has
	// already been redeemed. The bridge's own rejection of a second
	// claim is the ultimate backstop; this is the early check.
	IsClaimed(ctx context.Context, messageHash string) (bool, error)

	// ForeignEndpoint looks up the bridge's registered endpoint for a
	// foreign chain.
	ForeignEndpoint(ctx context.Context, chain uint16) (*ForeignEndpoint, error)

	// ListPendingForRedeemer returns attested, unclaimed transfers
	// addressed to the given redeemer.
	ListPendingForRedeemer(ctx context.Context, redeemer entities.Address) ([]*AttestedTransfer, error)
}

// Ensure Client implements BridgeClient
var _ BridgeClient = (*Client)(nil)
