package tokenbridge

import "github.com/relayer-service/relayer_service/internal/domain/entities"

// PostMessageRequest asks the bridge to move custody-delegated tokens
// and publish the relay payload to the target chain.
type PostMessageRequest struct {
	Mint          entities.Address `json:"mint"`
	Amount        uint64           `json:"amount"`
	TargetChain   uint16           `json:"target_chain"`
	TargetAddress entities.Address `json:"target_address"`
	Nonce         uint32           `json:"nonce"`
	// SenderSequence is this relayer's per-payer outbound counter,
	// folded into the bridge message for uniqueness.
	SenderSequence uint64 `json:"sender_sequence"`
	Payload        []byte `json:"payload"`
	// EscrowKey is the temporary custody account holding the tokens.
	EscrowKey string `json:"escrow_key"`
}

// PostedMessage is the bridge's receipt for a published message.
type PostedMessage struct {
	Sequence    uint64 `json:"sequence"`
	MessageHash string `json:"messageHash"`
}

// AttestedTransfer is a cross-chain transfer whose authenticity the
// bridge has already verified. Amount is in the bridge's 8-decimal
// representation.
type AttestedTransfer struct {
	MessageID      string           `json:"messageId"`
	MessageHash    string           `json:"messageHash"`
	EmitterChain   uint16           `json:"emitterChain"`
	EmitterAddress entities.Address `json:"emitterAddress"`
	SourceChain    uint16           `json:"sourceChain"`
	TargetChain    uint16           `json:"targetChain"`
	TokenChain     uint16           `json:"tokenChain"`
	TokenAddress   entities.Address `json:"tokenAddress"`
	Amount         uint64           `json:"amount"`
	Payload        []byte           `json:"payload"`
}

// ForeignEndpoint is the bridge's own registration for a foreign chain.
type ForeignEndpoint struct {
	Chain   uint16           `json:"chain"`
	Address entities.Address `json:"address"`
	Key     string           `json:"key"`
}

type attestedTransfersResponse struct {
	Transfers []*AttestedTransfer `json:"transfers"`
}

type claimResponse struct {
	Claimed bool `json:"claimed"`
}
