package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RelayDirection distinguishes outbound sends from inbound redemptions.
type RelayDirection string

const (
	RelayDirectionOutbound RelayDirection = "outbound"
	RelayDirectionInbound  RelayDirection = "inbound"
)

// RelayStatus is the lifecycle of a relay ledger entry.
type RelayStatus string

const (
	RelayStatusPending  RelayStatus = "pending"  // Accepted, not yet posted
	RelayStatusPosted   RelayStatus = "posted"   // Message posted to the bridge
	RelayStatusRedeemed RelayStatus = "redeemed" // Redemption completed
	RelayStatusFailed   RelayStatus = "failed"   // Error
)

// RelayTransaction is a ledger entry for one relayed transfer, outbound
// or inbound. Amounts are recorded in token base units for audit; the
// authoritative arithmetic always runs on the uint64 fields of the
// transfer itself.
type RelayTransaction struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Direction      RelayDirection  `json:"direction" db:"direction"`
	Payer          Address         `json:"payer" db:"payer"`
	Mint           Address         `json:"mint" db:"mint"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	ToNativeAmount decimal.Decimal `json:"to_native_amount" db:"to_native_amount"`
	RelayerFee     decimal.Decimal `json:"relayer_fee" db:"relayer_fee"`
	Chain          uint16          `json:"chain" db:"chain"`
	Recipient      Address         `json:"recipient" db:"recipient"`
	Sequence       uint64          `json:"sequence" db:"sequence"`
	MessageHash    string          `json:"message_hash,omitempty" db:"message_hash"`
	Status         RelayStatus     `json:"status" db:"status"`
	ErrorMessage   string          `json:"error_message,omitempty" db:"error_message"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// TransferRequest is an outbound send: bridge amount tokens of Mint to
// RecipientAddress on RecipientChain, converting ToNativeTokenAmount of
// them into destination gas on arrival.
type TransferRequest struct {
	Payer               Address `json:"payer"`
	Mint                Address `json:"mint"`
	Amount              uint64  `json:"amount"`
	ToNativeTokenAmount uint64  `json:"to_native_token_amount"`
	RecipientChain      uint16  `json:"recipient_chain"`
	RecipientAddress    Address `json:"recipient_address"`
	BatchID             uint32  `json:"batch_id"`
	// WrapNative indicates the payer is sending native currency to be
	// wrapped into its tokenized form before bridging.
	WrapNative bool `json:"wrap_native"`
}

// RedeemRequest completes an inbound transfer for an attested message.
type RedeemRequest struct {
	// Payer is the redeemer submitting the completion, usually the
	// off-chain relayer. Self-redemptions (payer == recipient) skip the
	// relayer fee and the native swap.
	Payer Address `json:"payer"`
	// MessageID references the attested transfer held by the bridge.
	MessageID string `json:"message_id"`
	// Recipient is the account the decoded payload must name.
	Recipient Address `json:"recipient"`
}

// RedeemResult reports the exact distribution of a completed redemption.
// TokenAmountIn + RelayerFee + RecipientAmount always equals the
// denormalized transfer amount.
type RedeemResult struct {
	Amount          uint64 `json:"amount"`
	RecipientAmount uint64 `json:"recipient_amount"`
	RelayerFee      uint64 `json:"relayer_fee"`
	TokenAmountIn   uint64 `json:"token_amount_in"`
	NativeAmountOut uint64 `json:"native_amount_out"`
	SelfRedeemed    bool   `json:"self_redeemed"`
}
