package entities

import "time"

// OwnerConfig is the process-wide ownership singleton. PendingOwner is
// non-nil only while a two-phase ownership transfer is in flight.
type OwnerConfig struct {
	Owner        Address   `json:"owner" db:"owner"`
	Assistant    Address   `json:"assistant" db:"assistant"`
	PendingOwner *Address  `json:"pending_owner,omitempty" db:"pending_owner"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsOwner reports whether key is the current owner.
func (c *OwnerConfig) IsOwner(key Address) bool {
	return c.Owner == key
}

// IsAuthorized reports whether key is the owner or the assistant.
func (c *OwnerConfig) IsAuthorized(key Address) bool {
	return c.IsOwner(key) || c.Assistant == key
}

// IsPendingOwner reports whether key is the pending owner of an
// in-flight ownership transfer.
func (c *OwnerConfig) IsPendingOwner(key Address) bool {
	return c.PendingOwner != nil && *c.PendingOwner == key
}

// SenderConfig gates and prices outbound transfers.
type SenderConfig struct {
	Owner               Address   `json:"owner" db:"owner"`
	RelayerFeePrecision uint32    `json:"relayer_fee_precision" db:"relayer_fee_precision"`
	SwapRatePrecision   uint32    `json:"swap_rate_precision" db:"swap_rate_precision"`
	Paused              bool      `json:"paused" db:"paused"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// RedeemerConfig prices inbound redemptions and routes collected fees.
type RedeemerConfig struct {
	Owner               Address   `json:"owner" db:"owner"`
	RelayerFeePrecision uint32    `json:"relayer_fee_precision" db:"relayer_fee_precision"`
	SwapRatePrecision   uint32    `json:"swap_rate_precision" db:"swap_rate_precision"`
	FeeRecipient        Address   `json:"fee_recipient" db:"fee_recipient"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// SignerSequence is a per-payer monotonic counter used to derive unique
// outbound message nonces. Incremented exactly once per send.
type SignerSequence struct {
	Payer Address `json:"payer" db:"payer"`
	Value uint64  `json:"value" db:"value"`
}
