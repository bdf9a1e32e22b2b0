package entities

import "time"

// NativeDecimals is the decimal count of the host chain's native currency.
const NativeDecimals uint8 = 9

// RegisteredToken is a token mint accepted for relayed transfers.
// A registered token always carries a nonzero swap rate; a zero
// MaxNativeSwapAmount disables native-gas swaps for the token.
type RegisteredToken struct {
	Mint                Address   `json:"mint" db:"mint"`
	SwapRate            uint64    `json:"swap_rate" db:"swap_rate"`
	MaxNativeSwapAmount uint64    `json:"max_native_swap_amount" db:"max_native_swap_amount"`
	IsRegistered        bool      `json:"is_registered" db:"is_registered"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// SwapsEnabled reports whether native-gas swaps are possible for this token.
func (t *RegisteredToken) SwapsEnabled() bool {
	return t.IsRegistered && t.MaxNativeSwapAmount > 0
}
