package tokenbridge

import "math"

// BridgeDecimals is the fixed decimal precision of amounts on the wire.
// Tokens with more decimals lose the residual below this precision.
const BridgeDecimals uint8 = 8

func pow10(n uint8) uint64 {
	p := uint64(1)
	for i := uint8(0); i < n; i++ {
		p *= 10
	}
	return p
}

// TruncateAmount drops the residual of amount below the bridge's
// 8-decimal precision, returning the portion that will actually bridge.
func TruncateAmount(amount uint64, decimals uint8) uint64 {
	if decimals <= BridgeDecimals {
		return amount
	}
	scale := pow10(decimals - BridgeDecimals)
	return amount - amount%scale
}

// NormalizeAmount converts amount from the token's native decimal count
// to the bridge's 8-decimal representation.
func NormalizeAmount(amount uint64, decimals uint8) uint64 {
	if decimals <= BridgeDecimals {
		return amount
	}
	return amount / pow10(decimals-BridgeDecimals)
}

// DenormalizeAmount converts an 8-decimal bridge amount back to the
// token's native decimal count. Wire amounts are attacker-controlled,
// so the widening multiply is checked rather than left to wrap.
func DenormalizeAmount(amount uint64, decimals uint8) (uint64, error) {
	if decimals <= BridgeDecimals {
		return amount, nil
	}
	scale := pow10(decimals - BridgeDecimals)
	if amount > math.MaxUint64/scale {
		return 0, ErrAmountOverflow
	}
	return amount * scale, nil
}
