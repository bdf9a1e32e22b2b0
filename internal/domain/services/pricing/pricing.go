// Package pricing implements the fixed-point arithmetic that converts
// USD-denominated relayer fees into token units and sizes native-gas
// swaps. All intermediates run through 256-bit integers but are bounded
// to 128 bits at every step, matching the checked u128 arithmetic the
// on-chain math is defined in. Division truncates toward zero.
package pricing

import (
	"github.com/holiman/uint256"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
	domainerrors "github.com/relayer-service/relayer_service/internal/domain/errors"
)

// maxUint128 bounds every intermediate value.
var maxUint128 = uint256.MustFromHex("0xffffffffffffffffffffffffffffffff")

// errOverflow is the internal marker for any 128-bit overflow or
// non-representable result. Exported functions map it onto the domain
// taxonomy.
var errOverflow = domainerrors.ErrCalculation

// mul128 multiplies a and b, failing if the product exceeds 128 bits.
func mul128(a, b *uint256.Int) (*uint256.Int, error) {
	p := new(uint256.Int)
	if _, overflow := p.MulOverflow(a, b); overflow {
		return nil, errOverflow
	}
	if p.Gt(maxUint128) {
		return nil, errOverflow
	}
	return p, nil
}

// div128 divides a by b, truncating toward zero. Division by zero fails
// rather than panicking; callers exclude it by invariant.
func div128(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, errOverflow
	}
	return new(uint256.Int).Div(a, b), nil
}

// pow10 computes 10^n bounded to 128 bits.
func pow10(n uint8) (*uint256.Int, error) {
	p := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := uint8(0); i < n; i++ {
		var err error
		if p, err = mul128(p, ten); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func toUint64(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, errOverflow
	}
	return v.Uint64(), nil
}

// TokenFee converts a USD-scaled relayer fee into units of the token
// being transferred:
//
//	usdFee * 10^tokenDecimals * swapRatePrecision / (swapRate * relayerFeePrecision)
//
// The result is truncated, not rounded. Any 128-bit overflow, a zero
// divisor, or a result outside uint64 range yields ErrFeeCalculation.
func TokenFee(usdFee uint64, tokenDecimals uint8, swapRate uint64, relayerFeePrecision, swapRatePrecision uint32) (uint64, error) {
	fee, err := tokenFee(usdFee, tokenDecimals, swapRate, relayerFeePrecision, swapRatePrecision)
	if err != nil {
		return 0, domainerrors.ErrFeeCalculation
	}
	return fee, nil
}

func tokenFee(usdFee uint64, tokenDecimals uint8, swapRate uint64, relayerFeePrecision, swapRatePrecision uint32) (uint64, error) {
	scale, err := pow10(tokenDecimals)
	if err != nil {
		return 0, err
	}
	numerator, err := mul128(uint256.NewInt(usdFee), scale)
	if err != nil {
		return 0, err
	}
	if numerator, err = mul128(numerator, uint256.NewInt(uint64(swapRatePrecision))); err != nil {
		return 0, err
	}
	denominator, err := mul128(uint256.NewInt(swapRate), uint256.NewInt(uint64(relayerFeePrecision)))
	if err != nil {
		return 0, err
	}
	fee, err := div128(numerator, denominator)
	if err != nil {
		return 0, err
	}
	return toUint64(fee)
}

// NativeSwapRate computes the price of the native currency in terms of
// the token: swapRatePrecision * nativeSwapRate / tokenSwapRate. A zero
// result means the configured rates are grossly out of range and is
// treated as a failure, not a legitimate rate.
func NativeSwapRate(nativeSwapRate, tokenSwapRate uint64, swapRatePrecision uint32) (uint64, error) {
	rate, err := nativeSwapRateU256(nativeSwapRate, tokenSwapRate, swapRatePrecision)
	if err != nil {
		return 0, domainerrors.ErrInvalidSwapCalculation
	}
	return rate, nil
}

func nativeSwapRateU256(nativeSwapRate, tokenSwapRate uint64, swapRatePrecision uint32) (uint64, error) {
	product, err := mul128(uint256.NewInt(uint64(swapRatePrecision)), uint256.NewInt(nativeSwapRate))
	if err != nil {
		return 0, err
	}
	rate, err := div128(product, uint256.NewInt(tokenSwapRate))
	if err != nil {
		return 0, err
	}
	if rate.IsZero() {
		return 0, errOverflow
	}
	return toUint64(rate)
}

// MaxSwapAmountIn scales a token's native swap cap (denominated in
// native base units) into token-input units at the given native swap
// rate, adjusting for the decimal difference between the token and the
// native asset.
func MaxSwapAmountIn(maxNativeSwapAmount, nativeSwapRate uint64, tokenDecimals uint8, swapRatePrecision uint32) (uint64, error) {
	in, err := maxSwapAmountIn(maxNativeSwapAmount, nativeSwapRate, tokenDecimals, swapRatePrecision)
	if err != nil {
		return 0, domainerrors.ErrInvalidSwapCalculation
	}
	return in, nil
}

func maxSwapAmountIn(maxNativeSwapAmount, nativeSwapRate uint64, tokenDecimals uint8, swapRatePrecision uint32) (uint64, error) {
	product, err := mul128(uint256.NewInt(maxNativeSwapAmount), uint256.NewInt(nativeSwapRate))
	if err != nil {
		return 0, err
	}
	var result *uint256.Int
	if tokenDecimals > entities.NativeDecimals {
		scale, err := pow10(tokenDecimals - entities.NativeDecimals)
		if err != nil {
			return 0, err
		}
		if product, err = mul128(product, scale); err != nil {
			return 0, err
		}
		if result, err = div128(product, uint256.NewInt(uint64(swapRatePrecision))); err != nil {
			return 0, err
		}
	} else {
		scale, err := pow10(entities.NativeDecimals - tokenDecimals)
		if err != nil {
			return 0, err
		}
		divisor, err := mul128(scale, uint256.NewInt(uint64(swapRatePrecision)))
		if err != nil {
			return 0, err
		}
		if result, err = div128(product, divisor); err != nil {
			return 0, err
		}
	}
	return toUint64(result)
}

// CalculateNativeSwapAmounts sizes a swap-for-gas request against a
// registered token: it returns the token amount charged to the
// recipient's transfer and the native amount the relayer pays out.
// A zero request or a zero swap cap is not an error and yields (0, 0);
// so does an amount-out that truncates to zero, to avoid charging for a
// swap that pays nothing. Requests above the cap are clamped. The
// function is pure; any overflow in the chain yields
// ErrInvalidSwapCalculation.
func CalculateNativeSwapAmounts(token *entities.RegisteredToken, tokenDecimals uint8, nativeTokenSwapRate uint64, swapRatePrecision uint32, toNativeTokenAmount uint64) (uint64, uint64, error) {
	if toNativeTokenAmount == 0 || token.MaxNativeSwapAmount == 0 {
		return 0, 0, nil
	}

	nativeSwapRate, err := nativeSwapRateU256(nativeTokenSwapRate, token.SwapRate, swapRatePrecision)
	if err != nil {
		return 0, 0, domainerrors.ErrInvalidSwapCalculation
	}

	maxIn, err := maxSwapAmountIn(token.MaxNativeSwapAmount, nativeSwapRate, tokenDecimals, swapRatePrecision)
	if err != nil {
		return 0, 0, domainerrors.ErrInvalidSwapCalculation
	}

	tokenAmountIn := toNativeTokenAmount
	if tokenAmountIn > maxIn {
		tokenAmountIn = maxIn
	}

	nativeAmountOut, err := nativeSwapAmountOut(tokenAmountIn, nativeSwapRate, tokenDecimals, swapRatePrecision)
	if err != nil {
		return 0, 0, domainerrors.ErrInvalidSwapCalculation
	}

	// Truncating division can round the payout to zero; in that case
	// charge nothing rather than pair a nonzero amount-in with a zero
	// amount-out.
	if nativeAmountOut == 0 {
		return 0, 0, nil
	}
	return tokenAmountIn, nativeAmountOut, nil
}

func nativeSwapAmountOut(tokenAmountIn, nativeSwapRate uint64, tokenDecimals uint8, swapRatePrecision uint32) (uint64, error) {
	product, err := mul128(uint256.NewInt(uint64(swapRatePrecision)), uint256.NewInt(tokenAmountIn))
	if err != nil {
		return 0, err
	}
	var result *uint256.Int
	if tokenDecimals > entities.NativeDecimals {
		scale, err := pow10(tokenDecimals - entities.NativeDecimals)
		if err != nil {
			return 0, err
		}
		divisor, err := mul128(uint256.NewInt(nativeSwapRate), scale)
		if err != nil {
			return 0, err
		}
		if result, err = div128(product, divisor); err != nil {
			return 0, err
		}
	} else {
		scale, err := pow10(entities.NativeDecimals - tokenDecimals)
		if err != nil {
			return 0, err
		}
		if product, err = mul128(product, scale); err != nil {
			return 0, err
		}
		if result, err = div128(product, uint256.NewInt(nativeSwapRate)); err != nil {
			return 0, err
		}
	}
	return toUint64(result)
}
