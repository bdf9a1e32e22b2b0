package pricing_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
	domainerrors "github.com/relayer-service/relayer_service/internal/domain/errors"
	"github.com/relayer-service/relayer_service/internal/domain/services/pricing"
)

const precision uint32 = 100000000 // 1e8

func TestTokenFee(t *testing.T) {
	const usdFee = uint64(42000000000)  // $420.00
	const swapRate = uint64(6900000000) // $69.00

	cases := []struct {
		name     string
		decimals uint8
		expected uint64
	}{
		{"decimals 10", 10, 60869565217},
		{"decimals 9", 9, 6086956521},
		{"decimals 8", 8, 608695652},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fee, err := pricing.TokenFee(usdFee, tc.decimals, swapRate, precision, precision)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, fee)
		})
	}
}

func TestTokenFee_ZeroFee(t *testing.T) {
	fee, err := pricing.TokenFee(0, 9, 6900000000, precision, precision)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), fee)
}

func TestTokenFee_Overflow(t *testing.T) {
	_, err := pricing.TokenFee(math.MaxUint64, 10, 1, 1, 1)
	assert.ErrorIs(t, err, domainerrors.ErrFeeCalculation)
}

func TestTokenFee_ZeroSwapRate(t *testing.T) {
	// Callers exclude a zero swap rate by invariant; the function must
	// still fail cleanly instead of panicking.
	_, err := pricing.TokenFee(42000000000, 9, 0, precision, precision)
	assert.ErrorIs(t, err, domainerrors.ErrFeeCalculation)
}

func TestTokenFee_ZeroPrecision(t *testing.T) {
	_, err := pricing.TokenFee(42000000000, 9, 6900000000, 0, precision)
	assert.ErrorIs(t, err, domainerrors.ErrFeeCalculation)
}

func TestNativeSwapRate(t *testing.T) {
	rate, err := pricing.NativeSwapRate(420000000000, 1000000000, precision)
	require.NoError(t, err)
	assert.Equal(t, uint64(42000000000), rate)

	rate, err = pricing.NativeSwapRate(420000000000, 6900000000, precision)
	require.NoError(t, err)
	assert.Equal(t, uint64(6086956521), rate)
}

func TestNativeSwapRate_ZeroResult(t *testing.T) {
	// A rate that truncates to zero means the configured swap rates are
	// grossly out of range.
	_, err := pricing.NativeSwapRate(1, 6900000000, precision)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSwapCalculation)
}

func TestNativeSwapRate_Overflow(t *testing.T) {
	_, err := pricing.NativeSwapRate(math.MaxUint64, 1, precision)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSwapCalculation)
}

func TestMaxSwapAmountIn(t *testing.T) {
	const maxNativeSwapAmount = uint64(1000000000) // 1 native token
	const nativeSwapRate = uint64(42000000000)

	cases := []struct {
		name     string
		max      uint64
		rate     uint64
		decimals uint8
		expected uint64
	}{
		{"decimals 10", maxNativeSwapAmount, nativeSwapRate, 10, 4200000000000},
		{"decimals 9", maxNativeSwapAmount, nativeSwapRate, 9, 420000000000},
		{"decimals 8", maxNativeSwapAmount, nativeSwapRate, 8, 42000000000},
		{"larger rate", maxNativeSwapAmount, 690000000000000, 9, 6900000000000000},
		{"smaller cap", 1000000, nativeSwapRate, 9, 420000000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, err := pricing.MaxSwapAmountIn(tc.max, tc.rate, tc.decimals, precision)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, in)
		})
	}
}

func TestMaxSwapAmountIn_Overflow(t *testing.T) {
	_, err := pricing.MaxSwapAmountIn(1000000, math.MaxUint64, 9, 1)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSwapCalculation)
}

func TestCalculateNativeSwapAmounts(t *testing.T) {
	const nativeTokenSwapRate = uint64(42000000000) // $420.00
	token := &entities.RegisteredToken{
		SwapRate:            1000000000,  // $10.00
		MaxNativeSwapAmount: 10000000000, // 10 native tokens
		IsRegistered:        true,
	}

	cases := []struct {
		name        string
		decimals    uint8
		toNative    uint64
		expectedIn  uint64
		expectedOut uint64
	}{
		{"decimals 10", 10, 10000000000, 10000000000, 23809523},
		{"decimals 9", 9, 10000000000, 10000000000, 238095238},
		{"decimals 8", 8, 10000000000, 10000000000, 2380952380},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, out, err := pricing.CalculateNativeSwapAmounts(token, tc.decimals, nativeTokenSwapRate, precision, tc.toNative)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedIn, in)
			assert.Equal(t, tc.expectedOut, out)
		})
	}
}

func TestCalculateNativeSwapAmounts_ZeroRequest(t *testing.T) {
	token := &entities.RegisteredToken{
		SwapRate:            1000000000,
		MaxNativeSwapAmount: 10000000000,
		IsRegistered:        true,
	}
	in, out, err := pricing.CalculateNativeSwapAmounts(token, 10, 42000000000, precision, 0)
	require.NoError(t, err)
	assert.Zero(t, in)
	assert.Zero(t, out)
}

func TestCalculateNativeSwapAmounts_SwapsDisabled(t *testing.T) {
	token := &entities.RegisteredToken{
		SwapRate:            1000000000,
		MaxNativeSwapAmount: 0,
		IsRegistered:        true,
	}
	in, out, err := pricing.CalculateNativeSwapAmounts(token, 10, 42000000000, precision, 10000000000)
	require.NoError(t, err)
	assert.Zero(t, in)
	assert.Zero(t, out)
}

func TestCalculateNativeSwapAmounts_ClampsToMax(t *testing.T) {
	token := &entities.RegisteredToken{
		SwapRate:            1000000000,
		MaxNativeSwapAmount: 1000000000, // 1 native token
		IsRegistered:        true,
	}
	// Request far beyond the cap: amount-in clamps to the computed max
	// and the payout lands exactly on the cap.
	in, out, err := pricing.CalculateNativeSwapAmounts(token, 10, 42000000000, precision, 6900000000000)
	require.NoError(t, err)
	assert.Equal(t, uint64(420000000000), in)
	assert.Equal(t, uint64(1000000000), out)
	assert.LessOrEqual(t, out, token.MaxNativeSwapAmount)
}

func TestCalculateNativeSwapAmounts_RoundsToZero(t *testing.T) {
	token := &entities.RegisteredToken{
		SwapRate:            1000000000,
		MaxNativeSwapAmount: 1000000000,
		IsRegistered:        true,
	}
	// A request this small truncates to a zero payout; the recipient
	// must not be charged for it.
	in, out, err := pricing.CalculateNativeSwapAmounts(token, 10, 42000000000, precision, 1)
	require.NoError(t, err)
	assert.Zero(t, in)
	assert.Zero(t, out)
}

func TestCalculateNativeSwapAmounts_Overflow(t *testing.T) {
	token := &entities.RegisteredToken{
		SwapRate:            100000000, // $1.00
		MaxNativeSwapAmount: math.MaxUint64,
		IsRegistered:        true,
	}
	_, _, err := pricing.CalculateNativeSwapAmounts(token, 10, 100000000, precision, math.MaxUint64)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSwapCalculation)

	_, _, err = pricing.CalculateNativeSwapAmounts(token, 8, math.MaxUint64, 1, math.MaxUint64)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSwapCalculation)
}
