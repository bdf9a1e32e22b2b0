package tokenbridge_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayer-service/relayer_service/internal/infrastructure/adapters/tokenbridge"
)

func TestTruncateAmount(t *testing.T) {
	// Decimals above 8 lose the residual below bridge precision.
	assert.Equal(t, uint64(1234567890), tokenbridge.TruncateAmount(1234567899, 9))
	assert.Equal(t, uint64(1234567800), tokenbridge.TruncateAmount(1234567899, 10))
	// At or below 8 decimals nothing is lost.
	assert.Equal(t, uint64(1234567899), tokenbridge.TruncateAmount(1234567899, 8))
	assert.Equal(t, uint64(1234567899), tokenbridge.TruncateAmount(1234567899, 6))
}

func TestNormalizeAmount(t *testing.T) {
	assert.Equal(t, uint64(123456789), tokenbridge.NormalizeAmount(1234567899, 9))
	assert.Equal(t, uint64(1234567899), tokenbridge.NormalizeAmount(1234567899, 8))
	assert.Equal(t, uint64(0), tokenbridge.NormalizeAmount(9, 9))
}

func TestDenormalizeAmount(t *testing.T) {
	got, err := tokenbridge.DenormalizeAmount(123456789, 9)
	require.NoError(t, err)
	assert.Equal(t, uint64(1234567890), got)

	got, err = tokenbridge.DenormalizeAmount(123456789, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(123456789), got)
}

func TestDenormalizeAmountOverflow(t *testing.T) {
	// 2^63 * 10 wraps uint64; the conversion must refuse, not wrap.
	_, err := tokenbridge.DenormalizeAmount(1<<63, 9)
	require.ErrorIs(t, err, tokenbridge.ErrAmountOverflow)

	// The largest value that still fits scales cleanly.
	got, err := tokenbridge.DenormalizeAmount(math.MaxUint64/10, 9)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/10*10), got)

	// At or below bridge precision no scaling happens, so no overflow.
	got, err = tokenbridge.DenormalizeAmount(math.MaxUint64, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), got)
}

func TestNormalizeDenormalizeRoundTrip(t *testing.T) {
	// Truncated amounts survive the round trip exactly.
	amount := uint64(987654321000)
	truncated := tokenbridge.TruncateAmount(amount, 12)
	normalized := tokenbridge.NormalizeAmount(truncated, 12)
	got, err := tokenbridge.DenormalizeAmount(normalized, 12)
	require.NoError(t, err)
	assert.Equal(t, truncated, got)
}

func TestDeriveStorageKey(t *testing.T) {
	a := tokenbridge.DeriveStorageKey(tokenbridge.SeedPrefixTmp, []byte{1, 2, 3})
	b := tokenbridge.DeriveStorageKey(tokenbridge.SeedPrefixTmp, []byte{1, 2, 3})
	c := tokenbridge.DeriveStorageKey(tokenbridge.SeedPrefixBridged, []byte{1, 2, 3})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
