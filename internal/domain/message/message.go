// Package message implements the fixed-width wire format for relay
// payloads carried through the token bridge. Numeric fields ride in
// 32-byte big-endian words for compatibility with EVM-style contracts
// on the other end; only the low 8 bytes of each word may be nonzero.
package message

import (
	"encoding/binary"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
	domainerrors "github.com/relayer-service/relayer_service/internal/domain/errors"
)

// PayloadIDTransferWithRelay tags the only payload understood today.
// Unknown tags must be rejected, never defaulted.
const PayloadIDTransferWithRelay byte = 1

// EncodedLength is the exact size of an encoded TransferWithRelay:
// 1 tag byte + two 32-byte words + a 32-byte recipient.
const EncodedLength = 97

const wordSize = 32
const padSize = wordSize - 8

// TransferWithRelay instructs the destination contract how to split a
// bridged transfer between the recipient, the relayer fee and a native
// gas swap. Both amounts are 8-decimal normalized values.
type TransferWithRelay struct {
	TargetRelayerFee    uint64
	ToNativeTokenAmount uint64
	Recipient           entities.Address
}

// Encode serializes the message into its 97-byte wire form.
func (m *TransferWithRelay) Encode() []byte {
	buf := make([]byte, EncodedLength)
	buf[0] = PayloadIDTransferWithRelay
	binary.BigEndian.PutUint64(buf[1+padSize:1+wordSize], m.TargetRelayerFee)
	binary.BigEndian.PutUint64(buf[1+wordSize+padSize:1+2*wordSize], m.ToNativeTokenAmount)
	copy(buf[1+2*wordSize:], m.Recipient[:])
	return buf
}

// Decode parses a TransferWithRelay from its wire form. It rejects any
// buffer that is not exactly 97 bytes, carries an unknown payload tag,
// or has nonzero padding in either amount word (a value that cannot be
// represented in 64 bits).
func Decode(buf []byte) (*TransferWithRelay, error) {
	if len(buf) != EncodedLength {
		return nil, domainerrors.ErrInvalidPayload
	}
	switch buf[0] {
	case PayloadIDTransferWithRelay:
	default:
		return nil, domainerrors.ErrInvalidPayload
	}

	fee, ok := decodeWord(buf[1 : 1+wordSize])
	if !ok {
		return nil, domainerrors.ErrInvalidPayload
	}
	toNative, ok := decodeWord(buf[1+wordSize : 1+2*wordSize])
	if !ok {
		return nil, domainerrors.ErrInvalidPayload
	}

	var recipient entities.Address
	copy(recipient[:], buf[1+2*wordSize:])

	return &TransferWithRelay{
		TargetRelayerFee:    fee,
		ToNativeTokenAmount: toNative,
		Recipient:           recipient,
	}, nil
}

// decodeWord reads a uint64 from a 32-byte big-endian word, verifying
// the 24 leading padding bytes are zero.
func decodeWord(word []byte) (uint64, bool) {
	for _, b := range word[:padSize] {
		if b != 0 {
			return 0, false
		}
	}
	return binary.BigEndian.Uint64(word[padSize:]), true
}
