package entities

import (
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Address is a 32-byte account or contract address in the bridge's
// universal format. EVM addresses are left-padded to 32 bytes.
type Address [32]byte

// ZeroAddress is the all-zero address, never valid as an owner,
// assistant, recipient or foreign emitter.
var ZeroAddress Address

// ParseAddress decodes a 64-character hex string (optionally 0x-prefixed)
// into an Address.
func ParseAddress(s string) (Address, error) {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	var a Address
	if len(s) != 64 {
		return a, fmt.Errorf("address must be 32 bytes of hex, got %d chars", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("invalid address hex: %w", err)
	}
	copy(a[:], b)
	return a, nil
}

// IsZero reports whether the address is all zero bytes.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Value implements driver.Valuer, storing addresses as lowercase hex text.
func (a Address) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner.
func (a *Address) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseAddress(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		parsed, err := ParseAddress(string(v))
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Address", src)
	}
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
