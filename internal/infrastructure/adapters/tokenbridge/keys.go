package tokenbridge

import (
	"crypto/sha256"
	"encoding/hex"
)

// Storage seed prefixes shared with the on-chain deployment. Records
// live at deterministic locations derived from a textual prefix plus
// discriminating key material.
const (
	SeedPrefixBridged = "bridged"
	SeedPrefixTmp     = "tmp"
)

// DeriveStorageKey computes the deterministic storage key for a prefix
// and its discriminating parts (token mint, chain id, payer address).
func DeriveStorageKey(prefix string, parts ...[]byte) string {
	h := sha256.New()
	h.Write([]byte(prefix))
	for _, p := range parts {
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
