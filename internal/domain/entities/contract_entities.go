package entities

import "time"

// ForeignContract is a trusted relayer contract on a foreign chain.
// An inbound attested message is accepted only if its emitter chain and
// address match this record exactly.
type ForeignContract struct {
	Chain uint16 `json:"chain" db:"chain"`
	// Address is the emitter address on the foreign chain. Never zero.
	Address Address `json:"address" db:"address"`
	// BridgeEndpoint is the token bridge's registered endpoint key for
	// the foreign chain, cross-referenced at registration time.
	BridgeEndpoint string `json:"bridge_endpoint" db:"bridge_endpoint"`
	// Fee is the USD-denominated relayer fee for transfers to this
	// chain, scaled by the configured relayer fee precision.
	Fee       uint64    `json:"fee" db:"fee"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Verify checks that an attested message's emitter matches this record.
func (f *ForeignContract) Verify(emitterChain uint16, emitterAddress Address) bool {
	return emitterChain == f.Chain && emitterAddress == f.Address
}
