package errors

// Relay error taxonomy. Authorization and validation failures are
// checked before any state mutation; arithmetic failures surface as a
// distinct category so operators can tell misconfiguration apart from
// bad input.
var (
	// ErrOwnerOnly: only the program's owner is permitted.
	ErrOwnerOnly = &DomainError{Err: ErrUnauthorized, Code: "OWNER_ONLY", Message: "only the owner is permitted"}

	// ErrOwnerOrAssistantOnly: only the owner or assistant is permitted.
	ErrOwnerOrAssistantOnly = &DomainError{Err: ErrUnauthorized, Code: "OWNER_OR_ASSISTANT_ONLY", Message: "only the owner or assistant is permitted"}

	// ErrNotPendingOwner: only the pending owner may confirm a transfer.
	ErrNotPendingOwner = &DomainError{Err: ErrUnauthorized, Code: "NOT_PENDING_OWNER", Message: "only the pending owner is permitted"}

	// ErrAlreadyTheOwner: proposed owner already owns the program.
	ErrAlreadyTheOwner = &DomainError{Err: ErrConflict, Code: "ALREADY_THE_OWNER", Message: "key is already the owner"}

	// ErrAlreadyTheAssistant: proposed assistant is already set.
	ErrAlreadyTheAssistant = &DomainError{Err: ErrConflict, Code: "ALREADY_THE_ASSISTANT", Message: "key is already the assistant"}

	// ErrAlreadyTheFeeRecipient: proposed fee recipient is already set.
	ErrAlreadyTheFeeRecipient = &DomainError{Err: ErrConflict, Code: "ALREADY_THE_FEE_RECIPIENT", Message: "key is already the fee recipient"}

	// ErrNoPendingOwner: no ownership transfer is in flight.
	ErrNoPendingOwner = &DomainError{Err: ErrConflict, Code: "NO_PENDING_OWNER", Message: "no pending ownership transfer"}

	// ErrInvalidPublicKey: the zero address is not a usable key.
	ErrInvalidPublicKey = &DomainError{Err: ErrInvalidInput, Code: "INVALID_PUBLIC_KEY", Message: "address must not be zero"}

	// ErrOutboundTransfersPaused: outbound transfers are paused.
	ErrOutboundTransfersPaused = &DomainError{Err: ErrConflict, Code: "OUTBOUND_TRANSFERS_PAUSED", Message: "outbound transfers are paused"}

	// ErrTokenNotRegistered: mint has no active registration.
	ErrTokenNotRegistered = &DomainError{Err: ErrNotFound, Code: "TOKEN_NOT_REGISTERED", Message: "token is not registered"}

	// ErrTokenAlreadyRegistered: mint is already registered.
	ErrTokenAlreadyRegistered = &DomainError{Err: ErrAlreadyExists, Code: "TOKEN_ALREADY_REGISTERED", Message: "token is already registered"}

	// ErrChainNotRegistered: no foreign contract for the chain.
	ErrChainNotRegistered = &DomainError{Err: ErrNotFound, Code: "CHAIN_NOT_REGISTERED", Message: "no foreign contract registered for chain"}

	// ErrZeroSwapRate: swap rate must be nonzero.
	ErrZeroSwapRate = &DomainError{Err: ErrInvalidInput, Code: "ZERO_SWAP_RATE", Message: "swap rate must be nonzero"}

	// ErrInvalidPrecision: precision values must be nonzero.
	ErrInvalidPrecision = &DomainError{Err: ErrInvalidInput, Code: "INVALID_PRECISION", Message: "precision must be nonzero"}

	// ErrSwapsNotAllowedForNativeMint: the native asset cannot swap for itself.
	ErrSwapsNotAllowedForNativeMint = &DomainError{Err: ErrInvalidInput, Code: "SWAPS_NOT_ALLOWED_FOR_NATIVE_MINT", Message: "native mint cannot have a native swap amount"}

	// ErrInvalidForeignContract: bad chain id or zero emitter address.
	ErrInvalidForeignContract = &DomainError{Err: ErrInvalidInput, Code: "INVALID_FOREIGN_CONTRACT", Message: "foreign contract has a bad chain id or zero address"}

	// ErrInvalidRecipient: bad recipient chain or address, or decoded
	// recipient disagrees with the submitted one.
	ErrInvalidRecipient = &DomainError{Err: ErrInvalidInput, Code: "INVALID_RECIPIENT", Message: "invalid recipient chain or address"}

	// ErrZeroBridgeAmount: amount truncates to zero at bridge precision.
	ErrZeroBridgeAmount = &DomainError{Err: ErrInvalidInput, Code: "ZERO_BRIDGE_AMOUNT", Message: "transfer amount rounds to zero at bridge precision"}

	// ErrInvalidToNativeAmount: nonzero amount normalizes to zero.
	ErrInvalidToNativeAmount = &DomainError{Err: ErrInvalidInput, Code: "INVALID_TO_NATIVE_AMOUNT", Message: "to-native amount must be zero or nonzero when normalized"}

	// ErrInsufficientFunds: amount does not strictly exceed the swap
	// allocation plus the relayer fee.
	ErrInsufficientFunds = &DomainError{Err: ErrInvalidInput, Code: "INSUFFICIENT_FUNDS", Message: "amount must exceed to-native amount plus relayer fee"}

	// ErrFeeCalculation: relayer fee arithmetic overflowed.
	ErrFeeCalculation = &DomainError{Err: ErrCalculation, Code: "FEE_CALCULATION_ERROR", Message: "token fee calculation overflowed"}

	// ErrInvalidSwapCalculation: native swap arithmetic overflowed.
	ErrInvalidSwapCalculation = &DomainError{Err: ErrCalculation, Code: "INVALID_SWAP_CALCULATION", Message: "native swap calculation overflowed"}

	// ErrAlreadyRedeemed: the attested transfer was already claimed.
	ErrAlreadyRedeemed = &DomainError{Err: ErrConflict, Code: "ALREADY_REDEEMED", Message: "transfer has already been redeemed"}

	// ErrInvalidPayload: payload bytes do not decode as a relay message.
	ErrInvalidPayload = &DomainError{Err: ErrInvalidInput, Code: "INVALID_PAYLOAD", Message: "invalid relay message payload"}
)
