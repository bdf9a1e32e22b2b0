package custody

import (
	"fmt"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
)

type mintInfoResponse struct {
	Mint     entities.Address `json:"mint"`
	Decimals uint8            `json:"decimals"`
}

type transferRequest struct {
	Mint   entities.Address `json:"mint,omitempty"`
	From   entities.Address `json:"from"`
	To     entities.Address `json:"to"`
	Amount uint64           `json:"amount"`
}

type approveRequest struct {
	Mint     entities.Address `json:"mint"`
	Delegate entities.Address `json:"delegate"`
	Amount   uint64           `json:"amount"`
}

type escrowRequest struct {
	Mint      entities.Address `json:"mint"`
	EscrowKey string           `json:"escrow_key"`
}

type escrowResponse struct {
	Address entities.Address `json:"address"`
}

type escrowCloseRequest struct {
	EscrowKey   string           `json:"escrow_key"`
	Destination entities.Address `json:"destination"`
}

type wrapRequest struct {
	EscrowKey string `json:"escrow_key"`
	Amount    uint64 `json:"amount"`
}

type mintRequest struct {
	Mint   entities.Address `json:"mint"`
	To     entities.Address `json:"to"`
	Amount uint64           `json:"amount"`
}

// ErrorResponse represents a custody API error response
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("custody API error [%d]: %s (code: %s)", e.StatusCode, e.Message, e.Code)
}
