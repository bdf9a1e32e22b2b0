package tokenbridge

import "fmt"

// ErrorResponse represents a bridge node API error response
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("token bridge API error [%d]: %s (code: %s)", e.StatusCode, e.Message, e.Code)
}

func (e *ErrorResponse) IsNotFound() bool {
	return e.StatusCode == 404
}

// ErrMessageNotFound indicates no attested transfer exists for the id,
// usually because attestation has not completed yet.
var ErrMessageNotFound = fmt.Errorf("attested transfer not found")

// ErrAmountOverflow indicates a wire amount does not fit the token's
// native decimal representation.
var ErrAmountOverflow = fmt.Errorf("denormalized amount overflows uint64")
