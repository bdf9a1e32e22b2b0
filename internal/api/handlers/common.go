package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
	domainerrors "github.com/relayer-service/relayer_service/internal/domain/errors"
)

// ErrorResponse is the uniform error body returned by every endpoint.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondDomainError maps a domain error onto an HTTP status and the
// uniform error body. Unknown errors become opaque 500s; their detail
// stays in the logs.
func respondDomainError(c *gin.Context, err error) {
	var domainErr *domainerrors.DomainError
	if !errors.As(err, &domainErr) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case domainerrors.Is(domainErr, domainerrors.ErrNotFound):
		status = http.StatusNotFound
	case domainerrors.Is(domainErr, domainerrors.ErrInvalidInput):
		status = http.StatusBadRequest
	case domainerrors.Is(domainErr, domainerrors.ErrUnauthorized):
		status = http.StatusForbidden
	case domainerrors.Is(domainErr, domainerrors.ErrAlreadyExists),
		domainerrors.Is(domainErr, domainerrors.ErrConflict):
		status = http.StatusConflict
	case domainerrors.Is(domainErr, domainerrors.ErrCalculation):
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, ErrorResponse{Code: domainErr.Code, Message: domainErr.Message})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_REQUEST", Message: message})
}

// signerFromContext returns the signer address installed by the
// RequireSigner middleware.
func signerFromContext(c *gin.Context) (entities.Address, bool) {
	v, ok := c.Get("signer")
	if !ok {
		return entities.ZeroAddress, false
	}
	signer, ok := v.(entities.Address)
	return signer, ok
}

// parseAddressParam parses a hex address out of a path or body field.
func parseAddress(c *gin.Context, value string) (entities.Address, bool) {
	addr, err := entities.ParseAddress(value)
	if err != nil {
		respondBadRequest(c, "invalid address: "+value)
		return entities.ZeroAddress, false
	}
	return addr, true
}
