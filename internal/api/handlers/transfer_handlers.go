package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
	"github.com/relayer-service/relayer_service/internal/domain/services/transfer"
	"github.com/relayer-service/relayer_service/pkg/metrics"
)

// TransferHandlers exposes outbound transfers and fee quotes.
type TransferHandlers struct {
	transferService *transfer.Service
	logger          *zap.Logger
}

// NewTransferHandlers creates new transfer handlers
func NewTransferHandlers(transferService *transfer.Service, logger *zap.Logger) *TransferHandlers {
	return &TransferHandlers{transferService: transferService, logger: logger}
}

type transferRequest struct {
	Mint                string `json:"mint" binding:"required"`
	Amount              uint64 `json:"amount" binding:"required"`
	ToNativeTokenAmount uint64 `json:"to_native_token_amount"`
	RecipientChain      uint16 `json:"recipient_chain" binding:"required"`
	RecipientAddress    string `json:"recipient_address" binding:"required"`
	BatchID             uint32 `json:"batch_id"`
	WrapNative          bool   `json:"wrap_native"`
}

// Create executes an outbound transfer for the signing payer.
func (h *TransferHandlers) Create(c *gin.Context) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	mint, ok := parseAddress(c, req.Mint)
	if !ok {
		return
	}
	recipient, ok := parseAddress(c, req.RecipientAddress)
	if !ok {
		return
	}

	start := time.Now()
	relay, err := h.transferService.TransferTokensWithRelay(c.Request.Context(), &entities.TransferRequest{
		Payer:               signer,
		Mint:                mint,
		Amount:              req.Amount,
		ToNativeTokenAmount: req.ToNativeTokenAmount,
		RecipientChain:      req.RecipientChain,
		RecipientAddress:    recipient,
		BatchID:             req.BatchID,
		WrapNative:          req.WrapNative,
	})
	metrics.RelayDuration.WithLabelValues(string(entities.RelayDirectionOutbound)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordRelay(string(entities.RelayDirectionOutbound), "failed")
		respondDomainError(c, err)
		return
	}
	metrics.RecordRelay(string(entities.RelayDirectionOutbound), "posted")
	c.JSON(http.StatusCreated, relay)
}

// Get returns a relay ledger entry.
func (h *TransferHandlers) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid relay id")
		return
	}
	relay, err := h.transferService.GetRelay(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, relay)
}

// Quote prices the relayer fee for a mint and target chain.
func (h *TransferHandlers) Quote(c *gin.Context) {
	mint, ok := parseAddress(c, c.Query("mint"))
	if !ok {
		return
	}
	chain, err := strconv.ParseUint(c.Query("chain"), 10, 16)
	if err != nil {
		respondBadRequest(c, "invalid chain id")
		return
	}
	quote, err := h.transferService.QuoteRelayerFee(c.Request.Context(), mint, uint16(chain))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
