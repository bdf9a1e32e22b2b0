package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
	"github.com/relayer-service/relayer_service/internal/domain/services/redeem"
	"github.com/relayer-service/relayer_service/pkg/metrics"
)

// RedeemHandlers exposes manual redemption of attested transfers; the
// redemption worker covers the same path automatically.
type RedeemHandlers struct {
	redeemService *redeem.Service
	logger        *zap.Logger
}

// NewRedeemHandlers creates new redeem handlers
func NewRedeemHandlers(redeemService *redeem.Service, logger *zap.Logger) *RedeemHandlers {
	return &RedeemHandlers{redeemService: redeemService, logger: logger}
}

type redeemRequest struct {
	MessageID string `json:"message_id" binding:"required"`
	Recipient string `json:"recipient" binding:"required"`
}

// Create completes an attested inbound transfer as the signing payer.
func (h *RedeemHandlers) Create(c *gin.Context) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	recipient, ok := parseAddress(c, req.Recipient)
	if !ok {
		return
	}

	start := time.Now()
	result, err := h.redeemService.CompleteTransferWithRelay(c.Request.Context(), &entities.RedeemRequest{
		Payer:     signer,
		MessageID: req.MessageID,
		Recipient: recipient,
	})
	metrics.RelayDuration.WithLabelValues(string(entities.RelayDirectionInbound)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordRelay(string(entities.RelayDirectionInbound), "failed")
		respondDomainError(c, err)
		return
	}
	metrics.RecordRelay(string(entities.RelayDirectionInbound), "redeemed")
	c.JSON(http.StatusOK, result)
}
