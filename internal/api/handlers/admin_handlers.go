package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
	"github.com/relayer-service/relayer_service/internal/domain/services/admin"
)

// AdminHandlers exposes the owner-facing control surface. Every
// mutation reads the signer from the RequireSigner middleware and lets
// the service decide whether that key is allowed.
type AdminHandlers struct {
	adminService *admin.Service
	logger       *zap.Logger
}

// NewAdminHandlers creates new admin handlers
func NewAdminHandlers(adminService *admin.Service, logger *zap.Logger) *AdminHandlers {
	return &AdminHandlers{adminService: adminService, logger: logger}
}

type initializeRequest struct {
	Owner               string `json:"owner" binding:"required"`
	Assistant           string `json:"assistant" binding:"required"`
	FeeRecipient        string `json:"fee_recipient" binding:"required"`
	RelayerFeePrecision uint32 `json:"relayer_fee_precision" binding:"required"`
	SwapRatePrecision   uint32 `json:"swap_rate_precision" binding:"required"`
}

// Initialize seeds the owner, sender and redeemer configs.
func (h *AdminHandlers) Initialize(c *gin.Context) {
	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	owner, ok := parseAddress(c, req.Owner)
	if !ok {
		return
	}
	assistant, ok := parseAddress(c, req.Assistant)
	if !ok {
		return
	}
	feeRecipient, ok := parseAddress(c, req.FeeRecipient)
	if !ok {
		return
	}

	if err := h.adminService.Initialize(c.Request.Context(), owner, assistant, feeRecipient, req.RelayerFeePrecision, req.SwapRatePrecision); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

type registerTokenRequest struct {
	Mint                string `json:"mint" binding:"required"`
	SwapRate            uint64 `json:"swap_rate" binding:"required"`
	MaxNativeSwapAmount uint64 `json:"max_native_swap_amount"`
}

// RegisterToken registers a mint for relayed transfers.
func (h *AdminHandlers) RegisterToken(c *gin.Context) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	var req registerTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	mint, ok := parseAddress(c, req.Mint)
	if !ok {
		return
	}

	token, err := h.adminService.RegisterToken(c.Request.Context(), signer, mint, req.SwapRate, req.MaxNativeSwapAmount)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

// GetToken returns a token's registration.
func (h *AdminHandlers) GetToken(c *gin.Context) {
	mint, ok := parseAddress(c, c.Param("mint"))
	if !ok {
		return
	}
	token, err := h.adminService.GetRegisteredToken(c.Request.Context(), mint)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// DeregisterToken removes a mint from the registry.
func (h *AdminHandlers) DeregisterToken(c *gin.Context) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	mint, ok := parseAddress(c, c.Param("mint"))
	if !ok {
		return
	}
	if err := h.adminService.DeregisterToken(c.Request.Context(), signer, mint); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateSwapRateRequest struct {
	SwapRate uint64 `json:"swap_rate" binding:"required"`
}

// UpdateSwapRate changes a registered token's swap rate.
func (h *AdminHandlers) UpdateSwapRate(c *gin.Context) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	mint, ok := parseAddress(c, c.Param("mint"))
	if !ok {
		return
	}
	var req updateSwapRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := h.adminService.UpdateSwapRate(c.Request.Context(), signer, mint, req.SwapRate); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateMaxSwapRequest struct {
	MaxNativeSwapAmount uint64 `json:"max_native_swap_amount"`
}

// UpdateMaxNativeSwapAmount changes a registered token's swap cap.
func (h *AdminHandlers) UpdateMaxNativeSwapAmount(c *gin.Context) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	mint, ok := parseAddress(c, c.Param("mint"))
	if !ok {
		return
	}
	var req updateMaxSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := h.adminService.UpdateMaxNativeSwapAmount(c.Request.Context(), signer, mint, req.MaxNativeSwapAmount); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type registerContractRequest struct {
	Chain   uint16 `json:"chain" binding:"required"`
	Address string `json:"address" binding:"required"`
	Fee     uint64 `json:"fee"`
}

// RegisterForeignContract registers the trusted contract for a chain.
func (h *AdminHandlers) RegisterForeignContract(c *gin.Context) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	var req registerContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	address, ok := parseAddress(c, req.Address)
	if !ok {
		return
	}
	contract, err := h.adminService.RegisterForeignContract(c.Request.Context(), signer, req.Chain, address, req.Fee)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

// GetForeignContract returns the registered contract for a chain.
func (h *AdminHandlers) GetForeignContract(c *gin.Context) {
	chain, ok := parseChainParam(c)
	if !ok {
		return
	}
	contract, err := h.adminService.GetForeignContract(c.Request.Context(), chain)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

type updateFeeRequest struct {
	Fee uint64 `json:"fee"`
}

// UpdateRelayerFee changes a chain's USD relayer fee.
func (h *AdminHandlers) UpdateRelayerFee(c *gin.Context) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	chain, ok := parseChainParam(c)
	if !ok {
		return
	}
	var req updateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := h.adminService.UpdateRelayerFee(c.Request.Context(), signer, chain, req.Fee); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updatePrecisionRequest struct {
	Precision uint32 `json:"precision" binding:"required"`
}

// UpdateRelayerFeePrecision changes the stored fee precision.
func (h *AdminHandlers) UpdateRelayerFeePrecision(c *gin.Context) {
	h.updatePrecision(c, h.adminService.UpdateRelayerFeePrecision)
}

// UpdateSwapRatePrecision changes the stored swap rate precision.
func (h *AdminHandlers) UpdateSwapRatePrecision(c *gin.Context) {
	h.updatePrecision(c, h.adminService.UpdateSwapRatePrecision)
}

func (h *AdminHandlers) updatePrecision(c *gin.Context, update func(ctx context.Context, signer entities.Address, precision uint32) error) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	var req updatePrecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := update(c.Request.Context(), signer, req.Precision); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type pauseRequest struct {
	Paused *bool `json:"paused" binding:"required"`
}

// SetPause pauses or resumes outbound transfers.
func (h *AdminHandlers) SetPause(c *gin.Context) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	var req pauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := h.adminService.SetPauseForTransfers(c.Request.Context(), signer, *req.Paused); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type ownershipRequest struct {
	NewOwner string `json:"new_owner" binding:"required"`
}

// SubmitOwnershipTransfer starts a two-phase ownership transfer.
func (h *AdminHandlers) SubmitOwnershipTransfer(c *gin.Context) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	var req ownershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	newOwner, ok := parseAddress(c, req.NewOwner)
	if !ok {
		return
	}
	if err := h.adminService.SubmitOwnershipTransferRequest(c.Request.Context(), signer, newOwner); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ConfirmOwnershipTransfer completes a pending ownership transfer.
func (h *AdminHandlers) ConfirmOwnershipTransfer(c *gin.Context) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	if err := h.adminService.ConfirmOwnershipTransferRequest(c.Request.Context(), signer); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CancelOwnershipTransfer abandons a pending ownership transfer.
func (h *AdminHandlers) CancelOwnershipTransfer(c *gin.Context) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	if err := h.adminService.CancelOwnershipTransferRequest(c.Request.Context(), signer); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateAssistantRequest struct {
	Assistant string `json:"assistant" binding:"required"`
}

// UpdateAssistant replaces the owner's assistant key.
func (h *AdminHandlers) UpdateAssistant(c *gin.Context) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	var req updateAssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	assistant, ok := parseAddress(c, req.Assistant)
	if !ok {
		return
	}
	if err := h.adminService.UpdateAssistant(c.Request.Context(), signer, assistant); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateFeeRecipientRequest struct {
	FeeRecipient string `json:"fee_recipient" binding:"required"`
}

// UpdateFeeRecipient replaces the fee collection account.
func (h *AdminHandlers) UpdateFeeRecipient(c *gin.Context) {
	signer, ok := signerFromContext(c)
	if !ok {
		respondBadRequest(c, "missing signer")
		return
	}
	var req updateFeeRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	feeRecipient, ok := parseAddress(c, req.FeeRecipient)
	if !ok {
		return
	}
	if err := h.adminService.UpdateFeeRecipient(c.Request.Context(), signer, feeRecipient); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetConfig returns the owner, sender and redeemer configs together.
func (h *AdminHandlers) GetConfig(c *gin.Context) {
	ctx := c.Request.Context()
	owner, err := h.adminService.GetOwnerConfig(ctx)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	sender, err := h.adminService.GetSenderConfig(ctx)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	redeemer, err := h.adminService.GetRedeemerConfig(ctx)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"owner":    owner,
		"sender":   sender,
		"redeemer": redeemer,
	})
}

func parseChainParam(c *gin.Context) (uint16, bool) {
	chain, err := strconv.ParseUint(c.Param("chain"), 10, 16)
	if err != nil {
		respondBadRequest(c, "invalid chain id: "+c.Param("chain"))
		return 0, false
	}
	return uint16(chain), true
}
