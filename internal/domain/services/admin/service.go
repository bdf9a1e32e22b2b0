// Package admin implements the owner-facing control surface: token
// registration, foreign contract registration, fee and precision
// updates, pausing, and the two-phase ownership transfer.
package admin

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
	domainerrors "github.com/relayer-service/relayer_service/internal/domain/errors"
	"github.com/relayer-service/relayer_service/internal/domain/repositories"
	"github.com/relayer-service/relayer_service/internal/infrastructure/adapters/tokenbridge"
)

// BridgeEndpoints is the slice of the bridge client the admin service
// needs: resolving the bridge's own endpoint registration for a chain.
type BridgeEndpoints interface {
	ForeignEndpoint(ctx context.Context, chain uint16) (*tokenbridge.ForeignEndpoint, error)
}

// Service guards every mutation behind the ownership rules in
// OwnerConfig. All checks run before any write.
type Service struct {
	configRepo   repositories.ConfigRepository
	tokenRepo    repositories.TokenRepository
	contractRepo repositories.ForeignContractRepository
	bridge       BridgeEndpoints
	chainID      uint16
	nativeMint   entities.Address
	logger       *zap.Logger
}

// NewService creates a new admin service
func NewService(
	configRepo repositories.ConfigRepository,
	tokenRepo repositories.TokenRepository,
	contractRepo repositories.ForeignContractRepository,
	bridge BridgeEndpoints,
	chainID uint16,
	nativeMint entities.Address,
	logger *zap.Logger,
) *Service {
	return &Service{
		configRepo:   configRepo,
		tokenRepo:    tokenRepo,
		contractRepo: contractRepo,
		bridge:       bridge,
		chainID:      chainID,
		nativeMint:   nativeMint,
		logger:       logger,
	}
}

// Initialize seeds the owner, sender and redeemer configs. It runs once;
// a second call fails.
func (s *Service) Initialize(ctx context.Context, owner, assistant, feeRecipient entities.Address, relayerFeePrecision, swapRatePrecision uint32) error {
	if owner.IsZero() || feeRecipient.IsZero() {
		return domainerrors.ErrInvalidPublicKey
	}
	if relayerFeePrecision == 0 || swapRatePrecision == 0 {
		return domainerrors.ErrInvalidPrecision
	}

	initialized, err := s.configRepo.IsInitialized(ctx)
	if err != nil {
		return fmt.Errorf("check initialized: %w", err)
	}
	if initialized {
		return domainerrors.ErrAlreadyExists
	}

	if err := s.configRepo.Initialize(ctx, owner, assistant, feeRecipient, relayerFeePrecision, swapRatePrecision); err != nil {
		return fmt.Errorf("initialize configs: %w", err)
	}

	s.logger.Info("Relayer initialized",
		zap.String("owner", owner.String()),
		zap.String("fee_recipient", feeRecipient.String()),
		zap.Uint32("relayer_fee_precision", relayerFeePrecision),
		zap.Uint32("swap_rate_precision", swapRatePrecision),
	)
	return nil
}

// RegisterToken registers a mint for relayed transfers. Owner only. The
// native mint may be registered but must not carry a swap cap; swapping
// the native asset into itself is meaningless.
func (s *Service) RegisterToken(ctx context.Context, signer, mint entities.Address, swapRate, maxNativeSwapAmount uint64) (*entities.RegisteredToken, error) {
	if err := s.requireOwner(ctx, signer); err != nil {
		return nil, err
	}
	if mint.IsZero() {
		return nil, domainerrors.ErrInvalidPublicKey
	}
	if swapRate == 0 {
		return nil, domainerrors.ErrZeroSwapRate
	}
	if mint == s.nativeMint && maxNativeSwapAmount > 0 {
		return nil, domainerrors.ErrSwapsNotAllowedForNativeMint
	}

	existing, err := s.tokenRepo.GetByMint(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	if existing != nil && existing.IsRegistered {
		return nil, domainerrors.ErrTokenAlreadyRegistered
	}

	token := &entities.RegisteredToken{
		Mint:                mint,
		SwapRate:            swapRate,
		MaxNativeSwapAmount: maxNativeSwapAmount,
		IsRegistered:        true,
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("register token: %w", err)
	}

	s.logger.Info("Token registered",
		zap.String("mint", mint.String()),
		zap.Uint64("swap_rate", swapRate),
		zap.Uint64("max_native_swap_amount", maxNativeSwapAmount),
	)
	return token, nil
}

// DeregisterToken removes a mint from the registry. Owner only.
func (s *Service) DeregisterToken(ctx context.Context, signer, mint entities.Address) error {
	if err := s.requireOwner(ctx, signer); err != nil {
		return err
	}
	if _, err := s.requireRegisteredToken(ctx, mint); err != nil {
		return err
	}
	if err := s.tokenRepo.Deregister(ctx, mint); err != nil {
		return fmt.Errorf("deregister token: %w", err)
	}
	s.logger.Info("Token deregistered", zap.String("mint", mint.String()))
	return nil
}

// UpdateSwapRate changes a registered token's USD swap rate. Owner or
// assistant, so rates can track markets without the owner key online.
func (s *Service) UpdateSwapRate(ctx context.Context, signer, mint entities.Address, swapRate uint64) error {
	if err := s.requireOwnerOrAssistant(ctx, signer); err != nil {
		return err
	}
	if swapRate == 0 {
		return domainerrors.ErrZeroSwapRate
	}
	if _, err := s.requireRegisteredToken(ctx, mint); err != nil {
		return err
	}
	if err := s.tokenRepo.UpdateSwapRate(ctx, mint, swapRate); err != nil {
		return fmt.Errorf("update swap rate: %w", err)
	}
	s.logger.Info("Swap rate updated",
		zap.String("mint", mint.String()),
		zap.Uint64("swap_rate", swapRate),
	)
	return nil
}

// UpdateMaxNativeSwapAmount changes a registered token's native swap
// cap. Owner only; the cap bounds how much native currency the relayer
// can be made to pay out per redemption, which is a treasury decision
// rather than a market-tracking one.
func (s *Service) UpdateMaxNativeSwapAmount(ctx context.Context, signer, mint entities.Address, max uint64) error {
	if err := s.requireOwner(ctx, signer); err != nil {
		return err
	}
	if mint == s.nativeMint && max > 0 {
		return domainerrors.ErrSwapsNotAllowedForNativeMint
	}
	if _, err := s.requireRegisteredToken(ctx, mint); err != nil {
		return err
	}
	if err := s.tokenRepo.UpdateMaxNativeSwapAmount(ctx, mint, max); err != nil {
		return fmt.Errorf("update max native swap amount: %w", err)
	}
	s.logger.Info("Max native swap amount updated",
		zap.String("mint", mint.String()),
		zap.Uint64("max_native_swap_amount", max),
	)
	return nil
}

// RegisterForeignContract registers (or re-registers) the trusted
// relayer contract on a foreign chain. Owner only. The chain must
// already be known to the underlying token bridge; its endpoint key is
// stored alongside so inbound verification can cross-check it.
func (s *Service) RegisterForeignContract(ctx context.Context, signer entities.Address, chain uint16, address entities.Address, fee uint64) (*entities.ForeignContract, error) {
	if err := s.requireOwner(ctx, signer); err != nil {
		return nil, err
	}
	if chain == 0 || chain == s.chainID || address.IsZero() {
		return nil, domainerrors.ErrInvalidForeignContract
	}

	endpoint, err := s.bridge.ForeignEndpoint(ctx, chain)
	if err != nil {
		return nil, fmt.Errorf("resolve bridge endpoint for chain %d: %w", chain, err)
	}

	contract := &entities.ForeignContract{
		Chain:          chain,
		Address:        address,
		BridgeEndpoint: endpoint.Key,
		Fee:            fee,
	}
	if err := s.contractRepo.Upsert(ctx, contract); err != nil {
		return nil, fmt.Errorf("register foreign contract: %w", err)
	}

	s.logger.Info("Foreign contract registered",
		zap.Uint16("chain", chain),
		zap.String("address", address.String()),
		zap.Uint64("fee", fee),
	)
	return contract, nil
}

// UpdateRelayerFee changes the USD-denominated fee for transfers to a
// registered chain. Owner or assistant.
func (s *Service) UpdateRelayerFee(ctx context.Context, signer entities.Address, chain uint16, fee uint64) error {
	if err := s.requireOwnerOrAssistant(ctx, signer); err != nil {
		return err
	}
	contract, err := s.contractRepo.GetByChain(ctx, chain)
	if err != nil {
		return fmt.Errorf("lookup foreign contract: %w", err)
	}
	if contract == nil {
		return domainerrors.ErrChainNotRegistered
	}
	if err := s.contractRepo.UpdateFee(ctx, chain, fee); err != nil {
		return fmt.Errorf("update relayer fee: %w", err)
	}
	s.logger.Info("Relayer fee updated",
		zap.Uint16("chain", chain),
		zap.Uint64("fee", fee),
	)
	return nil
}

// UpdateRelayerFeePrecision changes the fee precision in the sender and
// redeemer configs together. Owner only.
func (s *Service) UpdateRelayerFeePrecision(ctx context.Context, signer entities.Address, precision uint32) error {
	if err := s.requireOwner(ctx, signer); err != nil {
		return err
	}
	if precision == 0 {
		return domainerrors.ErrInvalidPrecision
	}
	if err := s.configRepo.UpdateRelayerFeePrecision(ctx, precision); err != nil {
		return fmt.Errorf("update relayer fee precision: %w", err)
	}
	s.logger.Info("Relayer fee precision updated", zap.Uint32("precision", precision))
	return nil
}

// UpdateSwapRatePrecision changes the swap rate precision in the sender
// and redeemer configs together. Owner only.
func (s *Service) UpdateSwapRatePrecision(ctx context.Context, signer entities.Address, precision uint32) error {
	if err := s.requireOwner(ctx, signer); err != nil {
		return err
	}
	if precision == 0 {
		return domainerrors.ErrInvalidPrecision
	}
	if err := s.configRepo.UpdateSwapRatePrecision(ctx, precision); err != nil {
		return fmt.Errorf("update swap rate precision: %w", err)
	}
	s.logger.Info("Swap rate precision updated", zap.Uint32("precision", precision))
	return nil
}

// SetPauseForTransfers pauses or resumes outbound transfers. Owner
// only. Inbound redemptions are never paused; funds already in flight
// must always be claimable.
func (s *Service) SetPauseForTransfers(ctx context.Context, signer entities.Address, paused bool) error {
	if err := s.requireOwner(ctx, signer); err != nil {
		return err
	}
	if err := s.configRepo.SetPaused(ctx, paused); err != nil {
		return fmt.Errorf("set paused: %w", err)
	}
	s.logger.Info("Outbound transfer pause updated", zap.Bool("paused", paused))
	return nil
}

// SubmitOwnershipTransferRequest starts a two-phase ownership transfer.
// Owner only. Nothing changes hands until the new owner confirms.
func (s *Service) SubmitOwnershipTransferRequest(ctx context.Context, signer, newOwner entities.Address) error {
	cfg, err := s.ownerConfig(ctx)
	if err != nil {
		return err
	}
	if !cfg.IsOwner(signer) {
		return domainerrors.ErrOwnerOnly
	}
	if newOwner.IsZero() {
		return domainerrors.ErrInvalidPublicKey
	}
	if cfg.IsOwner(newOwner) {
		return domainerrors.ErrAlreadyTheOwner
	}

	if err := s.configRepo.SetPendingOwner(ctx, &newOwner); err != nil {
		return fmt.Errorf("set pending owner: %w", err)
	}
	s.logger.Info("Ownership transfer submitted",
		zap.String("owner", cfg.Owner.String()),
		zap.String("pending_owner", newOwner.String()),
	)
	return nil
}

// ConfirmOwnershipTransferRequest completes a two-phase ownership
// transfer. Only the pending owner may confirm; the new owner is
// installed across all three configs atomically.
func (s *Service) ConfirmOwnershipTransferRequest(ctx context.Context, signer entities.Address) error {
	cfg, err := s.ownerConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.PendingOwner == nil {
		return domainerrors.ErrNoPendingOwner
	}
	if !cfg.IsPendingOwner(signer) {
		return domainerrors.ErrNotPendingOwner
	}

	if err := s.configRepo.ConfirmOwnershipTransfer(ctx, signer); err != nil {
		return fmt.Errorf("confirm ownership transfer: %w", err)
	}
	s.logger.Info("Ownership transfer confirmed",
		zap.String("previous_owner", cfg.Owner.String()),
		zap.String("owner", signer.String()),
	)
	return nil
}

// CancelOwnershipTransferRequest abandons an in-flight ownership
// transfer. Only the current owner may cancel.
func (s *Service) CancelOwnershipTransferRequest(ctx context.Context, signer entities.Address) error {
	cfg, err := s.ownerConfig(ctx)
	if err != nil {
		return err
	}
	if !cfg.IsOwner(signer) {
		return domainerrors.ErrOwnerOnly
	}
	if cfg.PendingOwner == nil {
		return domainerrors.ErrNoPendingOwner
	}

	if err := s.configRepo.SetPendingOwner(ctx, nil); err != nil {
		return fmt.Errorf("clear pending owner: %w", err)
	}
	s.logger.Info("Ownership transfer cancelled", zap.String("owner", cfg.Owner.String()))
	return nil
}

// UpdateAssistant replaces the owner's assistant key. Owner only.
func (s *Service) UpdateAssistant(ctx context.Context, signer, newAssistant entities.Address) error {
	cfg, err := s.ownerConfig(ctx)
	if err != nil {
		return err
	}
	if !cfg.IsOwner(signer) {
		return domainerrors.ErrOwnerOnly
	}
	if newAssistant.IsZero() {
		return domainerrors.ErrInvalidPublicKey
	}
	if cfg.Assistant == newAssistant {
		return domainerrors.ErrAlreadyTheAssistant
	}

	if err := s.configRepo.UpdateAssistant(ctx, newAssistant); err != nil {
		return fmt.Errorf("update assistant: %w", err)
	}
	s.logger.Info("Assistant updated", zap.String("assistant", newAssistant.String()))
	return nil
}

// UpdateFeeRecipient replaces the account collected relayer fees are
// paid to. Owner only.
func (s *Service) UpdateFeeRecipient(ctx context.Context, signer, newFeeRecipient entities.Address) error {
	if err := s.requireOwner(ctx, signer); err != nil {
		return err
	}
	if newFeeRecipient.IsZero() {
		return domainerrors.ErrInvalidPublicKey
	}

	redeemer, err := s.configRepo.GetRedeemerConfig(ctx)
	if err != nil {
		return fmt.Errorf("load redeemer config: %w", err)
	}
	if redeemer.FeeRecipient == newFeeRecipient {
		return domainerrors.ErrAlreadyTheFeeRecipient
	}

	if err := s.configRepo.UpdateFeeRecipient(ctx, newFeeRecipient); err != nil {
		return fmt.Errorf("update fee recipient: %w", err)
	}
	s.logger.Info("Fee recipient updated", zap.String("fee_recipient", newFeeRecipient.String()))
	return nil
}

// GetOwnerConfig returns the ownership singleton.
func (s *Service) GetOwnerConfig(ctx context.Context) (*entities.OwnerConfig, error) {
	return s.ownerConfig(ctx)
}

// GetSenderConfig returns the outbound transfer config.
func (s *Service) GetSenderConfig(ctx context.Context) (*entities.SenderConfig, error) {
	return s.configRepo.GetSenderConfig(ctx)
}

// GetRedeemerConfig returns the inbound redemption config.
func (s *Service) GetRedeemerConfig(ctx context.Context) (*entities.RedeemerConfig, error) {
	return s.configRepo.GetRedeemerConfig(ctx)
}

// GetRegisteredToken returns a token's registration, failing if the
// mint was never registered or has been deregistered.
func (s *Service) GetRegisteredToken(ctx context.Context, mint entities.Address) (*entities.RegisteredToken, error) {
	return s.requireRegisteredToken(ctx, mint)
}

// GetForeignContract returns the registered contract for a chain.
func (s *Service) GetForeignContract(ctx context.Context, chain uint16) (*entities.ForeignContract, error) {
	contract, err := s.contractRepo.GetByChain(ctx, chain)
	if err != nil {
		return nil, fmt.Errorf("lookup foreign contract: %w", err)
	}
	if contract == nil {
		return nil, domainerrors.ErrChainNotRegistered
	}
	return contract, nil
}

func (s *Service) ownerConfig(ctx context.Context) (*entities.OwnerConfig, error) {
	cfg, err := s.configRepo.GetOwnerConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load owner config: %w", err)
	}
	return cfg, nil
}

func (s *Service) requireOwner(ctx context.Context, signer entities.Address) error {
	cfg, err := s.ownerConfig(ctx)
	if err != nil {
		return err
	}
	if !cfg.IsOwner(signer) {
		return domainerrors.ErrOwnerOnly
	}
	return nil
}

func (s *Service) requireOwnerOrAssistant(ctx context.Context, signer entities.Address) error {
	cfg, err := s.ownerConfig(ctx)
	if err != nil {
		return err
	}
	if !cfg.IsAuthorized(signer) {
		return domainerrors.ErrOwnerOrAssistantOnly
	}
	return nil
}

func (s *Service) requireRegisteredToken(ctx context.Context, mint entities.Address) (*entities.RegisteredToken, error) {
	token, err := s.tokenRepo.GetByMint(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	if token == nil || !token.IsRegistered {
		return nil, domainerrors.ErrTokenNotRegistered
	}
	return token, nil
}
