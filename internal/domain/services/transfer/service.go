// Package transfer orchestrates outbound sends: validation, amount
// truncation, fee pricing, escrow funding and posting the relay message
// to the token bridge.
package transfer

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
	domainerrors "github.com/relayer-service/relayer_service/internal/domain/errors"
	"github.com/relayer-service/relayer_service/internal/domain/message"
	"github.com/relayer-service/relayer_service/internal/domain/repositories"
	"github.com/relayer-service/relayer_service/internal/domain/services/pricing"
	"github.com/relayer-service/relayer_service/internal/infrastructure/adapters/custody"
	"github.com/relayer-service/relayer_service/internal/infrastructure/adapters/tokenbridge"
)

// Quote prices an outbound transfer without moving anything.
type Quote struct {
	Mint                entities.Address `json:"mint"`
	RecipientChain      uint16           `json:"recipient_chain"`
	TokenDecimals       uint8            `json:"token_decimals"`
	// RelayerFee is the fee in token base units, before normalization.
	RelayerFee uint64 `json:"relayer_fee"`
	// NormalizedRelayerFee is what the wire message will carry.
	NormalizedRelayerFee uint64 `json:"normalized_relayer_fee"`
}

// Service validates and executes outbound transfers. Every check runs
// before the first custody movement; once tokens reach escrow, any
// bridge failure is recorded on the ledger entry rather than retried.
type Service struct {
	configRepo      repositories.ConfigRepository
	tokenRepo       repositories.TokenRepository
	contractRepo    repositories.ForeignContractRepository
	sequenceRepo    repositories.SequenceRepository
	relayRepo       repositories.RelayRepository
	bridgeClient    tokenbridge.BridgeClient
	custodyClient   custody.CustodyClient
	bridgeAuthority entities.Address
	logger          *zap.Logger
}

// NewService creates a new transfer service
func NewService(
	configRepo repositories.ConfigRepository,
	tokenRepo repositories.TokenRepository,
	contractRepo repositories.ForeignContractRepository,
	sequenceRepo repositories.SequenceRepository,
	relayRepo repositories.RelayRepository,
	bridgeClient tokenbridge.BridgeClient,
	custodyClient custody.CustodyClient,
	bridgeAuthority entities.Address,
	logger *zap.Logger,
) *Service {
	return &Service{
		configRepo:      configRepo,
		tokenRepo:       tokenRepo,
		contractRepo:    contractRepo,
		sequenceRepo:    sequenceRepo,
		relayRepo:       relayRepo,
		bridgeClient:    bridgeClient,
		custodyClient:   custodyClient,
		bridgeAuthority: bridgeAuthority,
		logger:          logger,
	}
}

// QuoteRelayerFee prices the relayer fee for sending a registered token
// to a registered chain, at current config.
func (s *Service) QuoteRelayerFee(ctx context.Context, mint entities.Address, chain uint16) (*Quote, error) {
	cfg, err := s.configRepo.GetSenderConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sender config: %w", err)
	}
	token, err := s.requireRegisteredToken(ctx, mint)
	if err != nil {
		return nil, err
	}
	contract, err := s.requireForeignContract(ctx, chain)
	if err != nil {
		return nil, err
	}
	decimals, err := s.custodyClient.TokenDecimals(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("token decimals: %w", err)
	}

	fee, err := pricing.TokenFee(contract.Fee, decimals, token.SwapRate, cfg.RelayerFeePrecision, cfg.SwapRatePrecision)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Mint:                 mint,
		RecipientChain:       chain,
		TokenDecimals:        decimals,
		RelayerFee:           fee,
		NormalizedRelayerFee: tokenbridge.NormalizeAmount(fee, decimals),
	}, nil
}

// TransferTokensWithRelay executes an outbound send. The transfer
// amount must strictly exceed the to-native allocation plus the relayer
// fee after normalization, so the recipient always nets something.
func (s *Service) TransferTokensWithRelay(ctx context.Context, req *entities.TransferRequest) (*entities.RelayTransaction, error) {
	cfg, err := s.configRepo.GetSenderConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sender config: %w", err)
	}
	if cfg.Paused {
		return nil, domainerrors.ErrOutboundTransfersPaused
	}

	token, err := s.requireRegisteredToken(ctx, req.Mint)
	if err != nil {
		return nil, err
	}
	contract, err := s.requireForeignContract(ctx, req.RecipientChain)
	if err != nil {
		return nil, err
	}
	if req.RecipientAddress.IsZero() {
		return nil, domainerrors.ErrInvalidRecipient
	}

	decimals, err := s.custodyClient.TokenDecimals(ctx, req.Mint)
	if err != nil {
		return nil, fmt.Errorf("token decimals: %w", err)
	}

	// Drop dust below bridge precision up front; only the truncated
	// amount leaves the payer.
	truncated := tokenbridge.TruncateAmount(req.Amount, decimals)
	normalizedAmount := tokenbridge.NormalizeAmount(truncated, decimals)
	if normalizedAmount == 0 {
		return nil, domainerrors.ErrZeroBridgeAmount
	}

	normalizedToNative := tokenbridge.NormalizeAmount(req.ToNativeTokenAmount, decimals)
	if req.ToNativeTokenAmount > 0 && normalizedToNative == 0 {
		return nil, domainerrors.ErrInvalidToNativeAmount
	}

	fee, err := pricing.TokenFee(contract.Fee, decimals, token.SwapRate, cfg.RelayerFeePrecision, cfg.SwapRatePrecision)
	if err != nil {
		return nil, err
	}
	normalizedFee := tokenbridge.NormalizeAmount(fee, decimals)

	// Strict: equality would leave the recipient with zero. Phrased by
	// subtraction so an extreme fee cannot wrap the comparison.
	if normalizedAmount <= normalizedToNative || normalizedAmount-normalizedToNative <= normalizedFee {
		return nil, domainerrors.ErrInsufficientFunds
	}

	sequence, err := s.sequenceRepo.NextSequence(ctx, req.Payer)
	if err != nil {
		return nil, fmt.Errorf("next sequence: %w", err)
	}

	payload := &message.TransferWithRelay{
		TargetRelayerFee:    normalizedFee,
		ToNativeTokenAmount: normalizedToNative,
		Recipient:           req.RecipientAddress,
	}

	relay := &entities.RelayTransaction{
		ID:             uuid.New(),
		Direction:      entities.RelayDirectionOutbound,
		Payer:          req.Payer,
		Mint:           req.Mint,
		Amount:         decimal.NewFromUint64(truncated),
		ToNativeAmount: decimal.NewFromUint64(req.ToNativeTokenAmount),
		RelayerFee:     decimal.NewFromUint64(fee),
		Chain:          req.RecipientChain,
		Recipient:      req.RecipientAddress,
		Sequence:       sequence,
		Status:         entities.RelayStatusPending,
	}
	if err := s.relayRepo.Create(ctx, relay); err != nil {
		return nil, fmt.Errorf("create relay record: %w", err)
	}

	posted, err := s.fundAndPost(ctx, req, token, contract, truncated, sequence, payload)
	if err != nil {
		if uerr := s.relayRepo.UpdateStatus(ctx, relay.ID, entities.RelayStatusFailed, err.Error()); uerr != nil {
			s.logger.Error("Failed to mark relay failed",
				zap.String("relay_id", relay.ID.String()),
				zap.Error(uerr),
			)
		}
		return nil, err
	}

	if err := s.relayRepo.MarkPosted(ctx, relay.ID, posted.Sequence, posted.MessageHash); err != nil {
		// The message is on the wire; a ledger miss is logged, not fatal.
		s.logger.Error("Failed to mark relay posted",
			zap.String("relay_id", relay.ID.String()),
			zap.Error(err),
		)
	}
	relay.Status = entities.RelayStatusPosted
	relay.Sequence = posted.Sequence
	relay.MessageHash = posted.MessageHash

	s.logger.Info("Transfer posted",
		zap.String("relay_id", relay.ID.String()),
		zap.String("mint", req.Mint.String()),
		zap.Uint64("amount", truncated),
		zap.Uint64("relayer_fee", fee),
		zap.Uint64("to_native_amount", req.ToNativeTokenAmount),
		zap.Uint16("recipient_chain", req.RecipientChain),
		zap.Uint64("sequence", posted.Sequence),
	)
	return relay, nil
}

// fundAndPost moves the truncated amount into a fresh escrow, delegates
// it to the bridge authority and posts the message. The escrow is
// drained back to the payer on any failure after funding.
func (s *Service) fundAndPost(
	ctx context.Context,
	req *entities.TransferRequest,
	token *entities.RegisteredToken,
	contract *entities.ForeignContract,
	amount, sequence uint64,
	payload *message.TransferWithRelay,
) (*tokenbridge.PostedMessage, error) {
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], sequence)
	escrowKey := tokenbridge.DeriveStorageKey(tokenbridge.SeedPrefixTmp, req.Mint[:], req.Payer[:], seq[:])

	escrowAddr, err := s.custodyClient.OpenEscrow(ctx, req.Mint, escrowKey)
	if err != nil {
		return nil, fmt.Errorf("open escrow: %w", err)
	}

	if req.WrapNative {
		err = s.custodyClient.WrapNative(ctx, escrowKey, amount)
	} else {
		err = s.custodyClient.Transfer(ctx, req.Mint, req.Payer, escrowAddr, amount)
	}
	if err != nil {
		s.closeEscrow(ctx, escrowKey, req.Payer)
		return nil, fmt.Errorf("fund escrow: %w", err)
	}

	if err := s.custodyClient.Approve(ctx, req.Mint, s.bridgeAuthority, amount); err != nil {
		s.closeEscrow(ctx, escrowKey, req.Payer)
		return nil, fmt.Errorf("approve bridge authority: %w", err)
	}

	posted, err := s.bridgeClient.PostMessageWithPayload(ctx, &tokenbridge.PostMessageRequest{
		Mint:           req.Mint,
		Amount:         amount,
		TargetChain:    contract.Chain,
		TargetAddress:  contract.Address,
		Nonce:          req.BatchID,
		SenderSequence: sequence,
		Payload:        payload.Encode(),
		EscrowKey:      escrowKey,
	})
	if err != nil {
		s.closeEscrow(ctx, escrowKey, req.Payer)
		return nil, fmt.Errorf("post bridge message: %w", err)
	}

	// The bridge consumed the escrowed tokens; closing returns the rent
	// residual to the payer.
	s.closeEscrow(ctx, escrowKey, req.Payer)
	return posted, nil
}

func (s *Service) closeEscrow(ctx context.Context, escrowKey string, destination entities.Address) {
	if err := s.custodyClient.CloseEscrow(ctx, escrowKey, destination); err != nil {
		s.logger.Warn("Failed to close escrow",
			zap.String("escrow_key", escrowKey),
			zap.Error(err),
		)
	}
}

// GetRelay returns a ledger entry by id.
func (s *Service) GetRelay(ctx context.Context, id uuid.UUID) (*entities.RelayTransaction, error) {
	return s.relayRepo.GetByID(ctx, id)
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

func (s *Service) requireForeignContract(ctx context.Context, chain uint16) (*entities.ForeignContract, error) {
	contract, err := s.contractRepo.GetByChain(ctx, chain)
	if err != nil {
		return nil, fmt.Errorf("lookup foreign contract: %w", err)
	}
	if contract == nil {
		return nil, domainerrors.ErrChainNotRegistered
	}
	return contract, nil
}
