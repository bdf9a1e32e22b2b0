// Package redeem completes inbound transfers: emitter verification,
// payload decoding, denormalization and the split payout between the
// recipient, the fee recipient and the native gas swap.
package redeem

import (
	"context"
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

// Service completes attested inbound transfers. Verification is
// all-or-nothing: no custody movement happens until the emitter, the
// claim latch and the decoded payload have all checked out.
type Service struct {
	configRepo    repositories.ConfigRepository
	tokenRepo     repositories.TokenRepository
	contractRepo  repositories.ForeignContractRepository
	relayRepo     repositories.RelayRepository
	bridgeClient  tokenbridge.BridgeClient
	custodyClient custody.CustodyClient
	chainID       uint16
	nativeMint    entities.Address
	logger        *zap.Logger
}

// NewService creates a new redeem service
func NewService(
	configRepo repositories.ConfigRepository,
	tokenRepo repositories.TokenRepository,
	contractRepo repositories.ForeignContractRepository,
	relayRepo repositories.RelayRepository,
	bridgeClient tokenbridge.BridgeClient,
	custodyClient custody.CustodyClient,
	chainID uint16,
	nativeMint entities.Address,
	logger *zap.Logger,
) *Service {
	return &Service{
		configRepo:    configRepo,
		tokenRepo:     tokenRepo,
		contractRepo:  contractRepo,
		relayRepo:     relayRepo,
		bridgeClient:  bridgeClient,
		custodyClient: custodyClient,
		chainID:       chainID,
		nativeMint:    nativeMint,
		logger:        logger,
	}
}

// CompleteTransferWithRelay redeems an attested inbound transfer.
// A self-redemption (payer == recipient) pays the full amount to the
// recipient with no fee and no swap. Otherwise the denormalized amount
// splits three ways: the native swap's token side and the relayer fee
// go to the configured fee recipient, the native payout is funded by
// the payer, and the recipient keeps the remainder. The three parts
// always sum to the denormalized amount exactly.
func (s *Service) CompleteTransferWithRelay(ctx context.Context, req *entities.RedeemRequest) (*entities.RedeemResult, error) {
	transfer, err := s.bridgeClient.GetAttestedTransfer(ctx, req.MessageID)
	if err != nil {
		return nil, fmt.Errorf("fetch attested transfer: %w", err)
	}

	claimed, err := s.bridgeClient.IsClaimed(ctx, transfer.MessageHash)
	if err != nil {
		return nil, fmt.Errorf("check claim: %w", err)
	}
	if claimed {
		return nil, domainerrors.ErrAlreadyRedeemed
	}
	if existing, err := s.relayRepo.GetByMessageHash(ctx, transfer.MessageHash); err != nil {
		return nil, fmt.Errorf("lookup relay record: %w", err)
	} else if existing != nil && existing.Status == entities.RelayStatusRedeemed {
		return nil, domainerrors.ErrAlreadyRedeemed
	}

	contract, err := s.contractRepo.GetByChain(ctx, transfer.EmitterChain)
	if err != nil {
		return nil, fmt.Errorf("lookup foreign contract: %w", err)
	}
	if contract == nil {
		return nil, domainerrors.ErrChainNotRegistered
	}
	if !contract.Verify(transfer.EmitterChain, transfer.EmitterAddress) {
		return nil, domainerrors.ErrInvalidForeignContract
	}

	payload, err := message.Decode(transfer.Payload)
	if err != nil {
		return nil, err
	}
	if payload.Recipient != req.Recipient {
		return nil, domainerrors.ErrInvalidRecipient
	}

	token, err := s.tokenRepo.GetByMint(ctx, transfer.TokenAddress)
	if err != nil {
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	if token == nil || !token.IsRegistered {
		return nil, domainerrors.ErrTokenNotRegistered
	}

	decimals, err := s.custodyClient.TokenDecimals(ctx, transfer.TokenAddress)
	if err != nil {
		return nil, fmt.Errorf("token decimals: %w", err)
	}

	amount, err := tokenbridge.DenormalizeAmount(transfer.Amount, decimals)
	if err != nil {
		return nil, fmt.Errorf("denormalize amount: %w", err)
	}
	// Fee and to-native come from the payload: a value too large to even
	// represent in the token's decimals can never be covered.
	relayerFee, err := tokenbridge.DenormalizeAmount(payload.TargetRelayerFee, decimals)
	if err != nil {
		return nil, domainerrors.ErrInsufficientFunds
	}
	toNativeAmount, err := tokenbridge.DenormalizeAmount(payload.ToNativeTokenAmount, decimals)
	if err != nil {
		return nil, domainerrors.ErrInvalidToNativeAmount
	}

	relay := &entities.RelayTransaction{
		ID:             uuid.New(),
		Direction:      entities.RelayDirectionInbound,
		Payer:          req.Payer,
		Mint:           transfer.TokenAddress,
		Amount:         decimal.NewFromUint64(amount),
		ToNativeAmount: decimal.NewFromUint64(toNativeAmount),
		RelayerFee:     decimal.NewFromUint64(relayerFee),
		Chain:          transfer.EmitterChain,
		Recipient:      req.Recipient,
		MessageHash:    transfer.MessageHash,
		Status:         entities.RelayStatusPending,
	}
	if err := s.relayRepo.Create(ctx, relay); err != nil {
		return nil, fmt.Errorf("create relay record: %w", err)
	}

	result, err := s.payOut(ctx, req, transfer, token, decimals, amount, relayerFee, toNativeAmount)
	if err != nil {
		if uerr := s.relayRepo.UpdateStatus(ctx, relay.ID, entities.RelayStatusFailed, err.Error()); uerr != nil {
			s.logger.Error("Failed to mark relay failed",
				zap.String("relay_id", relay.ID.String()),
				zap.Error(uerr),
			)
		}
		return nil, err
	}

	if err := s.relayRepo.UpdateStatus(ctx, relay.ID, entities.RelayStatusRedeemed, ""); err != nil {
		s.logger.Error("Failed to mark relay redeemed",
			zap.String("relay_id", relay.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Transfer redeemed",
		zap.String("relay_id", relay.ID.String()),
		zap.String("message_id", req.MessageID),
		zap.String("mint", transfer.TokenAddress.String()),
		zap.Uint64("amount", result.Amount),
		zap.Uint64("recipient_amount", result.RecipientAmount),
		zap.Uint64("relayer_fee", result.RelayerFee),
		zap.Uint64("token_amount_in", result.TokenAmountIn),
		zap.Uint64("native_amount_out", result.NativeAmountOut),
		zap.Bool("self_redeemed", result.SelfRedeemed),
	)
	return result, nil
}

// payOut releases the bridged tokens from escrow and distributes them.
func (s *Service) payOut(
	ctx context.Context,
	req *entities.RedeemRequest,
	transfer *tokenbridge.AttestedTransfer,
	token *entities.RegisteredToken,
	decimals uint8,
	amount, relayerFee, toNativeAmount uint64,
) (*entities.RedeemResult, error) {
	mint := transfer.TokenAddress
	escrowKey := tokenbridge.DeriveStorageKey(tokenbridge.SeedPrefixTmp, mint[:], []byte(transfer.MessageHash))

	escrowAddr, err := s.custodyClient.OpenEscrow(ctx, mint, escrowKey)
	if err != nil {
		return nil, fmt.Errorf("open escrow: %w", err)
	}
	defer s.closeEscrow(ctx, escrowKey, req.Payer)

	// A token whose origin chain is not ours arrives as a bridge-wrapped
	// asset: it is minted into escrow under the bridge's mint authority.
	// Locally custodied assets were already released there when the
	// bridge attested the transfer.
	if transfer.TokenChain != s.chainID {
		if err := s.custodyClient.MintWrapped(ctx, mint, escrowAddr, amount); err != nil {
			return nil, fmt.Errorf("mint wrapped: %w", err)
		}
	}

	// Self-redemption: the recipient claims their own transfer, keeps
	// the whole amount, pays no fee and gets no swap.
	if req.Payer == req.Recipient {
		if mint == s.nativeMint {
			if err := s.custodyClient.UnwrapNative(ctx, escrowKey, req.Recipient); err != nil {
				return nil, fmt.Errorf("unwrap native: %w", err)
			}
		} else {
			if err := s.custodyClient.Transfer(ctx, mint, escrowAddr, req.Recipient, amount); err != nil {
				return nil, fmt.Errorf("pay recipient: %w", err)
			}
		}
		return &entities.RedeemResult{
			Amount:          amount,
			RecipientAmount: amount,
			SelfRedeemed:    true,
		}, nil
	}

	cfg, err := s.configRepo.GetRedeemerConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load redeemer config: %w", err)
	}

	var tokenAmountIn, nativeAmountOut uint64
	if toNativeAmount > 0 && mint != s.nativeMint {
		native, err := s.tokenRepo.GetByMint(ctx, s.nativeMint)
		if err != nil {
			return nil, fmt.Errorf("lookup native token: %w", err)
		}
		if native == nil || !native.IsRegistered {
			return nil, domainerrors.ErrTokenNotRegistered
		}
		tokenAmountIn, nativeAmountOut, err = pricing.CalculateNativeSwapAmounts(token, decimals, native.SwapRate, cfg.SwapRatePrecision, toNativeAmount)
		if err != nil {
			return nil, err
		}
	}

	// A malicious emitter could encode a fee larger than the transfer;
	// refuse rather than underflow. Phrased by subtraction so the check
	// itself cannot wrap.
	if relayerFee > amount || tokenAmountIn > amount-relayerFee {
		return nil, domainerrors.ErrInsufficientFunds
	}

	if nativeAmountOut > 0 {
		if err := s.custodyClient.TransferNative(ctx, req.Payer, req.Recipient, nativeAmountOut); err != nil {
			return nil, fmt.Errorf("pay native swap: %w", err)
		}
	}

	// The swap's token side and the relayer fee both accrue to the fee
	// recipient; the payer is reimbursed off this account.
	if fees := relayerFee + tokenAmountIn; fees > 0 {
		if err := s.custodyClient.Transfer(ctx, mint, escrowAddr, cfg.FeeRecipient, fees); err != nil {
			return nil, fmt.Errorf("pay fee recipient: %w", err)
		}
	}

	// The wrapped native asset pays out unwrapped: after the fee leaves
	// the escrow, everything left in it is the recipient's remainder.
	recipientAmount := amount - relayerFee - tokenAmountIn
	if recipientAmount > 0 {
		if mint == s.nativeMint {
			if err := s.custodyClient.UnwrapNative(ctx, escrowKey, req.Recipient); err != nil {
				return nil, fmt.Errorf("unwrap native: %w", err)
			}
		} else {
			if err := s.custodyClient.Transfer(ctx, mint, escrowAddr, req.Recipient, recipientAmount); err != nil {
				return nil, fmt.Errorf("pay recipient: %w", err)
			}
		}
	}

	return &entities.RedeemResult{
		Amount:          amount,
		RecipientAmount: recipientAmount,
		RelayerFee:      relayerFee,
		TokenAmountIn:   tokenAmountIn,
		NativeAmountOut: nativeAmountOut,
	}, nil
}

func (s *Service) closeEscrow(ctx context.Context, escrowKey string, destination entities.Address) {
	if err := s.custodyClient.CloseEscrow(ctx, escrowKey, destination); err != nil {
		s.logger.Warn("Failed to close escrow",
			zap.String("escrow_key", escrowKey),
			zap.Error(err),
		)
	}
}
