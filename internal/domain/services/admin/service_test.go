package admin_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
	domainerrors "github.com/relayer-service/relayer_service/internal/domain/errors"
	"github.com/relayer-service/relayer_service/internal/domain/services/admin"
	"github.com/relayer-service/relayer_service/internal/infrastructure/adapters/tokenbridge"
)

func addr(b byte) entities.Address {
	var a entities.Address
	a[31] = b
	return a
}

var (
	owner        = addr(1)
	assistant    = addr(2)
	feeRecipient = addr(3)
	outsider     = addr(4)
	mint         = addr(10)
	nativeMint   = addr(11)
)

const chainID uint16 = 1

// memConfigRepo is an in-memory ConfigRepository for testing
type memConfigRepo struct {
	owner    *entities.OwnerConfig
	sender   *entities.SenderConfig
	redeemer *entities.RedeemerConfig
}

func (m *memConfigRepo) Initialize(ctx context.Context, owner, assistant, feeRecipient entities.Address, relayerFeePrecision, swapRatePrecision uint32) error {
	m.owner = &entities.OwnerConfig{Owner: owner, Assistant: assistant, UpdatedAt: time.Now()}
	m.sender = &entities.SenderConfig{Owner: owner, RelayerFeePrecision: relayerFeePrecision, SwapRatePrecision: swapRatePrecision}
	m.redeemer = &entities.RedeemerConfig{Owner: owner, RelayerFeePrecision: relayerFeePrecision, SwapRatePrecision: swapRatePrecision, FeeRecipient: feeRecipient}
	return nil
}

func (m *memConfigRepo) IsInitialized(ctx context.Context) (bool, error) {
	return m.owner != nil, nil
}

func (m *memConfigRepo) GetOwnerConfig(ctx context.Context) (*entities.OwnerConfig, error) {
	return m.owner, nil
}

func (m *memConfigRepo) GetSenderConfig(ctx context.Context) (*entities.SenderConfig, error) {
	return m.sender, nil
}

func (m *memConfigRepo) GetRedeemerConfig(ctx context.Context) (*entities.RedeemerConfig, error) {
	return m.redeemer, nil
}

func (m *memConfigRepo) SetPendingOwner(ctx context.Context, pending *entities.Address) error {
	m.owner.PendingOwner = pending
	return nil
}

func (m *memConfigRepo) ConfirmOwnershipTransfer(ctx context.Context, newOwner entities.Address) error {
	m.owner.Owner = newOwner
	m.owner.PendingOwner = nil
	m.sender.Owner = newOwner
	m.redeemer.Owner = newOwner
	return nil
}

func (m *memConfigRepo) UpdateAssistant(ctx context.Context, assistant entities.Address) error {
	m.owner.Assistant = assistant
	return nil
}

func (m *memConfigRepo) UpdateFeeRecipient(ctx context.Context, feeRecipient entities.Address) error {
	m.redeemer.FeeRecipient = feeRecipient
	return nil
}

func (m *memConfigRepo) SetPaused(ctx context.Context, paused bool) error {
	m.sender.Paused = paused
	return nil
}

func (m *memConfigRepo) UpdateRelayerFeePrecision(ctx context.Context, precision uint32) error {
	m.sender.RelayerFeePrecision = precision
	m.redeemer.RelayerFeePrecision = precision
	return nil
}

func (m *memConfigRepo) UpdateSwapRatePrecision(ctx context.Context, precision uint32) error {
	m.sender.SwapRatePrecision = precision
	m.redeemer.SwapRatePrecision = precision
	return nil
}

// memTokenRepo is an in-memory TokenRepository for testing
type memTokenRepo struct {
	tokens map[entities.Address]*entities.RegisteredToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[entities.Address]*entities.RegisteredToken)}
}

func (m *memTokenRepo) GetByMint(ctx context.Context, mint entities.Address) (*entities.RegisteredToken, error) {
	t, ok := m.tokens[mint]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *memTokenRepo) Create(ctx context.Context, token *entities.RegisteredToken) error {
	cp := *token
	m.tokens[token.Mint] = &cp
	return nil
}

func (m *memTokenRepo) UpdateSwapRate(ctx context.Context, mint entities.Address, swapRate uint64) error {
	m.tokens[mint].SwapRate = swapRate
	return nil
}

func (m *memTokenRepo) UpdateMaxNativeSwapAmount(ctx context.Context, mint entities.Address, max uint64) error {
	m.tokens[mint].MaxNativeSwapAmount = max
	return nil
}

func (m *memTokenRepo) Deregister(ctx context.Context, mint entities.Address) error {
	t := m.tokens[mint]
	t.IsRegistered = false
	t.SwapRate = 0
	t.MaxNativeSwapAmount = 0
	return nil
}

// memContractRepo is an in-memory ForeignContractRepository for testing
type memContractRepo struct {
	contracts map[uint16]*entities.ForeignContract
}

func newMemContractRepo() *memContractRepo {
	return &memContractRepo{contracts: make(map[uint16]*entities.ForeignContract)}
}

func (m *memContractRepo) GetByChain(ctx context.Context, chain uint16) (*entities.ForeignContract, error) {
	c, ok := m.contracts[chain]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memContractRepo) Upsert(ctx context.Context, contract *entities.ForeignContract) error {
	cp := *contract
	m.contracts[contract.Chain] = &cp
	return nil
}

func (m *memContractRepo) UpdateFee(ctx context.Context, chain uint16, fee uint64) error {
	m.contracts[chain].Fee = fee
	return nil
}

// stubBridge returns a fixed endpoint key for any chain
type stubBridge struct{}

func (stubBridge) ForeignEndpoint(ctx context.Context, chain uint16) (*tokenbridge.ForeignEndpoint, error) {
	return &tokenbridge.ForeignEndpoint{Chain: chain, Address: addr(99), Key: "endpoint-key"}, nil
}

func newTestService(t *testing.T) (*admin.Service, *memConfigRepo, *memTokenRepo, *memContractRepo) {
	t.Helper()
	configRepo := &memConfigRepo{}
	tokenRepo := newMemTokenRepo()
	contractRepo := newMemContractRepo()
	svc := admin.NewService(configRepo, tokenRepo, contractRepo, stubBridge{}, chainID, nativeMint, zap.NewNop())
	require.NoError(t, svc.Initialize(context.Background(), owner, assistant, feeRecipient, 100_000_000, 100_000_000))
	return svc, configRepo, tokenRepo, contractRepo
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a second initialization", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		err := svc.Initialize(ctx, owner, assistant, feeRecipient, 1, 1)
		require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	})

	t.Run("rejects zero precisions", func(t *testing.T) {
		svc := admin.NewService(&memConfigRepo{}, newMemTokenRepo(), newMemContractRepo(), stubBridge{}, chainID, nativeMint, zap.NewNop())
		err := svc.Initialize(ctx, owner, assistant, feeRecipient, 0, 1)
		require.ErrorIs(t, err, domainerrors.ErrInvalidPrecision)
	})

	t.Run("rejects zero owner", func(t *testing.T) {
		svc := admin.NewService(&memConfigRepo{}, newMemTokenRepo(), newMemContractRepo(), stubBridge{}, chainID, nativeMint, zap.NewNop())
		err := svc.Initialize(ctx, entities.ZeroAddress, assistant, feeRecipient, 1, 1)
		require.ErrorIs(t, err, domainerrors.ErrInvalidPublicKey)
	})
}

func TestRegisterToken(t *testing.T) {
	ctx := context.Background()

	t.Run("owner registers a token", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		token, err := svc.RegisterToken(ctx, owner, mint, 6_900_000_000, 1_000_000_000)
		require.NoError(t, err)
		assert.True(t, token.IsRegistered)
		assert.True(t, token.SwapsEnabled())
	})

	t.Run("assistant may not register", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.RegisterToken(ctx, assistant, mint, 1, 0)
		require.ErrorIs(t, err, domainerrors.ErrOwnerOnly)
	})

	t.Run("zero swap rate rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.RegisterToken(ctx, owner, mint, 0, 0)
		require.ErrorIs(t, err, domainerrors.ErrZeroSwapRate)
	})

	t.Run("native mint may not carry a swap cap", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.RegisterToken(ctx, owner, nativeMint, 1_000_000_000, 1)
		require.ErrorIs(t, err, domainerrors.ErrSwapsNotAllowedForNativeMint)
	})

	t.Run("native mint without a cap is fine", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		token, err := svc.RegisterToken(ctx, owner, nativeMint, 1_000_000_000, 0)
		require.NoError(t, err)
		assert.False(t, token.SwapsEnabled())
	})

	t.Run("double registration rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.RegisterToken(ctx, owner, mint, 1, 0)
		require.NoError(t, err)
		_, err = svc.RegisterToken(ctx, owner, mint, 2, 0)
		require.ErrorIs(t, err, domainerrors.ErrTokenAlreadyRegistered)
	})

	t.Run("re-registration after deregister succeeds", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.RegisterToken(ctx, owner, mint, 1, 0)
		require.NoError(t, err)
		require.NoError(t, svc.DeregisterToken(ctx, owner, mint))
		_, err = svc.GetRegisteredToken(ctx, mint)
		require.ErrorIs(t, err, domainerrors.ErrTokenNotRegistered)
		_, err = svc.RegisterToken(ctx, owner, mint, 2, 0)
		require.NoError(t, err)
	})
}

func TestUpdateSwapRate(t *testing.T) {
	ctx := context.Background()

	t.Run("assistant may update the rate", func(t *testing.T) {
		svc, _, tokens, _ := newTestService(t)
		_, err := svc.RegisterToken(ctx, owner, mint, 1, 0)
		require.NoError(t, err)
		require.NoError(t, svc.UpdateSwapRate(ctx, assistant, mint, 42))
		assert.Equal(t, uint64(42), tokens.tokens[mint].SwapRate)
	})

	t.Run("outsider may not", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		err := svc.UpdateSwapRate(ctx, outsider, mint, 42)
		require.ErrorIs(t, err, domainerrors.ErrOwnerOrAssistantOnly)
	})

	t.Run("unregistered token rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		err := svc.UpdateSwapRate(ctx, owner, mint, 42)
		require.ErrorIs(t, err, domainerrors.ErrTokenNotRegistered)
	})
}

func TestUpdateMaxNativeSwapAmount(t *testing.T) {
	ctx := context.Background()

	t.Run("owner only", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.RegisterToken(ctx, owner, mint, 1, 0)
		require.NoError(t, err)
		err = svc.UpdateMaxNativeSwapAmount(ctx, assistant, mint, 5)
		require.ErrorIs(t, err, domainerrors.ErrOwnerOnly)
		require.NoError(t, svc.UpdateMaxNativeSwapAmount(ctx, owner, mint, 5))
	})

	t.Run("native mint cap rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.RegisterToken(ctx, owner, nativeMint, 1, 0)
		require.NoError(t, err)
		err = svc.UpdateMaxNativeSwapAmount(ctx, owner, nativeMint, 5)
		require.ErrorIs(t, err, domainerrors.ErrSwapsNotAllowedForNativeMint)
	})
}

func TestRegisterForeignContract(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the bridge endpoint key", func(t *testing.T) {
		svc, _, _, contracts := newTestService(t)
		contract, err := svc.RegisterForeignContract(ctx, owner, 2, addr(20), 42_000_000_000)
		require.NoError(t, err)
		assert.Equal(t, "endpoint-key", contract.BridgeEndpoint)
		assert.Equal(t, uint64(42_000_000_000), contracts.contracts[2].Fee)
	})

	t.Run("own chain id rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.RegisterForeignContract(ctx, owner, chainID, addr(20), 0)
		require.ErrorIs(t, err, domainerrors.ErrInvalidForeignContract)
	})

	t.Run("zero address rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.RegisterForeignContract(ctx, owner, 2, entities.ZeroAddress, 0)
		require.ErrorIs(t, err, domainerrors.ErrInvalidForeignContract)
	})

	t.Run("re-registration overwrites", func(t *testing.T) {
		svc, _, _, contracts := newTestService(t)
		_, err := svc.RegisterForeignContract(ctx, owner, 2, addr(20), 1)
		require.NoError(t, err)
		_, err = svc.RegisterForeignContract(ctx, owner, 2, addr(21), 2)
		require.NoError(t, err)
		assert.Equal(t, addr(21), contracts.contracts[2].Address)
		assert.Equal(t, uint64(2), contracts.contracts[2].Fee)
	})
}

func TestUpdateRelayerFee(t *testing.T) {
	ctx := context.Background()

	t.Run("assistant may update", func(t *testing.T) {
		svc, _, _, contracts := newTestService(t)
		_, err := svc.RegisterForeignContract(ctx, owner, 2, addr(20), 1)
		require.NoError(t, err)
		require.NoError(t, svc.UpdateRelayerFee(ctx, assistant, 2, 77))
		assert.Equal(t, uint64(77), contracts.contracts[2].Fee)
	})

	t.Run("unregistered chain rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		err := svc.UpdateRelayerFee(ctx, owner, 9, 77)
		require.ErrorIs(t, err, domainerrors.ErrChainNotRegistered)
	})
}

func TestOwnershipTransfer(t *testing.T) {
	ctx := context.Background()
	newOwner := addr(7)

	t.Run("full two-phase handover", func(t *testing.T) {
		svc, cfg, _, _ := newTestService(t)
		require.NoError(t, svc.SubmitOwnershipTransferRequest(ctx, owner, newOwner))
		require.NotNil(t, cfg.owner.PendingOwner)

		// Old owner still in charge until the new one confirms.
		_, err := svc.RegisterToken(ctx, newOwner, mint, 1, 0)
		require.ErrorIs(t, err, domainerrors.ErrOwnerOnly)

		require.NoError(t, svc.ConfirmOwnershipTransferRequest(ctx, newOwner))
		assert.Nil(t, cfg.owner.PendingOwner)
		assert.Equal(t, newOwner, cfg.owner.Owner)
		assert.Equal(t, newOwner, cfg.sender.Owner)
		assert.Equal(t, newOwner, cfg.redeemer.Owner)

		_, err = svc.RegisterToken(ctx, newOwner, mint, 1, 0)
		require.NoError(t, err)
	})

	t.Run("only the owner may submit", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		err := svc.SubmitOwnershipTransferRequest(ctx, assistant, newOwner)
		require.ErrorIs(t, err, domainerrors.ErrOwnerOnly)
	})

	t.Run("transferring to the current owner rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		err := svc.SubmitOwnershipTransferRequest(ctx, owner, owner)
		require.ErrorIs(t, err, domainerrors.ErrAlreadyTheOwner)
	})

	t.Run("only the pending owner may confirm", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		require.NoError(t, svc.SubmitOwnershipTransferRequest(ctx, owner, newOwner))
		err := svc.ConfirmOwnershipTransferRequest(ctx, outsider)
		require.ErrorIs(t, err, domainerrors.ErrNotPendingOwner)
	})

	t.Run("confirm without a pending transfer rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		err := svc.ConfirmOwnershipTransferRequest(ctx, newOwner)
		require.ErrorIs(t, err, domainerrors.ErrNoPendingOwner)
	})

	t.Run("owner may cancel", func(t *testing.T) {
		svc, cfg, _, _ := newTestService(t)
		require.NoError(t, svc.SubmitOwnershipTransferRequest(ctx, owner, newOwner))
		require.NoError(t, svc.CancelOwnershipTransferRequest(ctx, owner))
		assert.Nil(t, cfg.owner.PendingOwner)

		err := svc.ConfirmOwnershipTransferRequest(ctx, newOwner)
		require.ErrorIs(t, err, domainerrors.ErrNoPendingOwner)
	})

	t.Run("cancel without a pending transfer rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		err := svc.CancelOwnershipTransferRequest(ctx, owner)
		require.ErrorIs(t, err, domainerrors.ErrNoPendingOwner)
	})
}

func TestUpdateAssistant(t *testing.T) {
	ctx := context.Background()

	t.Run("owner replaces the assistant", func(t *testing.T) {
		svc, cfg, _, _ := newTestService(t)
		require.NoError(t, svc.UpdateAssistant(ctx, owner, addr(8)))
		assert.Equal(t, addr(8), cfg.owner.Assistant)
	})

	t.Run("same assistant rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		err := svc.UpdateAssistant(ctx, owner, assistant)
		require.ErrorIs(t, err, domainerrors.ErrAlreadyTheAssistant)
	})

	t.Run("zero assistant rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		err := svc.UpdateAssistant(ctx, owner, entities.ZeroAddress)
		require.ErrorIs(t, err, domainerrors.ErrInvalidPublicKey)
	})
}

func TestUpdateFeeRecipient(t *testing.T) {
	ctx := context.Background()

	t.Run("owner replaces the fee recipient", func(t *testing.T) {
		svc, cfg, _, _ := newTestService(t)
		require.NoError(t, svc.UpdateFeeRecipient(ctx, owner, addr(9)))
		assert.Equal(t, addr(9), cfg.redeemer.FeeRecipient)
	})

	t.Run("same fee recipient rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		err := svc.UpdateFeeRecipient(ctx, owner, feeRecipient)
		require.ErrorIs(t, err, domainerrors.ErrAlreadyTheFeeRecipient)
	})
}

func TestPauseAndPrecision(t *testing.T) {
	ctx := context.Background()

	t.Run("owner pauses and resumes", func(t *testing.T) {
		svc, cfg, _, _ := newTestService(t)
		require.NoError(t, svc.SetPauseForTransfers(ctx, owner, true))
		assert.True(t, cfg.sender.Paused)
		require.NoError(t, svc.SetPauseForTransfers(ctx, owner, false))
		assert.False(t, cfg.sender.Paused)
	})

	t.Run("assistant may not pause", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		err := svc.SetPauseForTransfers(ctx, assistant, true)
		require.ErrorIs(t, err, domainerrors.ErrOwnerOnly)
	})

	t.Run("precision updates hit both configs", func(t *testing.T) {
		svc, cfg, _, _ := newTestService(t)
		require.NoError(t, svc.UpdateRelayerFeePrecision(ctx, owner, 1_000))
		assert.Equal(t, uint32(1_000), cfg.sender.RelayerFeePrecision)
		assert.Equal(t, uint32(1_000), cfg.redeemer.RelayerFeePrecision)

		require.NoError(t, svc.UpdateSwapRatePrecision(ctx, owner, 10_000))
		assert.Equal(t, uint32(10_000), cfg.sender.SwapRatePrecision)
		assert.Equal(t, uint32(10_000), cfg.redeemer.SwapRatePrecision)
	})

	t.Run("zero precision rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		require.ErrorIs(t, svc.UpdateRelayerFeePrecision(ctx, owner, 0), domainerrors.ErrInvalidPrecision)
		require.ErrorIs(t, svc.UpdateSwapRatePrecision(ctx, owner, 0), domainerrors.ErrInvalidPrecision)
	})
}
