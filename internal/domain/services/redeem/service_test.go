package redeem_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
	domainerrors "github.com/relayer-service/relayer_service/internal/domain/errors"
	"github.com/relayer-service/relayer_service/internal/domain/message"
	"github.com/relayer-service/relayer_service/internal/domain/services/redeem"
	"github.com/relayer-service/relayer_service/internal/infrastructure/adapters/tokenbridge"
)

func addr(b byte) entities.Address {
	var a entities.Address
	a[31] = b
	return a
}

var (
	relayer      = addr(1)
	recipient    = addr(2)
	feeRecipient = addr(3)
	emitter      = addr(20)
	mint         = addr(10)
	nativeMint   = addr(11)
	escrowAddr   = addr(50)
)

const (
	localChain   uint16 = 1
	emitterChain uint16 = 2
	precision    uint32 = 100_000_000
	// The token is worth half the native asset: nativeSwapRate resolves
	// to exactly 2x precision, so one token buys half a native unit.
	tokenSwapRate  uint64 = 6_900_000_000
	nativeSwapRate uint64 = 13_800_000_000
	maxNativeSwap  uint64 = 1_000_000_000
)

type memConfigRepo struct {
	redeemer entities.RedeemerConfig
}

func (m *memConfigRepo) Initialize(ctx context.Context, owner, assistant, feeRecipient entities.Address, rfp, srp uint32) error {
	return nil
}
func (m *memConfigRepo) IsInitialized(ctx context.Context) (bool, error) { return true, nil }
func (m *memConfigRepo) GetOwnerConfig(ctx context.Context) (*entities.OwnerConfig, error) {
	return nil, errors.New("not used")
}
func (m *memConfigRepo) GetSenderConfig(ctx context.Context) (*entities.SenderConfig, error) {
	return nil, errors.New("not used")
}
func (m *memConfigRepo) GetRedeemerConfig(ctx context.Context) (*entities.RedeemerConfig, error) {
	cfg := m.redeemer
	return &cfg, nil
}
func (m *memConfigRepo) SetPendingOwner(ctx context.Context, pending *entities.Address) error {
	return nil
}
func (m *memConfigRepo) ConfirmOwnershipTransfer(ctx context.Context, newOwner entities.Address) error {
	return nil
}
func (m *memConfigRepo) UpdateAssistant(ctx context.Context, assistant entities.Address) error {
	return nil
}
func (m *memConfigRepo) UpdateFeeRecipient(ctx context.Context, feeRecipient entities.Address) error {
	return nil
}
func (m *memConfigRepo) SetPaused(ctx context.Context, paused bool) error              { return nil }
func (m *memConfigRepo) UpdateRelayerFeePrecision(ctx context.Context, p uint32) error { return nil }
func (m *memConfigRepo) UpdateSwapRatePrecision(ctx context.Context, p uint32) error   { return nil }

type memTokenRepo struct {
	tokens map[entities.Address]*entities.RegisteredToken
}

func (m *memTokenRepo) GetByMint(ctx context.Context, mint entities.Address) (*entities.RegisteredToken, error) {
	return m.tokens[mint], nil
}
func (m *memTokenRepo) Create(ctx context.Context, token *entities.RegisteredToken) error { return nil }
func (m *memTokenRepo) UpdateSwapRate(ctx context.Context, mint entities.Address, r uint64) error {
	return nil
}
func (m *memTokenRepo) UpdateMaxNativeSwapAmount(ctx context.Context, mint entities.Address, x uint64) error {
	return nil
}
func (m *memTokenRepo) Deregister(ctx context.Context, mint entities.Address) error { return nil }

type memContractRepo struct {
	contracts map[uint16]*entities.ForeignContract
}

func (m *memContractRepo) GetByChain(ctx context.Context, chain uint16) (*entities.ForeignContract, error) {
	return m.contracts[chain], nil
}
func (m *memContractRepo) Upsert(ctx context.Context, c *entities.ForeignContract) error { return nil }
func (m *memContractRepo) UpdateFee(ctx context.Context, chain uint16, fee uint64) error { return nil }

type memRelayRepo struct {
	relays map[uuid.UUID]*entities.RelayTransaction
}

func (m *memRelayRepo) Create(ctx context.Context, relay *entities.RelayTransaction) error {
	cp := *relay
	m.relays[relay.ID] = &cp
	return nil
}
func (m *memRelayRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.RelayTransaction, error) {
	return m.relays[id], nil
}
func (m *memRelayRepo) GetByMessageHash(ctx context.Context, hash string) (*entities.RelayTransaction, error) {
	for _, r := range m.relays {
		if r.MessageHash == hash {
			return r, nil
		}
	}
	return nil, nil
}
func (m *memRelayRepo) MarkPosted(ctx context.Context, id uuid.UUID, sequence uint64, hash string) error {
	return nil
}
func (m *memRelayRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.RelayStatus, errMsg string) error {
	r := m.relays[id]
	r.Status = status
	r.ErrorMessage = errMsg
	return nil
}

type mockBridgeClient struct {
	transfer *tokenbridge.AttestedTransfer
	claimed  bool
}

func (m *mockBridgeClient) PostMessageWithPayload(ctx context.Context, req *tokenbridge.PostMessageRequest) (*tokenbridge.PostedMessage, error) {
	return nil, errors.New("not used")
}
func (m *mockBridgeClient) GetAttestedTransfer(ctx context.Context, id string) (*tokenbridge.AttestedTransfer, error) {
	if m.transfer == nil {
		return nil, tokenbridge.ErrMessageNotFound
	}
	return m.transfer, nil
}
func (m *mockBridgeClient) IsClaimed(ctx context.Context, hash string) (bool, error) {
	return m.claimed, nil
}
func (m *mockBridgeClient) ForeignEndpoint(ctx context.Context, chain uint16) (*tokenbridge.ForeignEndpoint, error) {
	return nil, errors.New("not used")
}
func (m *mockBridgeClient) ListPendingForRedeemer(ctx context.Context, redeemer entities.Address) ([]*tokenbridge.AttestedTransfer, error) {
	return nil, nil
}

type custodyCall struct {
	op     string
	amount uint64
	from   entities.Address
	to     entities.Address
}

type mockCustodyClient struct {
	decimals uint8
	calls    []custodyCall
}

func (m *mockCustodyClient) TokenDecimals(ctx context.Context, mint entities.Address) (uint8, error) {
	return m.decimals, nil
}
func (m *mockCustodyClient) Transfer(ctx context.Context, mint, from, to entities.Address, amount uint64) error {
	m.calls = append(m.calls, custodyCall{op: "transfer", amount: amount, from: from, to: to})
	return nil
}
func (m *mockCustodyClient) TransferNative(ctx context.Context, from, to entities.Address, amount uint64) error {
	m.calls = append(m.calls, custodyCall{op: "transfer_native", amount: amount, from: from, to: to})
	return nil
}
func (m *mockCustodyClient) Approve(ctx context.Context, mint, delegate entities.Address, amount uint64) error {
	return nil
}
func (m *mockCustodyClient) OpenEscrow(ctx context.Context, mint entities.Address, escrowKey string) (entities.Address, error) {
	m.calls = append(m.calls, custodyCall{op: "open_escrow"})
	return escrowAddr, nil
}
func (m *mockCustodyClient) CloseEscrow(ctx context.Context, escrowKey string, destination entities.Address) error {
	m.calls = append(m.calls, custodyCall{op: "close_escrow", to: destination})
	return nil
}
func (m *mockCustodyClient) WrapNative(ctx context.Context, escrowKey string, amount uint64) error {
	m.calls = append(m.calls, custodyCall{op: "wrap_native", amount: amount})
	return nil
}
func (m *mockCustodyClient) UnwrapNative(ctx context.Context, escrowKey string, destination entities.Address) error {
	m.calls = append(m.calls, custodyCall{op: "unwrap_native", to: destination})
	return nil
}
func (m *mockCustodyClient) MintWrapped(ctx context.Context, mint, to entities.Address, amount uint64) error {
	m.calls = append(m.calls, custodyCall{op: "mint_wrapped", amount: amount, to: to})
	return nil
}

type fixture struct {
	svc     *redeem.Service
	tokens  *memTokenRepo
	relays  *memRelayRepo
	bridge  *mockBridgeClient
	custody *mockCustodyClient
}

// newFixture wires a 9-decimal registered token worth half the native
// asset, with a 1-native swap cap.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	config := &memConfigRepo{redeemer: entities.RedeemerConfig{
		RelayerFeePrecision: precision,
		SwapRatePrecision:   precision,
		FeeRecipient:        feeRecipient,
	}}
	tokens := &memTokenRepo{tokens: map[entities.Address]*entities.RegisteredToken{
		mint:       {Mint: mint, SwapRate: tokenSwapRate, MaxNativeSwapAmount: maxNativeSwap, IsRegistered: true},
		nativeMint: {Mint: nativeMint, SwapRate: nativeSwapRate, IsRegistered: true},
	}}
	contracts := &memContractRepo{contracts: map[uint16]*entities.ForeignContract{
		emitterChain: {Chain: emitterChain, Address: emitter},
	}}
	relays := &memRelayRepo{relays: make(map[uuid.UUID]*entities.RelayTransaction)}
	bridge := &mockBridgeClient{}
	custodyClient := &mockCustodyClient{decimals: 9}

	svc := redeem.NewService(config, tokens, contracts, relays, bridge, custodyClient, localChain, nativeMint, zap.NewNop())
	return &fixture{svc: svc, tokens: tokens, relays: relays, bridge: bridge, custody: custodyClient}
}

// attested builds an inbound transfer of 10 tokens (8-decimal amounts on
// the wire) with the given normalized fee and to-native request.
func (f *fixture) attested(fee, toNative uint64) {
	payload := &message.TransferWithRelay{
		TargetRelayerFee:    fee,
		ToNativeTokenAmount: toNative,
		Recipient:           recipient,
	}
	f.bridge.transfer = &tokenbridge.AttestedTransfer{
		MessageID:      "msg-1",
		MessageHash:    "0xdeadbeef",
		EmitterChain:   emitterChain,
		EmitterAddress: emitter,
		TokenChain:     localChain,
		TokenAddress:   mint,
		Amount:         1_000_000_000,
		Payload:        payload.Encode(),
	}
}

func baseRequest() *entities.RedeemRequest {
	return &entities.RedeemRequest{
		Payer:     relayer,
		MessageID: "msg-1",
		Recipient: recipient,
	}
}

func TestCompleteTransferWithRelay(t *testing.T) {
	ctx := context.Background()

	t.Run("splits the payout three ways", func(t *testing.T) {
		f := newFixture(t)
		f.attested(100_000_000, 100_000_000)

		result, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.NoError(t, err)

		assert.Equal(t, uint64(10_000_000_000), result.Amount)
		assert.Equal(t, uint64(1_000_000_000), result.RelayerFee)
		assert.Equal(t, uint64(1_000_000_000), result.TokenAmountIn)
		assert.Equal(t, uint64(500_000_000), result.NativeAmountOut)
		assert.Equal(t, uint64(8_000_000_000), result.RecipientAmount)
		assert.False(t, result.SelfRedeemed)

		// The parts must reassemble the denormalized amount exactly.
		assert.Equal(t, result.Amount, result.RecipientAmount+result.RelayerFee+result.TokenAmountIn)

		var native, fees, toRecipient custodyCall
		for _, c := range f.custody.calls {
			switch {
			case c.op == "transfer_native":
				native = c
			case c.op == "transfer" && c.to == feeRecipient:
				fees = c
			case c.op == "transfer" && c.to == recipient:
				toRecipient = c
			}
		}
		assert.Equal(t, uint64(500_000_000), native.amount)
		assert.Equal(t, relayer, native.from)
		assert.Equal(t, uint64(2_000_000_000), fees.amount)
		assert.Equal(t, escrowAddr, fees.from)
		assert.Equal(t, uint64(8_000_000_000), toRecipient.amount)
	})

	t.Run("clamps the swap to the token's cap", func(t *testing.T) {
		f := newFixture(t)
		// 3 tokens requested; the cap only covers 2 tokens of input.
		f.attested(0, 300_000_000)

		result, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.NoError(t, err)

		assert.Equal(t, uint64(2_000_000_000), result.TokenAmountIn)
		assert.Equal(t, maxNativeSwap, result.NativeAmountOut)
		assert.Equal(t, uint64(8_000_000_000), result.RecipientAmount)
	})

	t.Run("swap cap of zero disables the swap", func(t *testing.T) {
		f := newFixture(t)
		f.tokens.tokens[mint].MaxNativeSwapAmount = 0
		f.attested(100_000_000, 100_000_000)

		result, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.NoError(t, err)

		assert.Zero(t, result.TokenAmountIn)
		assert.Zero(t, result.NativeAmountOut)
		assert.Equal(t, uint64(9_000_000_000), result.RecipientAmount)
		for _, c := range f.custody.calls {
			assert.NotEqual(t, "transfer_native", c.op)
		}
	})

	t.Run("self redemption pays the full amount", func(t *testing.T) {
		f := newFixture(t)
		f.attested(100_000_000, 100_000_000)
		req := baseRequest()
		req.Payer = recipient

		result, err := f.svc.CompleteTransferWithRelay(ctx, req)
		require.NoError(t, err)

		assert.True(t, result.SelfRedeemed)
		assert.Equal(t, result.Amount, result.RecipientAmount)
		assert.Zero(t, result.RelayerFee)
		assert.Zero(t, result.TokenAmountIn)
		assert.Zero(t, result.NativeAmountOut)
	})

	t.Run("self redemption of wrapped native unwraps", func(t *testing.T) {
		f := newFixture(t)
		f.attested(100_000_000, 0)
		f.bridge.transfer.TokenAddress = nativeMint
		req := baseRequest()
		req.Payer = recipient

		result, err := f.svc.CompleteTransferWithRelay(ctx, req)
		require.NoError(t, err)
		assert.True(t, result.SelfRedeemed)

		var unwrapped bool
		for _, c := range f.custody.calls {
			if c.op == "unwrap_native" && c.to == recipient {
				unwrapped = true
			}
		}
		assert.True(t, unwrapped)
	})

	t.Run("relayed wrapped native pays the remainder unwrapped", func(t *testing.T) {
		f := newFixture(t)
		// 1 token fee, no swap: the fee stays wrapped, the remainder
		// reaches the recipient as native currency.
		f.attested(100_000_000, 0)
		f.bridge.transfer.TokenAddress = nativeMint

		result, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.NoError(t, err)

		assert.False(t, result.SelfRedeemed)
		assert.Equal(t, uint64(1_000_000_000), result.RelayerFee)
		assert.Zero(t, result.TokenAmountIn)
		assert.Equal(t, uint64(9_000_000_000), result.RecipientAmount)

		var fees, unwrap custodyCall
		for _, c := range f.custody.calls {
			switch c.op {
			case "transfer":
				fees = c
			case "unwrap_native":
				unwrap = c
			}
		}
		assert.Equal(t, uint64(1_000_000_000), fees.amount)
		assert.Equal(t, feeRecipient, fees.to)
		assert.Equal(t, recipient, unwrap.to)
	})

	t.Run("foreign-origin assets are minted into escrow", func(t *testing.T) {
		f := newFixture(t)
		f.attested(0, 0)
		f.bridge.transfer.TokenChain = emitterChain

		_, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.NoError(t, err)

		assert.Equal(t, "mint_wrapped", f.custody.calls[1].op)
		assert.Equal(t, uint64(10_000_000_000), f.custody.calls[1].amount)
		assert.Equal(t, escrowAddr, f.custody.calls[1].to)
	})

	t.Run("local-origin assets are never minted", func(t *testing.T) {
		f := newFixture(t)
		f.attested(0, 0)

		_, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.NoError(t, err)

		for _, c := range f.custody.calls {
			assert.NotEqual(t, "mint_wrapped", c.op)
		}
	})

	t.Run("rejects an already claimed transfer", func(t *testing.T) {
		f := newFixture(t)
		f.attested(0, 0)
		f.bridge.claimed = true

		_, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.ErrorIs(t, err, domainerrors.ErrAlreadyRedeemed)
	})

	t.Run("rejects a second redemption of the same message", func(t *testing.T) {
		f := newFixture(t)
		f.attested(0, 0)

		_, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.NoError(t, err)

		_, err = f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.ErrorIs(t, err, domainerrors.ErrAlreadyRedeemed)
	})

	t.Run("rejects an unknown emitter chain", func(t *testing.T) {
		f := newFixture(t)
		f.attested(0, 0)
		f.bridge.transfer.EmitterChain = 9

		_, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.ErrorIs(t, err, domainerrors.ErrChainNotRegistered)
	})

	t.Run("rejects a forged emitter address", func(t *testing.T) {
		f := newFixture(t)
		f.attested(0, 0)
		f.bridge.transfer.EmitterAddress = addr(66)

		_, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.ErrorIs(t, err, domainerrors.ErrInvalidForeignContract)

		// Nothing moved.
		assert.Empty(t, f.custody.calls)
	})

	t.Run("rejects a recipient mismatch", func(t *testing.T) {
		f := newFixture(t)
		f.attested(0, 0)
		req := baseRequest()
		req.Recipient = addr(77)

		_, err := f.svc.CompleteTransferWithRelay(ctx, req)
		require.ErrorIs(t, err, domainerrors.ErrInvalidRecipient)
	})

	t.Run("rejects a malformed payload", func(t *testing.T) {
		f := newFixture(t)
		f.attested(0, 0)
		f.bridge.transfer.Payload = []byte{0x02, 0x00}

		_, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.ErrorIs(t, err, domainerrors.ErrInvalidPayload)
	})

	t.Run("rejects an unregistered token", func(t *testing.T) {
		f := newFixture(t)
		f.attested(0, 0)
		f.bridge.transfer.TokenAddress = addr(88)

		_, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.ErrorIs(t, err, domainerrors.ErrTokenNotRegistered)
	})

	t.Run("rejects a fee larger than the transfer", func(t *testing.T) {
		f := newFixture(t)
		// Fee of 20 tokens against a 10 token transfer.
		f.attested(2_000_000_000, 0)

		_, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.ErrorIs(t, err, domainerrors.ErrInsufficientFunds)
	})

	t.Run("rejects a fee that wraps uint64 when denormalized", func(t *testing.T) {
		f := newFixture(t)
		// 2^63 * 10 is an exact multiple of 2^64: unchecked arithmetic
		// would wrap the fee to zero and pay the fee recipient nothing.
		f.attested(1<<63, 0)

		_, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.ErrorIs(t, err, domainerrors.ErrInsufficientFunds)
		assert.Empty(t, f.custody.calls)
	})

	t.Run("rejects a to-native amount that wraps uint64 when denormalized", func(t *testing.T) {
		f := newFixture(t)
		f.attested(0, 1<<63)

		_, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.ErrorIs(t, err, domainerrors.ErrInvalidToNativeAmount)
		assert.Empty(t, f.custody.calls)
	})

	t.Run("records the redemption on the ledger", func(t *testing.T) {
		f := newFixture(t)
		f.attested(100_000_000, 0)

		_, err := f.svc.CompleteTransferWithRelay(ctx, baseRequest())
		require.NoError(t, err)

		stored, err := f.relays.GetByMessageHash(ctx, "0xdeadbeef")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, entities.RelayDirectionInbound, stored.Direction)
		assert.Equal(t, entities.RelayStatusRedeemed, stored.Status)
	})
}
