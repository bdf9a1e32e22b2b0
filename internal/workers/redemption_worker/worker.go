// Package redemption_worker polls the token bridge for attested
// transfers addressed to this relayer and completes them.
package redemption_worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
	domainerrors "github.com/relayer-service/relayer_service/internal/domain/errors"
	"github.com/relayer-service/relayer_service/internal/domain/message"
	"github.com/relayer-service/relayer_service/internal/domain/services/redeem"
	"github.com/relayer-service/relayer_service/internal/infrastructure/adapters/tokenbridge"
	"github.com/relayer-service/relayer_service/pkg/metrics"
)

// PendingLister is the bridge surface the worker polls.
type PendingLister interface {
	ListPendingForRedeemer(ctx context.Context, redeemer entities.Address) ([]*tokenbridge.AttestedTransfer, error)
}

// Redeemer completes one attested transfer.
type Redeemer interface {
	CompleteTransferWithRelay(ctx context.Context, req *entities.RedeemRequest) (*entities.RedeemResult, error)
}

type Worker struct {
	bridge   PendingLister
	redeemer Redeemer
	signer   entities.Address
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewWorker creates a new redemption worker polling on the given cron
// schedule (e.g. "@every 15s"), redeeming as signer.
func NewWorker(bridge PendingLister, redeemer Redeemer, signer entities.Address, schedule string, logger *zap.Logger) *Worker {
	return &Worker{
		bridge:   bridge,
		redeemer: redeemer,
		signer:   signer,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

func (w *Worker) Start() error {
	_, err := w.cron.AddFunc(w.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		w.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	w.logger.Info("Redemption worker started", zap.String("schedule", w.schedule))
	return nil
}

func (w *Worker) Stop() {
	w.cron.Stop()
	w.logger.Info("Redemption worker stopped")
}

// RunOnce drains the current batch of pending transfers. Failures are
// logged and left for the next poll; a transfer someone else claimed in
// the meantime is skipped silently.
func (w *Worker) RunOnce(ctx context.Context) {
	transfers, err := w.bridge.ListPendingForRedeemer(ctx, w.signer)
	if err != nil {
		w.logger.Error("Failed to list pending transfers", zap.Error(err))
		return
	}
	metrics.PendingRedemptionsGauge.Set(float64(len(transfers)))
	if len(transfers) == 0 {
		return
	}

	w.logger.Info("Processing pending transfers", zap.Int("count", len(transfers)))
	for _, transfer := range transfers {
		if err := w.redeemOne(ctx, transfer); err != nil {
			if domainerrors.Is(err, domainerrors.ErrAlreadyRedeemed) {
				continue
			}
			metrics.RecordRelay(string(entities.RelayDirectionInbound), "failed")
			w.logger.Error("Failed to redeem transfer",
				zap.String("message_id", transfer.MessageID),
				zap.Uint16("emitter_chain", transfer.EmitterChain),
				zap.Error(err),
			)
			continue
		}
		metrics.RecordRelay(string(entities.RelayDirectionInbound), "redeemed")
	}
}

func (w *Worker) redeemOne(ctx context.Context, transfer *tokenbridge.AttestedTransfer) error {
	// The recipient comes out of the payload itself; an undecodable
	// payload is a permanent failure, not a retry candidate.
	payload, err := message.Decode(transfer.Payload)
	if err != nil {
		return err
	}

	result, err := w.redeemer.CompleteTransferWithRelay(ctx, &entities.RedeemRequest{
		Payer:     w.signer,
		MessageID: transfer.MessageID,
		Recipient: payload.Recipient,
	})
	if err != nil {
		return err
	}

	w.logger.Info("Transfer redeemed",
		zap.String("message_id", transfer.MessageID),
		zap.Uint64("recipient_amount", result.RecipientAmount),
		zap.Uint64("native_amount_out", result.NativeAmountOut),
	)
	return nil
}

var _ Redeemer = (*redeem.Service)(nil)
