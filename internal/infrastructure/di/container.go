// Package di builds the object graph: adapters, repositories, services,
// handlers and workers, in dependency order.
package di

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/relayer-service/relayer_service/internal/api/handlers"
	"github.com/relayer-service/relayer_service/internal/api/routes"
	"github.com/relayer-service/relayer_service/internal/domain/entities"
	"github.com/relayer-service/relayer_service/internal/domain/services/admin"
	"github.com/relayer-service/relayer_service/internal/domain/services/redeem"
	"github.com/relayer-service/relayer_service/internal/domain/services/transfer"
	"github.com/relayer-service/relayer_service/internal/infrastructure/adapters/custody"
	"github.com/relayer-service/relayer_service/internal/infrastructure/adapters/tokenbridge"
	"github.com/relayer-service/relayer_service/internal/infrastructure/cache"
	"github.com/relayer-service/relayer_service/internal/infrastructure/config"
	"github.com/relayer-service/relayer_service/internal/infrastructure/repositories"
	"github.com/relayer-service/relayer_service/internal/workers/redemption_worker"
	"github.com/relayer-service/relayer_service/pkg/logger"
)

// Container holds the fully wired service graph.
type Container struct {
	Config *config.Config
	DB     *sqlx.DB
	Redis  cache.RedisClient

	BridgeClient  tokenbridge.BridgeClient
	CustodyClient custody.CustodyClient

	TokenRepo    *repositories.TokenRepository
	ContractRepo *repositories.ForeignContractRepository
	ConfigRepo   *repositories.ConfigRepository
	SequenceRepo *repositories.SequenceRepository
	RelayRepo    *repositories.RelayRepository

	AdminService    *admin.Service
	TransferService *transfer.Service
	RedeemService   *redeem.Service

	RedemptionWorker *redemption_worker.Worker

	log *logger.Logger
}

// NewContainer wires the whole graph. Redis is optional; without it the
// token registry reads straight from Postgres.
func NewContainer(cfg *config.Config, db *sqlx.DB, log *logger.Logger) (*Container, error) {
	signer, err := entities.ParseAddress(cfg.Relayer.SignerKey)
	if err != nil {
		return nil, fmt.Errorf("parse relayer.signer_key: %w", err)
	}
	nativeMint, err := entities.ParseAddress(cfg.Relayer.NativeMint)
	if err != nil {
		return nil, fmt.Errorf("parse relayer.native_mint: %w", err)
	}
	bridgeAuthority, err := entities.ParseAddress(cfg.Bridge.Authority)
	if err != nil {
		return nil, fmt.Errorf("parse bridge.authority: %w", err)
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis, log.Zap())
	if err != nil {
		log.Warn("Redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	bridgeClient := tokenbridge.NewClient(tokenbridge.Config{
		BaseURL: cfg.Bridge.BaseURL,
		Timeout: time.Duration(cfg.Bridge.Timeout) * time.Second,
	}, log.Zap())

	custodyClient := custody.NewClient(custody.Config{
		BaseURL: cfg.Custody.BaseURL,
		Timeout: time.Duration(cfg.Custody.Timeout) * time.Second,
	}, log.Zap())

	tokenRepo := repositories.NewTokenRepository(db, redisClient, log.Zap())
	contractRepo := repositories.NewForeignContractRepository(db)
	configRepo := repositories.NewConfigRepository(db)
	sequenceRepo := repositories.NewSequenceRepository(db)
	relayRepo := repositories.NewRelayRepository(db)

	adminService := admin.NewService(
		configRepo, tokenRepo, contractRepo, bridgeClient,
		cfg.Relayer.ChainID, nativeMint, log.Zap(),
	)
	transferService := transfer.NewService(
		configRepo, tokenRepo, contractRepo, sequenceRepo, relayRepo,
		bridgeClient, custodyClient, bridgeAuthority, log.Zap(),
	)
	redeemService := redeem.NewService(
		configRepo, tokenRepo, contractRepo, relayRepo,
		bridgeClient, custodyClient, cfg.Relayer.ChainID, nativeMint, log.Zap(),
	)

	var worker *redemption_worker.Worker
	if cfg.Workers.RedemptionEnabled {
		worker = redemption_worker.NewWorker(
			bridgeClient, redeemService, signer,
			cfg.Workers.RedemptionSchedule, log.Zap(),
		)
	}

	return &Container{
		Config:           cfg,
		DB:               db,
		Redis:            redisClient,
		BridgeClient:     bridgeClient,
		CustodyClient:    custodyClient,
		TokenRepo:        tokenRepo,
		ContractRepo:     contractRepo,
		ConfigRepo:       configRepo,
		SequenceRepo:     sequenceRepo,
		RelayRepo:        relayRepo,
		AdminService:     adminService,
		TransferService:  transferService,
		RedeemService:    redeemService,
		RedemptionWorker: worker,
		log:              log,
	}, nil
}

// Handlers builds the handler set for the router.
func (c *Container) Handlers() *routes.Handlers {
	return &routes.Handlers{
		Admin:    handlers.NewAdminHandlers(c.AdminService, c.log.Zap()),
		Transfer: handlers.NewTransferHandlers(c.TransferService, c.log.Zap()),
		Redeem:   handlers.NewRedeemHandlers(c.RedeemService, c.log.Zap()),
		Health:   handlers.NewHealthHandlers(c.DB, c.Redis, c.log.Zap()),
		Logger:   c.log.Zap(),
	}
}

// Close releases held connections.
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.log.Warn("Failed to close redis client", "error", err)
		}
	}
}
