// Package routes wires handlers and middleware into the gin engine.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/relayer-service/relayer_service/internal/api/handlers"
	"github.com/relayer-service/relayer_service/internal/api/middleware"
)

// Handlers bundles everything SetupRoutes mounts.
type Handlers struct {
	Admin    *handlers.AdminHandlers
	Transfer *handlers.TransferHandlers
	Redeem   *handlers.RedeemHandlers
	Health   *handlers.HealthHandlers
	Logger   *zap.Logger
}

// SetupRoutes builds the router. Reads are open; every mutation goes
// through RequireSigner and the services' own authorization checks.
func SetupRoutes(h *Handlers) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(h.Logger))
	router.Use(middleware.Recovery(h.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.RateLimit(100, 200))

	router.GET("/health", h.Health.Health)
	router.GET("/health/liveness", h.Health.Liveness)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	transfers := v1.Group("/transfers")
	{
		transfers.GET("/quote", h.Transfer.Quote)
		transfers.GET("/:id", h.Transfer.Get)
		transfers.POST("", middleware.RequireSigner(), h.Transfer.Create)
	}

	v1.POST("/redemptions", middleware.RequireSigner(), h.Redeem.Create)

	admin := v1.Group("/admin")
	{
		admin.GET("/config", h.Admin.GetConfig)
		admin.GET("/tokens/:mint", h.Admin.GetToken)
		admin.GET("/contracts/:chain", h.Admin.GetForeignContract)

		signed := admin.Group("", middleware.RequireSigner())
		{
			signed.POST("/initialize", h.Admin.Initialize)

			signed.POST("/tokens", h.Admin.RegisterToken)
			signed.DELETE("/tokens/:mint", h.Admin.DeregisterToken)
			signed.PUT("/tokens/:mint/swap-rate", h.Admin.UpdateSwapRate)
			signed.PUT("/tokens/:mint/max-native-swap-amount", h.Admin.UpdateMaxNativeSwapAmount)

			signed.POST("/contracts", h.Admin.RegisterForeignContract)
			signed.PUT("/contracts/:chain/fee", h.Admin.UpdateRelayerFee)

			signed.PUT("/config/relayer-fee-precision", h.Admin.UpdateRelayerFeePrecision)
			signed.PUT("/config/swap-rate-precision", h.Admin.UpdateSwapRatePrecision)
			signed.PUT("/config/pause", h.Admin.SetPause)
			signed.PUT("/config/assistant", h.Admin.UpdateAssistant)
			signed.PUT("/config/fee-recipient", h.Admin.UpdateFeeRecipient)

			signed.POST("/ownership/submit", h.Admin.SubmitOwnershipTransfer)
			signed.POST("/ownership/confirm", h.Admin.ConfirmOwnershipTransfer)
			signed.POST("/ownership/cancel", h.Admin.CancelOwnershipTransfer)
		}
	}

	return router
}
