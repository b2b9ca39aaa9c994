package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/packlab/packstore/internal/server/http/handlers"
	"github.com/packlab/packstore/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.LicensingFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	paymentHandler := handlers.NewPaymentHandler(facade, logger)
	licenseHandler := handlers.NewLicenseHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade)

	engine.POST("/create-payment", paymentHandler.Create)
	engine.GET("/payment-success", paymentHandler.Success)
	engine.POST("/payos-webhook", paymentHandler.Webhook)
	engine.GET("/get-license/:orderId", paymentHandler.LicenseByOrder)

	engine.POST("/activate-license", licenseHandler.Activate)
	engine.POST("/bind-device", licenseHandler.Bind)
	engine.POST("/check-license", licenseHandler.Check)
	engine.POST("/check-device-license", licenseHandler.CheckDevice)

	engine.POST("/admin/login", adminHandler.Login)

	admin := engine.Group("/admin")
	admin.Use(middleware.AdminRequired(facade))
	admin.GET("/orders", adminHandler.Orders)
	admin.GET("/licenses", adminHandler.Licenses)

	return engine
}
