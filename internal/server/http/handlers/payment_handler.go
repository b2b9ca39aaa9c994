package handlers

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/packlab/packstore/internal/adapter/payos"
	domainErrors "github.com/packlab/packstore/internal/domain/errors"
	"github.com/packlab/packstore/internal/server/http/dto"
)

// Query values the provider sends on a successful browser return.
const (
	redirectSuccessCode   = "00"
	redirectSuccessStatus = "PAID"
)

// PaymentHandler manages checkout and confirmation endpoints.
type PaymentHandler struct {
	facade PaymentFacade
	logger *slog.Logger
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{facade: facade, logger: logger}
}

// Create handles POST /create-payment.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "productName and price are required"})
		return
	}

	order, checkoutURL, err := h.facade.CreatePayment(c.Request.Context(), req.ProductName, req.Price)
	if err != nil {
		var upstream *payos.UpstreamError
		switch {
		case errors.Is(err, domainErrors.ErrValidation):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "productName and price are required"})
		case errors.As(err, &upstream):
			h.logger.Error("checkout creation failed upstream", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "payment provider unavailable"})
		default:
			h.logger.Error("checkout creation failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.CreatePaymentResponse{OrderID: order.Code, CheckoutURL: checkoutURL})
}

// Success handles GET /payment-success, the provider's browser return.
// The query parameters are untrusted duplicates of the webhook signal; they
// feed the same confirmation path and render a human-facing page.
func (h *PaymentHandler) Success(c *gin.Context) {
	code := c.Query("code")
	status := c.Query("status")
	orderCode, parseErr := strconv.ParseInt(c.Query("orderCode"), 10, 64)

	if parseErr != nil || code != redirectSuccessCode || status != redirectSuccessStatus {
		renderResultPage(c, "Payment not completed", "Your payment was not confirmed. If you were charged, the license will appear shortly.")
		return
	}

	license, err := h.facade.ConfirmPayment(c.Request.Context(), orderCode, 0)
	if err != nil {
		h.logger.Error("redirect confirmation failed", slog.Int64("order", orderCode), slog.String("error", err.Error()))
		renderResultPage(c, "Payment received", "Your license is being issued. Check back with your order id shortly.")
		return
	}

	renderResultPage(c, "Payment successful",
		fmt.Sprintf("Your license key is <strong>%s</strong>, valid until %s.",
			html.EscapeString(license.Key), license.ExpiresAt.Format("2006-01-02")))
}

// Webhook handles POST /payos-webhook, the provider's server-to-server
// confirmation. The transport-level acknowledgment is always success:
// a non-success response would trigger the provider's retry storm, so
// internal failures are only logged.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	ack := func() { c.JSON(http.StatusOK, dto.WebhookResponse{Success: true}) }

	var req dto.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("malformed webhook payload", slog.String("error", err.Error()))
		ack()
		return
	}

	if req.Code != redirectSuccessCode || !req.Success {
		h.logger.Info("ignoring non-success webhook", slog.String("code", req.Code), slog.Int64("order", req.Data.OrderCode))
		ack()
		return
	}

	if _, err := h.facade.ConfirmPayment(c.Request.Context(), req.Data.OrderCode, req.Data.Amount); err != nil {
		h.logger.Error("webhook confirmation failed", slog.Int64("order", req.Data.OrderCode), slog.String("error", err.Error()))
	}
	ack()
}

// LicenseByOrder handles GET /get-license/:orderId.
func (h *PaymentHandler) LicenseByOrder(c *gin.Context) {
	orderCode, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "order id must be numeric"})
		return
	}

	order, license, err := h.facade.OrderWithLicense(c.Request.Context(), orderCode)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.LicenseByOrderResponse{Status: dto.IssuanceNotFound})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	if !order.Completed() || license == nil {
		c.JSON(http.StatusOK, dto.LicenseByOrderResponse{Status: dto.IssuancePending})
		return
	}

	c.JSON(http.StatusOK, dto.LicenseByOrderResponse{
		Status:     dto.IssuanceCompleted,
		LicenseKey: license.Key,
		ExpiresAt:  &license.ExpiresAt,
	})
}

func renderResultPage(c *gin.Context, title, message string) {
	page := fmt.Sprintf(
		"<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>%s</title></head><body><h1>%s</h1><p>%s</p></body></html>",
		html.EscapeString(title), html.EscapeString(title), message)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
