package dto

import "time"

// CreatePaymentRequest describes checkout creation payload.
type CreatePaymentRequest struct {
	ProductName string `json:"productName"`
	Price       int64  `json:"price"`
}

// CreatePaymentResponse carries the provider checkout link.
type CreatePaymentResponse struct {
	OrderID     int64  `json:"orderId"`
	CheckoutURL string `json:"checkoutUrl"`
}

// WebhookRequest mirrors the provider's asynchronous confirmation payload.
type WebhookRequest struct {
	Code    string      `json:"code"`
	Success bool        `json:"success"`
	Data    WebhookData `json:"data"`
}

// WebhookData is the nested payment information inside a webhook.
type WebhookData struct {
	OrderCode int64 `json:"orderCode"`
	Amount    int64 `json:"amount"`
}

// WebhookResponse is the fixed acknowledgment the provider expects.
type WebhookResponse struct {
	Success bool `json:"success"`
}

// Issuance states reported by the license-by-order endpoint.
const (
	IssuanceNotFound  = "not_found"
	IssuancePending   = "pending"
	IssuanceCompleted = "completed"
)

// LicenseByOrderResponse reports issuance state for a polled order.
type LicenseByOrderResponse struct {
	Status     string     `json:"status"`
	LicenseKey string     `json:"licenseKey,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}
