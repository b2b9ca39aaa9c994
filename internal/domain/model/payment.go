package model

// PaymentLinkStatus describes payment request state reported by the provider.
type PaymentLinkStatus string

const (
	PaymentLinkStatusPending   PaymentLinkStatus = "PENDING"
	PaymentLinkStatusPaid      PaymentLinkStatus = "PAID"
	PaymentLinkStatusCancelled PaymentLinkStatus = "CANCELLED"
	PaymentLinkStatusExpired   PaymentLinkStatus = "EXPIRED"
)

// PaymentLink encapsulates the provider's view of a payment request.
type PaymentLink struct {
	OrderCode   int64
	Status      PaymentLinkStatus
	CheckoutURL string
	AmountPaid  int64
}
