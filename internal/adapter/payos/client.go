package payos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/packlab/packstore/internal/domain/model"
)

const successCode = "00"

// UpstreamError indicates the payment provider rejected or failed a call.
type UpstreamError struct {
	Status int
	Desc   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("payos: %s (status %d)", e.Desc, e.Status)
}

// TooManyRequestsError represents rate limiting signal from the provider.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Client exposes operations against the payment provider.
type Client interface {
	CreatePaymentLink(ctx context.Context, orderCode int64, amount int64, description string) (*model.PaymentLink, error)
	GetPaymentLink(ctx context.Context, orderCode int64) (*model.PaymentLink, error)
}

// Credentials carries the static provider secrets.
type Credentials struct {
	ClientID    string
	APIKey      string
	ChecksumKey string
}

// HTTPClient implements Client via the provider's HTTP API.
type HTTPClient struct {
	baseURL     *url.URL
	credentials Credentials
	returnURL   string
	cancelURL   string
	httpClient  *http.Client
	logger      *slog.Logger
}

type createRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	ReturnURL   string `json:"returnUrl"`
	CancelURL   string `json:"cancelUrl"`
	Signature   string `json:"signature"`
}

// response mirrors the provider's envelope.
type response struct {
	Code string          `json:"code"`
	Desc string          `json:"desc"`
	Data json.RawMessage `json:"data"`
}

type linkData struct {
	OrderCode   int64  `json:"orderCode"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkoutUrl"`
	AmountPaid  int64  `json:"amountPaid"`
}

// NewHTTPClient creates provider client with default timeout.
func NewHTTPClient(baseURL string, credentials Credentials, returnURL, cancelURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse payos url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("payos url must be absolute")
	}
	return &HTTPClient{
		baseURL:     parsed,
		credentials: credentials,
		returnURL:   returnURL,
		cancelURL:   cancelURL,
		logger:      logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// CreatePaymentLink registers a payment request and returns its checkout link.
func (c *HTTPClient) CreatePaymentLink(ctx context.Context, orderCode int64, amount int64, description string) (*model.PaymentLink, error) {
	payload := createRequest{
		OrderCode:   orderCode,
		Amount:      amount,
		Description: description,
		ReturnURL:   c.returnURL,
		CancelURL:   c.cancelURL,
	}
	payload.Signature = Sign(c.credentials.ChecksumKey, map[string]string{
		"amount":      strconv.FormatInt(amount, 10),
		"cancelUrl":   c.cancelURL,
		"description": description,
		"orderCode":   strconv.FormatInt(orderCode, 10),
		"returnUrl":   c.returnURL,
	})

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodPost, "/v2/payment-requests", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	link := model.PaymentLink{OrderCode: orderCode, Status: model.PaymentLinkStatusPending, CheckoutURL: data.CheckoutURL}
	if link.CheckoutURL == "" {
		return nil, &UpstreamError{Status: http.StatusOK, Desc: "missing checkout url"}
	}
	return &link, nil
}

// GetPaymentLink queries current payment request state for an order.
func (c *HTTPClient) GetPaymentLink(ctx context.Context, orderCode int64) (*model.PaymentLink, error) {
	endpoint := path.Join("/v2/payment-requests", strconv.FormatInt(orderCode, 10))
	data, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return &model.PaymentLink{
		OrderCode:   orderCode,
		Status:      model.PaymentLinkStatus(data.Status),
		CheckoutURL: data.CheckoutURL,
		AmountPaid:  data.AmountPaid,
	}, nil
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, body io.Reader) (*linkData, error) {
	target := *c.baseURL
	target.Path = path.Join(target.Path, endpoint)

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-client-id", c.credentials.ClientID)
	req.Header.Set("x-api-key", c.credentials.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, TooManyRequestsError{RetryAfter: retryAfter}
	case resp.StatusCode != http.StatusOK:
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error("payos request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(raw)))
		return nil, &UpstreamError{Status: resp.StatusCode, Desc: resp.Status}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var envelope response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	if envelope.Code != successCode {
		return nil, &UpstreamError{Status: resp.StatusCode, Desc: envelope.Desc}
	}

	var data linkData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
