package payos

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/packlab/packstore/internal/domain/model"
)

func newTestClient(t *testing.T, baseURL string) *HTTPClient {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	credentials := Credentials{ClientID: "client", APIKey: "api-key", ChecksumKey: "checksum-secret"}
	client, err := NewHTTPClient(baseURL, credentials, "https://store.example/success", "https://store.example/cancel", logger)
	if err != nil {
		t.Fatalf("NewHTTPClient returned error: %v", err)
	}
	return client
}

func TestNewHTTPClientValidation(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if _, err := NewHTTPClient("relative/url", Credentials{}, "r", "c", logger); err == nil {
		t.Fatal("expected error for non-absolute url")
	}
}

func TestCreatePaymentLink(t *testing.T) {
	var captured createRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/payment-requests" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("x-client-id") != "client" || r.Header.Get("x-api-key") != "api-key" {
			t.Error("credential headers missing")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": "00",
			"desc": "success",
			"data": map[string]any{
				"orderCode":   captured.OrderCode,
				"status":      "PENDING",
				"checkoutUrl": "https://pay.example/checkout/100",
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	link, err := client.CreatePaymentLink(context.Background(), 100, 990000, "packstore pro")
	if err != nil {
		t.Fatalf("CreatePaymentLink returned error: %v", err)
	}
	if link.CheckoutURL != "https://pay.example/checkout/100" {
		t.Fatalf("unexpected checkout url %q", link.CheckoutURL)
	}
	if link.Status != model.PaymentLinkStatusPending {
		t.Fatalf("unexpected status %q", link.Status)
	}

	wantSignature := Sign("checksum-secret", map[string]string{
		"amount":      "990000",
		"cancelUrl":   "https://store.example/cancel",
		"description": "packstore pro",
		"orderCode":   "100",
		"returnUrl":   "https://store.example/success",
	})
	if captured.Signature != wantSignature {
		t.Fatalf("request signature %q does not verify", captured.Signature)
	}
	if captured.ReturnURL != "https://store.example/success" || captured.CancelURL != "https://store.example/cancel" {
		t.Fatalf("redirect urls missing from request: %+v", captured)
	}
}

func TestCreatePaymentLinkMissingCheckoutURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": "00",
			"desc": "success",
			"data": map[string]any{"orderCode": 100, "status": "PENDING"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	var upstream *UpstreamError
	if _, err := client.CreatePaymentLink(context.Background(), 100, 990000, "packstore pro"); !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestGetPaymentLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v2/payment-requests/100" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": "00",
			"desc": "success",
			"data": map[string]any{
				"orderCode":  100,
				"status":     "PAID",
				"amountPaid": 990000,
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	link, err := client.GetPaymentLink(context.Background(), 100)
	if err != nil {
		t.Fatalf("GetPaymentLink returned error: %v", err)
	}
	if link.Status != model.PaymentLinkStatusPaid || link.AmountPaid != 990000 {
		t.Fatalf("unexpected link %+v", link)
	}
}

func TestProviderErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": "231",
			"desc": "order not found",
			"data": nil,
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	var upstream *UpstreamError
	if _, err := client.GetPaymentLink(context.Background(), 100); !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	} else if upstream.Desc != "order not found" {
		t.Fatalf("unexpected desc %q", upstream.Desc)
	}
}

func TestNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	var upstream *UpstreamError
	if _, err := client.GetPaymentLink(context.Background(), 100); !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	} else if upstream.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", upstream.Status)
	}
}

func TestTooManyRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	var tooMany TooManyRequestsError
	if _, err := client.GetPaymentLink(context.Background(), 100); !errors.As(err, &tooMany) {
		t.Fatalf("expected TooManyRequestsError, got %v", err)
	} else if tooMany.RetryAfter != 7*time.Second {
		t.Fatalf("unexpected retry after %v", tooMany.RetryAfter)
	}
}

func TestParseRetryAfter(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"empty falls back", "", 5 * time.Second},
		{"seconds", "12", 12 * time.Second},
		{"garbage falls back", "soon", 5 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseRetryAfter(tc.header); got != tc.want {
				t.Fatalf("parseRetryAfter(%q) = %v, want %v", tc.header, got, tc.want)
			}
		})
	}
}
