package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Order is a gateway-side payment order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor currency units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway is the payment-provider API surface the bridge depends on.
// Production uses the Razorpay client; tests inject a fake.
type Gateway interface {
	CreateOrder(amount int64, currency, receipt string) (*Order, error)
}

// RazorpayClient talks to the Razorpay Orders API.
type RazorpayClient struct {
	client *resty.Client
}

func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		client: resty.New().
			SetBaseURL("https://api.razorpay.com/v1").
			SetBasicAuth(keyID, keySecret).
			SetTimeout(10 * time.Second),
	}
}

func (r *RazorpayClient) CreateOrder(amount int64, currency, receipt string) (*Order, error) {
	var order Order
	resp, err := r.client.R().
		SetBody(map[string]interface{}{
			"amount":   amount,
			"currency": currency,
			"receipt":  receipt,
		}).
		SetResult(&order).
		Post("/orders")
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("razorpay create order: %s: %s", resp.Status(), resp.String())
	}
	return &order, nil
}

// VerifyPaymentSignature checks the client-supplied checkout signature:
// hex(HMAC-SHA256(order_id + "|" + payment_id, key_secret)).
func VerifyPaymentSignature(orderID, paymentID, signature, keySecret string) bool {
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the webhook header signature:
// hex(HMAC-SHA256(raw_body, webhook_secret)).
func VerifyWebhookSignature(body []byte, signature, webhookSecret string) bool {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
