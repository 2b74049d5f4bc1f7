package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/servhunt/digimenu/apperrors"
	"github.com/servhunt/digimenu/config"
)

// RazorpayService creates gateway orders and verifies payment signatures.
// The server never trusts client-declared success: only the HMAC over
// "orderID|paymentID" computed with the key secret counts.
type RazorpayService struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

func NewRazorpayService(cfg *config.Config) *RazorpayService {
	return &RazorpayService{
		keyID:     cfg.RazorpayKeyID,
		keySecret: cfg.RazorpayKeySecret,
		baseURL:   cfg.RazorpayBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (rs *RazorpayService) KeyID() string { return rs.keyID }

// VerifySignature recomputes HMAC-SHA256(secret, "orderID|paymentID") and
// compares it to the supplied signature in constant time.
func (rs *RazorpayService) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(rs.keySecret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// GatewayOrder is the subset of the Razorpay order object the client needs.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrder registers an order with the gateway. Amount is rupees; the
// API wants paise.
func (rs *RazorpayService) CreateOrder(amount float64, receipt string) (*GatewayOrder, error) {
	if rs.keyID == "" || rs.keySecret == "" {
		return nil, apperrors.New(apperrors.Provider, "payment gateway not configured")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"amount":   int64(math.Round(amount * 100)),
		"currency": "INR",
		"receipt":  receipt,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Provider, "failed to create payment order", err)
	}

	req, err := http.NewRequest(http.MethodPost, rs.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Provider, "failed to create payment order", err)
	}
	req.SetBasicAuth(rs.keyID, rs.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := rs.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Provider, "failed to create payment order", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.Newf(apperrors.Provider, "payment gateway returned status %d", resp.StatusCode)
	}

	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, apperrors.Wrap(apperrors.Provider, "invalid payment gateway response", err)
	}
	return &order, nil
}
