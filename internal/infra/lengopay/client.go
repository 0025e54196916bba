package lengopay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"inventory-app/logging"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client is a thin adapter over the LengoPay HTTP API. It never returns a
// transport or decoding error to callers of CreatePayment: every failure
// mode normalizes into a CreatePaymentResult with Success=false so payment
// initiation stays safely retryable.
type Client struct {
	apiKey     string
	merchantID string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, merchantID, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		merchantID: merchantID,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type CreatePaymentResult struct {
	Success    bool
	PayID      string
	PaymentURL string
	Error      string
}

type createPaymentRequest struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	MerchantID  string  `json:"merchant_id"`
	Reference   string  `json:"reference"`
	Description string  `json:"description"`
	ReturnURL   string  `json:"return_url"`
	CallbackURL string  `json:"callback_url"`
}

type createPaymentResponse struct {
	PayID      string `json:"pay_id"`
	PaymentURL string `json:"payment_url"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (c *Client) CreatePayment(amount float64, currency, returnURL, callbackURL string) CreatePaymentResult {
	payload := createPaymentRequest{
		Amount:      amount,
		Currency:    currency,
		MerchantID:  c.merchantID,
		Reference:   "SUB-" + uuid.NewString(),
		Description: "Monthly subscription - inventory management",
		ReturnURL:   returnURL,
		CallbackURL: callbackURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return failure("encode payment request: " + err.Error())
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return failure("build payment request: " + err.Error())
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Logger.WithFields(logrus.Fields{
			"source": "lengopay",
			"error":  err.Error(),
		}).Error("Payment creation request failed")
		return failure("payment gateway unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return failure("read gateway response: " + err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Logger.WithFields(logrus.Fields{
			"source": "lengopay",
			"status": resp.StatusCode,
		}).Error("Payment creation rejected by gateway")
		return failure(fmt.Sprintf("payment gateway returned status %d", resp.StatusCode))
	}

	var decoded createPaymentResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return failure("malformed gateway response")
	}
	if decoded.PayID == "" || decoded.PaymentURL == "" {
		// A 2xx body without the success markers is still a failure.
		msg := decoded.Message
		if msg == "" {
			msg = "gateway response missing pay_id or payment_url"
		}
		return failure(msg)
	}

	logging.Logger.WithFields(logrus.Fields{
		"source": "lengopay",
		"pay_id": decoded.PayID,
	}).Info("Payment created")

	return CreatePaymentResult{
		Success:    true,
		PayID:      decoded.PayID,
		PaymentURL: decoded.PaymentURL,
	}
}

// VerifyPayment is a best-effort secondary check. Any failure degrades to
// "unknown" rather than raising.
func (c *Client) VerifyPayment(payID string) string {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/v1/payments/"+payID, nil)
	if err != nil {
		return StatusUnknown
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Logger.WithFields(logrus.Fields{
			"source": "lengopay",
			"pay_id": payID,
			"error":  err.Error(),
		}).Warn("Payment verification failed")
		return StatusUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return StatusUnknown
	}

	var decoded struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&decoded); err != nil || decoded.Status == "" {
		return StatusUnknown
	}
	return decoded.Status
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func failure(msg string) CreatePaymentResult {
	return CreatePaymentResult{Success: false, Error: msg}
}

const StatusUnknown = "unknown"

// CallbackPayload is the body LengoPay posts to the callback endpoint.
type CallbackPayload struct {
	PayID   string  `json:"pay_id"`
	Status  string  `json:"status"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
}

var errInvalidCallback = errors.New("callback payload missing pay_id or status")

// ParseCallback rejects structurally invalid payloads before they reach the
// state machine: a callback must carry a payment reference and a status.
func ParseCallback(body []byte) (CallbackPayload, error) {
	var payload CallbackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return CallbackPayload{}, err
	}
	if payload.PayID == "" || payload.Status == "" {
		return CallbackPayload{}, errInvalidCallback
	}
	return payload, nil
}

// Successful reports whether the gateway considers the payment settled.
func (p CallbackPayload) Successful() bool {
	switch p.Status {
	case "success", "completed", "paid":
		return true
	}
	return false
}
