package lengopay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestClient(baseURL string) *Client {
	return NewClient("test-key", "merchant-1", baseURL)
}

func TestCreatePayment_Success(t *testing.T) {
	var got createPaymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payments", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(map[string]string{
			"pay_id":      "PAY-123",
			"payment_url": "https://checkout.lengopay.com/pay/PAY-123",
			"status":      "pending",
		})
	}))
	defer srv.Close()

	res := newTestClient(srv.URL).CreatePayment(50000, "GNF", "https://app/success", "https://app/callback")

	assert.True(t, res.Success)
	assert.Equal(t, "PAY-123", res.PayID)
	assert.Equal(t, "https://checkout.lengopay.com/pay/PAY-123", res.PaymentURL)
	assert.Empty(t, res.Error)

	assert.Equal(t, 50000.0, got.Amount)
	assert.Equal(t, "GNF", got.Currency)
	assert.Equal(t, "merchant-1", got.MerchantID)
	assert.Equal(t, "https://app/success", got.ReturnURL)
	assert.Equal(t, "https://app/callback", got.CallbackURL)
	assert.Contains(t, got.Reference, "SUB-")
}

func TestCreatePayment_NonSuccessStatusIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	res := newTestClient(srv.URL).CreatePayment(50000, "GNF", "r", "c")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "502")
}

func TestCreatePayment_BodyWithoutSuccessMarkerIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": "insufficient merchant balance"})
	}))
	defer srv.Close()

	res := newTestClient(srv.URL).CreatePayment(50000, "GNF", "r", "c")

	assert.False(t, res.Success)
	assert.Equal(t, "insufficient merchant balance", res.Error)
}

func TestCreatePayment_NetworkFaultIsCaught(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	res := newTestClient(srv.URL).CreatePayment(50000, "GNF", "r", "c")

	assert.False(t, res.Success)
	assert.Equal(t, "payment gateway unreachable", res.Error)
}

func TestCreatePayment_TimeoutIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.httpClient.Timeout = 20 * time.Millisecond

	res := c.CreatePayment(50000, "GNF", "r", "c")

	assert.False(t, res.Success)
}

func TestVerifyPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/payments/PAY-1" {
			json.NewEncoder(w).Encode(map[string]string{"status": "completed"})
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	assert.Equal(t, "completed", c.VerifyPayment("PAY-1"))
	assert.Equal(t, StatusUnknown, c.VerifyPayment("PAY-missing"))
}

func TestVerifyPayment_UnreachableDegradesToUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	assert.Equal(t, StatusUnknown, newTestClient(srv.URL).VerifyPayment("PAY-1"))
}

func TestParseCallback(t *testing.T) {
	payload, err := ParseCallback([]byte(`{"pay_id":"PAY-1","status":"success","amount":50000}`))
	assert.NoError(t, err)
	assert.Equal(t, "PAY-1", payload.PayID)
	assert.True(t, payload.Successful())

	_, err = ParseCallback([]byte(`{"status":"success"}`))
	assert.Error(t, err, "missing pay_id is rejected")

	_, err = ParseCallback([]byte(`{"pay_id":"PAY-1"}`))
	assert.Error(t, err, "missing status is rejected")

	_, err = ParseCallback([]byte(`not json`))
	assert.Error(t, err)

	failed, err := ParseCallback([]byte(`{"pay_id":"PAY-1","status":"failed"}`))
	assert.NoError(t, err)
	assert.False(t, failed.Successful())
}
