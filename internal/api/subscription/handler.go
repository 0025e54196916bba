package subscription

import (
	"io"
	"net/http"
	"time"

	"inventory-app/internal/app/http/middleware"
	"inventory-app/internal/domain/access"
	"inventory-app/internal/domain/users"
	"inventory-app/internal/infra/lengopay"
	subscriptionsvc "inventory-app/internal/service/subscription"
	"inventory-app/logging"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *subscriptionsvc.Service
}

func NewHandler(svc *subscriptionsvc.Service) *Handler {
	return &Handler{svc: svc}
}

// Pay starts the payment flow and redirects the user to the gateway's
// checkout page. A user who already has an active subscription is sent back
// to the status page without being charged.
func (h *Handler) Pay(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	user := users.User{ID: p.UserID, Email: p.Email, Role: p.Role}

	res, err := h.svc.InitiatePayment(user)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if res.AlreadyActive {
		c.Redirect(http.StatusSeeOther, access.StatusPath)
		return
	}

	c.Redirect(http.StatusSeeOther, res.PaymentURL)
}

// Success is the return-from-gateway landing page. Confirmation is
// best-effort here: the server-to-server callback usually wins the race,
// and that is fine.
func (h *Handler) Success(c *gin.Context) {
	payID := c.Query("pay_id")

	confirmed := false
	if payID != "" {
		confirmed = h.svc.VerifyAndConfirm(payID)
	}

	c.JSON(http.StatusOK, gin.H{
		"pay_id":    payID,
		"confirmed": confirmed,
		"message":   "Thank you. Your subscription will be activated as soon as the payment is confirmed.",
	})
}

// Callback is the gateway-invoked confirmation endpoint. Unauthenticated by
// design (server-to-server); exempt from the gate and the input sanitizer.
func (h *Handler) Callback(c *gin.Context) {
	// An unreadable or oversized body is structurally invalid input, same as
	// malformed JSON.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1<<16)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid callback data"})
		return
	}

	payload, err := lengopay.ParseCallback(body)
	if err != nil {
		logging.Logger.WithField("error", err.Error()).Error("Invalid callback payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid callback data"})
		return
	}

	logging.Logger.WithFields(logrus.Fields{
		"pay_id": payload.PayID,
		"status": payload.Status,
	}).Info("Gateway callback received")

	if !payload.Successful() {
		// Failed or cancelled payment: acknowledge so the gateway stops
		// retrying, activate nothing.
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	confirmed, err := h.svc.ConfirmPayment(payload.PayID, payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment confirmation failed"})
		return
	}
	if !confirmed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown payment reference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}

// Status reports the caller's derived subscription state. The response
// reflects effective activity, never the raw stored flag.
func (h *Handler) Status(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	now := time.Now()

	sub, err := h.svc.CurrentSubscription(p.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	if sub == nil {
		c.JSON(http.StatusOK, gin.H{
			"has_active_subscription": false,
			"subscription":            nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"has_active_subscription": sub.EffectivelyActive(now),
		"subscription": gin.H{
			"status":     sub.Status,
			"start_date": sub.StartDate,
			"end_date":   sub.EndDate,
			"amount":     sub.Amount,
			"currency":   sub.Currency,
			"paid_at":    sub.PaidAt,
		},
	})
}
