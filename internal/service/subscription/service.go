package subscription

import (
	"errors"
	"fmt"
	"time"

	"inventory-app/internal/domain/subscriptions"
	"inventory-app/internal/domain/users"
	"inventory-app/internal/infra/lengopay"
	"inventory-app/logging"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReminderWindow is how far ahead of expiry reminder emails go out.
const ReminderWindow = 7 * 24 * time.Hour

type Repository interface {
	Create(sub *subscriptions.Subscription) error
	Save(sub *subscriptions.Subscription) error
	FindCurrentByUser(userID uint) (*subscriptions.Subscription, error)
	FindByPaymentReference(ref string) (*subscriptions.Subscription, error)
	ConfirmByReference(ref string, apply func(*subscriptions.Subscription) error) (*subscriptions.Subscription, error)
	FindExpired(now time.Time) ([]subscriptions.Subscription, error)
	FindExpiringSoon(now time.Time, window time.Duration) ([]subscriptions.Subscription, error)
	CountActive(now time.Time) (int64, error)
	MonthlyRevenue(now time.Time) (float64, error)
}

type UserDirectory interface {
	FindByID(id uint) (*users.User, error)
}

type Gateway interface {
	CreatePayment(amount float64, currency, returnURL, callbackURL string) lengopay.CreatePaymentResult
	VerifyPayment(payID string) string
}

type Notifier interface {
	SendConfirmation(user users.User, sub subscriptions.Subscription) error
	SendExpirationReminder(user users.User, sub subscriptions.Subscription) error
}

// Service orchestrates the subscription lifecycle: payment initiation,
// gateway confirmation, the expiry sweep and reminder batches. All state
// mutation goes through the aggregate's transition methods.
type Service struct {
	repo     Repository
	users    UserDirectory
	gateway  Gateway
	notifier Notifier

	amount   float64
	currency string
	appURL   string
}

func New(repo Repository, users UserDirectory, gateway Gateway, notifier Notifier, amount float64, currency, appURL string) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		gateway:  gateway,
		notifier: notifier,
		amount:   amount,
		currency: currency,
		appURL:   appURL,
	}
}

type InitiationResult struct {
	AlreadyActive bool
	PaymentURL    string
}

// InitiatePayment finds or creates the user's pending subscription and asks
// the gateway for a checkout URL. A user with an effectively active
// subscription short-circuits without being charged. A failed gateway call
// leaves only an inert pending row with no payment reference, so the user
// can simply retry.
func (s *Service) InitiatePayment(user users.User) (InitiationResult, error) {
	now := time.Now()

	sub, err := s.repo.FindCurrentByUser(user.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return InitiationResult{}, err
	}

	if sub != nil && sub.EffectivelyActive(now) {
		return InitiationResult{AlreadyActive: true}, nil
	}

	if sub == nil {
		sub = subscriptions.New(user.ID, s.amount, s.currency)
		if err := s.repo.Create(sub); err != nil {
			return InitiationResult{}, err
		}
		logging.Logger.WithFields(logrus.Fields{
			"user_id":         user.ID,
			"subscription_id": sub.ID,
		}).Info("Subscription created")
	}

	res := s.gateway.CreatePayment(
		s.amount,
		s.currency,
		s.appURL+"/subscription/success",
		s.appURL+"/subscription/callback",
	)
	if !res.Success {
		logging.Logger.WithFields(logrus.Fields{
			"user_id": user.ID,
			"error":   res.Error,
		}).Error("Payment initiation failed")
		return InitiationResult{}, fmt.Errorf("payment gateway: %s", res.Error)
	}

	sub.PaymentReference = &res.PayID
	if err := s.repo.Save(sub); err != nil {
		return InitiationResult{}, err
	}

	logging.Logger.WithFields(logrus.Fields{
		"user_id":         user.ID,
		"subscription_id": sub.ID,
		"pay_id":          res.PayID,
	}).Info("Payment initiated")

	return InitiationResult{PaymentURL: res.PaymentURL}, nil
}

// ConfirmPayment activates the subscription matching a gateway payment
// reference. Unknown references are a reported, non-fatal false. Replayed
// confirmations are an idempotent true with no further side effects. The
// confirmation email is best-effort and never rolls back the activation.
func (s *Service) ConfirmPayment(ref string, payload lengopay.CallbackPayload) (bool, error) {
	now := time.Now()

	sub, err := s.repo.ConfirmByReference(ref, func(sub *subscriptions.Subscription) error {
		switch sub.Status {
		case subscriptions.StatusActive:
			return subscriptions.ErrAlreadyActive
		case subscriptions.StatusExpired:
			sub.Renew(now)
			return nil
		default:
			return sub.Activate(now)
		}
	})
	if errors.Is(err, subscriptions.ErrAlreadyActive) {
		logging.Logger.WithField("pay_id", ref).Info("Payment already confirmed")
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Logger.WithField("pay_id", ref).Warn("No subscription for payment reference")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.notifyConfirmation(sub)

	logging.Logger.WithFields(logrus.Fields{
		"pay_id":          ref,
		"status":          payload.Status,
		"subscription_id": sub.ID,
		"user_id":         sub.UserID,
	}).Info("Payment confirmed")

	return true, nil
}

// VerifyAndConfirm backs the return-from-gateway landing page: it asks the
// gateway for the payment status and confirms on success. Tolerates the
// callback having already confirmed the payment.
func (s *Service) VerifyAndConfirm(ref string) bool {
	status := s.gateway.VerifyPayment(ref)
	payload := lengopay.CallbackPayload{PayID: ref, Status: status}
	if !payload.Successful() {
		return false
	}
	confirmed, err := s.ConfirmPayment(ref, payload)
	if err != nil {
		logging.Logger.WithFields(logrus.Fields{
			"pay_id": ref,
			"error":  err.Error(),
		}).Warn("Verification-driven confirmation failed")
		return false
	}
	return confirmed
}

// SweepExpired transitions every stale-active subscription to expired and
// returns how many moved. Safe to run repeatedly: a second run for the same
// instant transitions nothing. One row failing to persist does not stop the
// rest of the batch.
func (s *Service) SweepExpired(now time.Time) (int, error) {
	expired, err := s.repo.FindExpired(now)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range expired {
		sub := &expired[i]
		sub.Expire(now)
		if err := s.repo.Save(sub); err != nil {
			logging.Logger.WithFields(logrus.Fields{
				"subscription_id": sub.ID,
				"error":           err.Error(),
			}).Error("Failed to persist expiry")
			continue
		}
		count++
		logging.Logger.WithFields(logrus.Fields{
			"subscription_id": sub.ID,
			"user_id":         sub.UserID,
		}).Info("Subscription expired")
	}
	return count, nil
}

// SendReminders emails every subscriber whose window closes within
// ReminderWindow. Policy: a reminder goes out on every run while the
// subscription stays in the window. A failure for one subscriber never
// blocks the others; the count reflects successes only.
func (s *Service) SendReminders(now time.Time, window time.Duration) (int, error) {
	expiring, err := s.repo.FindExpiringSoon(now, window)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range expiring {
		sub := expiring[i]
		user, err := s.users.FindByID(sub.UserID)
		if err != nil {
			logging.Logger.WithFields(logrus.Fields{
				"subscription_id": sub.ID,
				"user_id":         sub.UserID,
				"error":           err.Error(),
			}).Error("Reminder skipped: user lookup failed")
			continue
		}
		if err := s.notifier.SendExpirationReminder(*user, sub); err != nil {
			logging.Logger.WithFields(logrus.Fields{
				"subscription_id": sub.ID,
				"error":           err.Error(),
			}).Error("Reminder email failed")
			continue
		}
		count++
	}
	return count, nil
}

func (s *Service) HasActiveSubscription(userID uint, now time.Time) (bool, error) {
	sub, err := s.CurrentSubscription(userID)
	if err != nil {
		return false, err
	}
	return sub != nil && sub.EffectivelyActive(now), nil
}

// CurrentSubscription returns nil without error when the user has no
// subscription row yet.
func (s *Service) CurrentSubscription(userID uint) (*subscriptions.Subscription, error) {
	sub, err := s.repo.FindCurrentByUser(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

type Stats struct {
	ActiveSubscriptions int64   `json:"active_subscriptions"`
	MonthlyRevenue      float64 `json:"monthly_revenue"`
	ExpiringSoon        int     `json:"expiring_soon"`
	Expired             int     `json:"expired"`
}

func (s *Service) Stats(now time.Time) (Stats, error) {
	active, err := s.repo.CountActive(now)
	if err != nil {
		return Stats{}, err
	}
	revenue, err := s.repo.MonthlyRevenue(now)
	if err != nil {
		return Stats{}, err
	}
	expiring, err := s.repo.FindExpiringSoon(now, ReminderWindow)
	if err != nil {
		return Stats{}, err
	}
	expired, err := s.repo.FindExpired(now)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		ActiveSubscriptions: active,
		MonthlyRevenue:      revenue,
		ExpiringSoon:        len(expiring),
		Expired:             len(expired),
	}, nil
}

func (s *Service) notifyConfirmation(sub *subscriptions.Subscription) {
	user, err := s.users.FindByID(sub.UserID)
	if err != nil {
		logging.Logger.WithFields(logrus.Fields{
			"user_id": sub.UserID,
			"error":   err.Error(),
		}).Warn("Confirmation email skipped: user lookup failed")
		return
	}
	if err := s.notifier.SendConfirmation(*user, *sub); err != nil {
		logging.Logger.WithFields(logrus.Fields{
			"user_id": sub.UserID,
			"error":   err.Error(),
		}).Warn("Confirmation email failed")
	}
}
