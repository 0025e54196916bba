package subscriptions

import (
	"errors"
	"time"
)

const (
	StatusPending = "pending"
	StatusActive  = "active"
	StatusExpired = "expired"
)

// ErrAlreadyActive reports a replayed activation. Callers treat it as an
// idempotent success: a second confirmation for the same payment must not
// grant extra time.
var ErrAlreadyActive = errors.New("subscription already active")

// Subscription is the single evolving record of a user's monthly paywall
// subscription. One row per user; the row moves through
// pending -> active -> expired and back to active on renewal.
type Subscription struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"not null;uniqueIndex:idx_subscriptions_user_id"`

	StartDate *time.Time
	EndDate   *time.Time
	IsActive  bool `gorm:"not null;default:false"`

	Amount   float64 `gorm:"type:decimal(10,2)"`
	Currency string  `gorm:"type:varchar(3)"`

	// PaymentReference correlates this row to exactly one gateway
	// transaction once payment has been initiated.
	PaymentReference *string `gorm:"uniqueIndex:idx_subscriptions_payment_reference"`

	Status string `gorm:"type:varchar(50);not null;default:'pending'"`

	CreatedAt time.Time
	PaidAt    *time.Time
}

func New(userID uint, amount float64, currency string) *Subscription {
	return &Subscription{
		UserID:   userID,
		Amount:   amount,
		Currency: currency,
		Status:   StatusPending,
	}
}

// EffectivelyActive is the only activity signal consumers should trust.
// A stale IsActive flag with a past EndDate never grants access.
func (s *Subscription) EffectivelyActive(now time.Time) bool {
	return s.IsActive && s.EndDate != nil && s.EndDate.After(now)
}

func (s *Subscription) Expired(now time.Time) bool {
	return s.EndDate != nil && !s.EndDate.After(now)
}

func (s *Subscription) ExpiringSoon(now time.Time, window time.Duration) bool {
	return s.EndDate != nil && !s.EndDate.After(now.Add(window))
}

// Activate opens a one-month window starting now. Replays on an already
// active subscription return ErrAlreadyActive and leave the row untouched.
func (s *Subscription) Activate(now time.Time) error {
	if s.Status == StatusActive {
		return ErrAlreadyActive
	}
	end := addMonth(now)
	s.IsActive = true
	s.Status = StatusActive
	s.StartDate = &now
	s.EndDate = &end
	s.PaidAt = &now
	return nil
}

// Renew extends the window by one month. An expired (or never dated)
// subscription restarts from now; an active one extends from its current
// EndDate so renewing early never loses paid time.
func (s *Subscription) Renew(now time.Time) {
	if s.EndDate == nil || s.Expired(now) {
		end := addMonth(now)
		s.StartDate = &now
		s.EndDate = &end
	} else {
		end := addMonth(*s.EndDate)
		s.EndDate = &end
	}
	s.IsActive = true
	s.Status = StatusActive
	s.PaidAt = &now
}

// Expire marks the subscription expired. No-op while the paid window is
// still open or when already expired.
func (s *Subscription) Expire(now time.Time) {
	if s.Status == StatusExpired {
		return
	}
	if s.EndDate != nil && s.EndDate.After(now) {
		return
	}
	s.IsActive = false
	s.Status = StatusExpired
}

// addMonth returns the same calendar day one month later, clamped to the
// target month's length: Jan 31 -> Feb 28 (Feb 29 in leap years), never a
// normalized overflow into March.
func addMonth(t time.Time) time.Time {
	y, m, d := t.Date()
	y2, m2 := y, m+1
	if m2 > time.December {
		y2, m2 = y+1, time.January
	}
	if last := daysIn(y2, m2); d > last {
		d = last
	}
	return time.Date(y2, m2, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
