package subscriptions

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(sub *Subscription) error {
	return r.db.Create(sub).Error
}

func (r *Repository) Save(sub *Subscription) error {
	return r.db.Save(sub).Error
}

// FindCurrentByUser returns the user's subscription row whatever its state.
// Callers derive effective activity themselves.
func (r *Repository) FindCurrentByUser(userID uint) (*Subscription, error) {
	var sub Subscription
	if err := r.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *Repository) FindByPaymentReference(ref string) (*Subscription, error) {
	var sub Subscription
	if err := r.db.Where("payment_reference = ?", ref).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindExpired returns stale-active rows: paid window over, flag still set.
func (r *Repository) FindExpired(now time.Time) ([]Subscription, error) {
	var subs []Subscription
	err := r.db.
		Where("end_date < ? AND is_active = ?", now, true).
		Find(&subs).Error
	return subs, err
}

func (r *Repository) FindExpiringSoon(now time.Time, window time.Duration) ([]Subscription, error) {
	var subs []Subscription
	err := r.db.
		Where("end_date > ? AND end_date <= ? AND is_active = ?", now, now.Add(window), true).
		Find(&subs).Error
	return subs, err
}

func (r *Repository) CountActive(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&Subscription{}).
		Where("is_active = ? AND end_date > ?", true, now).
		Count(&count).Error
	return count, err
}

func (r *Repository) MonthlyRevenue(now time.Time) (float64, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)

	var total float64
	err := r.db.Model(&Subscription{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("paid_at >= ? AND paid_at < ? AND status = ?", start, end, StatusActive).
		Scan(&total).Error
	return total, err
}

// ConfirmByReference runs apply against the row for ref under a row lock so
// two concurrent gateway callbacks for the same payment serialize: the
// second observes the already-active state inside apply and no-ops. An
// error from apply rolls the transaction back with nothing written.
func (r *Repository) ConfirmByReference(ref string, apply func(*Subscription) error) (*Subscription, error) {
	var sub Subscription
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_reference = ?", ref).
			First(&sub).Error; err != nil {
			return err
		}
		if err := apply(&sub); err != nil {
			return err
		}
		return tx.Save(&sub).Error
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
