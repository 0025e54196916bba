package products

import "time"

type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"not null;uniqueIndex:idx_categories_name"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	Price       float64 `gorm:"type:decimal(10,2)"`
	Quantity    int     `gorm:"not null;default:0"`

	// AlertThreshold marks the stock level at which the dashboard flags
	// the product as running low.
	AlertThreshold int `gorm:"not null;default:5"`

	CategoryID *uint
	Category   *Category

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Product) LowStock() bool {
	return p.Quantity <= p.AlertThreshold
}
