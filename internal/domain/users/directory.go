package users

import "gorm.io/gorm"

// Directory is the read-only user lookup the subscription side depends on.
// It never mutates identity or roles.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) FindByID(id uint) (*User, error) {
	var user User
	if err := d.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
