package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tailorbook/utils"
)

// User is the shop owner's account. The app is single-user: registration is
// allowed exactly once.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Phone    string    `gorm:"uniqueIndex;not null" json:"phone"`
	Password string    `gorm:"not null" json:"-"`
	Name     string    `gorm:"not null" json:"name"`

	ShopName    string `json:"shopName"`
	ShopAddress string `json:"shopAddress"`

	LastLogin *time.Time `json:"lastLogin"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Initialize UUID and hash the password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}
