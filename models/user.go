package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email              string `gorm:"uniqueIndex;not null"`
	Password           string `gorm:"not null"`
	FullName           string
	SubscriptionStatus string `gorm:"size:16;default:free"` // "free" | "premium"
	Disabled           bool   `gorm:"default:false"`
}

func (u *User) IsPremium() bool {
	return u.SubscriptionStatus == "premium"
}
