package model

import (
	"time"
)

type User struct {
	ID                   uint64  `gorm:"primaryKey"`
	Username             *string `gorm:"type:varchar(50);uniqueIndex:idx_username"`
	Email                *string `gorm:"type:varchar(120);uniqueIndex:idx_email"`
	Password             *string `gorm:"type:varchar(255)"`
	Plan                 string  `gorm:"type:varchar(20);not null;default:basic"`
	PhotosPerDay         int     `gorm:"not null;default:10"`
	IsPremium            bool    `gorm:"type:tinyint(1);default:0"`
	SubscriptionStatus   string  `gorm:"type:varchar(20);not null;default:free"`
	SubscriptionDate     *time.Time
	StripeCustomerID     *string `gorm:"type:varchar(64)"`
	StripeSubscriptionID *string `gorm:"type:varchar(64);index:idx_stripe_sub"`
	IsDelete             bool    `gorm:"type:tinyint(1);default:0"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (User) TableName() string {
	return "users"
}
