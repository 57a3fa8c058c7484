package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username string `gorm:"size:100;not null"`
	Email    string `gorm:"size:255;not null;uniqueIndex:idx_users_email,where:deleted_at IS NULL"`

	Portfolios []Portfolio
}

type Portfolio struct {
	gorm.Model
	UserID      uint   `gorm:"index;not null"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"size:500"`

	Accounts []Account
	Holdings []Holding
}

type Account struct {
	gorm.Model
	PortfolioID uint        `gorm:"index;not null"`
	Name        string      `gorm:"size:100;not null"`
	AccountType AccountType `gorm:"size:50;not null"`

	Transactions []Transaction
}
