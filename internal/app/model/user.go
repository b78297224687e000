package model

import (
	"time"
)

type User struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	Username       string     `gorm:"not null" json:"username"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string     `json:"-"`
	ProviderGoogle bool       `gorm:"default:false" json:"-"`
	GoogleID       *string    `gorm:"index" json:"-"`
	Picture        *string    `json:"picture"`
	FirstName      *string    `json:"firstName"`
	LastName       *string    `json:"lastName"`
	LastLogin      *time.Time `json:"lastLogin"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"-"`

	// Relationships
	Logs    []LoginLog `gorm:"foreignKey:UserID" json:"-"`
	Address *Address   `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// LoginLog is one authentication event (password or Google sign-in).
type LoginLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	IP        *string   `json:"ip"`
	UserAgent *string   `json:"userAgent"`
	Event     string    `gorm:"not null" json:"event"`
	CreatedAt time.Time `json:"createdAt"`
}

func (LoginLog) TableName() string {
	return "logs"
}

// Address is a user's single shipping address, upserted in place.
type Address struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	Line1      *string   `json:"line1"`
	Line2      *string   `json:"line2"`
	City       *string   `json:"city"`
	PostalCode *string   `json:"postalCode"`
	Country    *string   `json:"country"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}
