package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	Name      string    `gorm:"not null;index" json:"name"`
	Price     float64   `gorm:"not null" json:"price"`
	Image     string    `json:"image"`
	Origin    string    `json:"origin"`
	Weight    float64   `json:"weight"` // package weight (kg)
	Category  string    `json:"category"`
	Animal    string    `json:"animal"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
