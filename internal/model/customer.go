package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer represents a taxpayer identified by their IFU (tax identifier).
// IFU and email are unique across all customers.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LastName  string    `gorm:"type:varchar(255);not null" json:"last_name"`
	FirstName string    `gorm:"type:varchar(255);not null" json:"first_name"`
	Address   string    `gorm:"type:text;not null" json:"address"` // free text, city extracted heuristically
	IFU       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"ifu"`
	Phone     string    `gorm:"type:varchar(32);not null" json:"phone"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// FullName is the display name used as the merchant name in QR payloads.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
