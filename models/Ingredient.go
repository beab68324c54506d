package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ingredient is a purchasable raw material. UnitCost is edited by users; the
// cost engine only reads it.
type Ingredient struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	UnitCost  decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"unit_cost"`
	Unit      string          `json:"unit"`
	Brand     string          `json:"brand"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	i.ID = ensureID(i.ID)
	return nil
}
