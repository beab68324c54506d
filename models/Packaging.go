package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Packaging struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	UnitCost  decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"unit_cost"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (p *Packaging) BeforeCreate(tx *gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}
