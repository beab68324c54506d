package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Recipe is a batch preparation. TotalCost and UnitCost are owned by the cost
// engine and must not be written elsewhere.
type Recipe struct {
	ID                 string                    `gorm:"primaryKey;size:36" json:"id"`
	Name               string                    `gorm:"not null" json:"name"`
	Portions           int                       `gorm:"not null;default:1" json:"portions"`
	TotalCost          decimal.Decimal           `gorm:"type:numeric;not null;default:0" json:"total_cost"`
	UnitCost           decimal.Decimal           `gorm:"type:numeric;not null;default:0" json:"unit_cost"`
	BaseIngredients    []RecipeBaseIngredient    `gorm:"foreignKey:RecipeID" json:"base_ingredients,omitempty"`
	PortionIngredients []RecipePortionIngredient `gorm:"foreignKey:RecipeID" json:"portion_ingredients,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}

// EffectivePortions clamps a stored portion count to at least one so unit
// cost division is safe.
func EffectivePortions(portions int) int {
	if portions <= 0 {
		return 1
	}
	return portions
}
