package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecipeBaseIngredient is consumed once per recipe batch.
type RecipeBaseIngredient struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	RecipeID     string          `gorm:"size:36;not null;index" json:"recipe_id"` // Parent Recipe
	IngredientID string          `gorm:"size:36;not null;index" json:"ingredient_id"`
	Quantity     decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"quantity"`
	Cost         decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"cost"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}

func (u *RecipeBaseIngredient) BeforeCreate(tx *gorm.DB) error {
	u.ID = ensureID(u.ID)
	return nil
}

// RecipePortionIngredient is consumed once per portion of the recipe.
type RecipePortionIngredient struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	RecipeID     string          `gorm:"size:36;not null;index" json:"recipe_id"`
	IngredientID string          `gorm:"size:36;not null;index" json:"ingredient_id"`
	Quantity     decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"quantity"`
	Cost         decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"cost"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}

func (u *RecipePortionIngredient) BeforeCreate(tx *gorm.DB) error {
	u.ID = ensureID(u.ID)
	return nil
}
