package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable unit assembled from recipes and packaging.
type Product struct {
	ID        string             `gorm:"primaryKey;size:36" json:"id"`
	Name      string             `gorm:"not null" json:"name"`
	TotalCost decimal.Decimal    `gorm:"type:numeric;not null;default:0" json:"total_cost"`
	Items     []ProductItem      `gorm:"foreignKey:ProductID" json:"items,omitempty"`
	Packaging []ProductPackaging `gorm:"foreignKey:ProductID" json:"packaging,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

// ProductItem is a quantity of a recipe's portions inside a product.
type ProductItem struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	ProductID string          `gorm:"size:36;not null;index" json:"product_id"`
	RecipeID  string          `gorm:"size:36;not null;index" json:"recipe_id"`
	Quantity  decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"quantity"`
	Cost      decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"cost"`

	Recipe *Recipe `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
}

func (i *ProductItem) BeforeCreate(tx *gorm.DB) error {
	i.ID = ensureID(i.ID)
	return nil
}

type ProductPackaging struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	ProductID   string          `gorm:"size:36;not null;index" json:"product_id"`
	PackagingID string          `gorm:"size:36;not null;index" json:"packaging_id"`
	Quantity    decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"quantity"`
	Cost        decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"cost"`

	Packaging *Packaging `gorm:"foreignKey:PackagingID" json:"packaging,omitempty"`
}

func (p *ProductPackaging) BeforeCreate(tx *gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}
