package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Cost run kinds.
const (
	RunIngredientChain = "ingredient_chain"
	RunPackagingChain  = "packaging_chain"
	RunAll             = "all"
)

// Cost run statuses.
const (
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// CostRun journals one recalculation invocation.
type CostRun struct {
	ID         string                      `gorm:"primaryKey;size:36" json:"id"`
	Kind       string                      `gorm:"size:32;not null;index" json:"kind"`
	Status     string                      `gorm:"size:16;not null" json:"status"`
	TriggerIDs datatypes.JSONSlice[string] `json:"trigger_ids"`
	RecipeIDs  datatypes.JSONSlice[string] `json:"recipe_ids"`
	ProductIDs datatypes.JSONSlice[string] `json:"product_ids"`
	Errors     datatypes.JSONSlice[string] `json:"errors"`
	StartedAt  time.Time                   `gorm:"index" json:"started_at"`
	FinishedAt time.Time                   `json:"finished_at"`
}

func (r *CostRun) BeforeCreate(tx *gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}

// Duration reports how long the run took.
func (r CostRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
