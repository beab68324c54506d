package costupdate

import (
	"context"

	applog "larder/internal/log"
	"larder/models"
)

func (s *Service) beginRun(kind string, triggers []string) *models.CostRun {
	if !s.journal {
		return nil
	}
	return &models.CostRun{
		Kind:       kind,
		TriggerIDs: append([]string{}, triggers...),
		StartedAt:  s.now(),
	}
}

// finishRun writes the journal entry. A journal failure is logged and never
// fails the recalculation it describes.
func (s *Service) finishRun(ctx context.Context, run *models.CostRun, status string, recipeIDs, productIDs, errs []string) {
	if run == nil {
		return
	}
	run.Status = status
	run.RecipeIDs = append([]string{}, recipeIDs...)
	run.ProductIDs = append([]string{}, productIDs...)
	run.Errors = append([]string{}, errs...)
	run.FinishedAt = s.now()

	if err := s.store.RecordRun(ctx, run); err != nil {
		applog.Warn(ctx, "failed to journal cost run", "kind", run.Kind, "error", err)
	}
}

// Runs returns the most recent journal entries, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]models.CostRun, error) {
	return s.store.Runs(ctx, limit)
}
