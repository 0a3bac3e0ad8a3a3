package workflow

import (
	"context"
	"fmt"

	"webup/wplocal/domain"
	"webup/wplocal/utils"
)

func (w *Workflow) rewriteUrlsStep() Step {
	return Step{
		Name:        StepRewriteUrls,
		Description: "Rewrite the production URLs",
		Run:         w.rewriteUrls,
	}
}

func (w *Workflow) productionURL() string {
	return w.settings.String("PRODUCTION_URL", domain.DefaultProductionURL)
}

func (w *Workflow) rewriteUrls(ctx context.Context, changes *domain.ChangeLog) error {
	from := w.productionURL()
	to := w.profile.BaseURL
	if from == to {
		changes.Skipped(StepRewriteUrls, "production and local URLs are the same")
		return nil
	}

	utils.Info("%s → %s", from, to)
	replacements, err := w.profile.Rewriter.SearchReplace(ctx, from, to)
	if err != nil {
		return err
	}

	if replacements == 0 {
		utils.Skipped("no occurrence of %s left", from)
		changes.Skipped(StepRewriteUrls, fmt.Sprintf("no occurrence of %s left", from))
		return nil
	}
	utils.Success("%d replacements", replacements)
	changes.Applied(StepRewriteUrls, fmt.Sprintf("%d replacements of %s by %s", replacements, from, to))
	return nil
}
