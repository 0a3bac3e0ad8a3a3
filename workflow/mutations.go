package workflow

import (
	"context"
	"fmt"
	"net/url"

	"webup/wplocal/domain"
	"webup/wplocal/utils"
)

const (
	activeNotification   = `"isActive":true`
	inactiveNotification = `"isActive":false`
	webhooksAddonSlug    = "gravityformswebhooks"
)

func (w *Workflow) contentMutationsStep() Step {
	return Step{
		Name:        StepContentMutations,
		Description: "Apply the optional content changes",
		Run:         w.contentMutations,
	}
}

// contentMutations never fails the run: both mutations are cosmetic, their
// failures are reported as warnings.
func (w *Workflow) contentMutations(ctx context.Context, changes *domain.ChangeLog) error {
	ran := false

	if w.settings.Bool("DISABLE_NOTIFICATIONS") {
		ran = true
		w.mutate(ctx, changes, "form notifications disabled", NotificationsStatement(w.tablePrefix))
	}

	if redirectHost, ok := w.settings.Optional("WEBHOOK_REDIRECT_HOST"); ok {
		ran = true
		sourceHost := w.webhookSourceHost()
		if sourceHost == "" || sourceHost == redirectHost {
			changes.Skipped(StepContentMutations, "webhook hosts are the same")
		} else {
			w.mutate(ctx, changes, fmt.Sprintf("webhooks redirected from %s to %s", sourceHost, redirectHost), WebhookStatement(w.tablePrefix, sourceHost, redirectHost))
		}
	}

	if !ran {
		utils.Skipped("nothing enabled")
		changes.Skipped(StepContentMutations, "no content change enabled")
	}
	return nil
}

func (w *Workflow) mutate(ctx context.Context, changes *domain.ChangeLog, description string, statement string) {
	statements := fmt.Sprintf("USE %s; %s; SELECT ROW_COUNT()", utils.QuoteIdentifier(w.dbName()), statement)
	output, err := w.profile.Database.Exec(ctx, statements)
	if err != nil {
		utils.Warn("%s: %s", description, err)
		changes.Warn(StepContentMutations, fmt.Sprintf("%s: %s", description, err))
		return
	}

	rows, err := utils.LastInt(output)
	if err != nil {
		utils.Warn("%s: %s", description, err)
		changes.Warn(StepContentMutations, fmt.Sprintf("%s: %s", description, err))
		return
	}
	if rows == 0 {
		utils.Skipped("%s: nothing to change", description)
		changes.Skipped(StepContentMutations, fmt.Sprintf("%s: nothing to change", description))
		return
	}
	utils.Success("%s (%d rows)", description, rows)
	changes.Applied(StepContentMutations, fmt.Sprintf("%s (%d rows)", description, rows))
}

func (w *Workflow) webhookSourceHost() string {
	if host, ok := w.settings.Optional("WEBHOOK_SOURCE_HOST"); ok {
		return host
	}
	u, err := url.Parse(w.productionURL())
	if err != nil {
		return ""
	}
	return u.Host
}

// NotificationsStatement turns every active notification of the forms
// inactive. Rows without an active one are left untouched.
func NotificationsStatement(tablePrefix string) string {
	table := utils.QuoteIdentifier(tablePrefix + "gf_form_meta")
	return fmt.Sprintf("UPDATE %s SET notifications = REPLACE(notifications, %s, %s) WHERE notifications LIKE %s",
		table,
		utils.QuoteString(activeNotification),
		utils.QuoteString(inactiveNotification),
		utils.QuoteString("%"+activeNotification+"%"),
	)
}

// WebhookStatement replaces every occurrence of the source host in the
// configuration of the webhooks add-on feeds. Other feeds are left untouched.
func WebhookStatement(tablePrefix string, from string, to string) string {
	table := utils.QuoteIdentifier(tablePrefix + "gf_addon_feed")
	return fmt.Sprintf("UPDATE %s SET meta = REPLACE(meta, %s, %s) WHERE addon_slug = %s AND meta LIKE %s",
		table,
		utils.QuoteString(from),
		utils.QuoteString(to),
		utils.QuoteString(webhooksAddonSlug),
		utils.QuoteString("%"+from+"%"),
	)
}
