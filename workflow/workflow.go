package workflow

import (
	"context"
	"path/filepath"
	"time"

	"webup/wplocal/domain"
	"webup/wplocal/utils"
)

const configFilename = "wp-config.php"

// Workflow provisions one target from a backup source. The same steps serve
// every target: what differs lives in the profile.
type Workflow struct {
	profile  domain.TargetProfile
	source   domain.BackupSource
	settings domain.Settings
	execCtx  domain.ExecutionContext

	now func() time.Time

	// tablePrefix is read from the patched configuration and used by the
	// content mutations, which do not read files themselves.
	tablePrefix string
}

func New(profile domain.TargetProfile, source domain.BackupSource, settings domain.Settings, execCtx domain.ExecutionContext) *Workflow {
	return &Workflow{
		profile:     profile,
		source:      source,
		settings:    settings,
		execCtx:     execCtx,
		now:         time.Now,
		tablePrefix: "wp_",
	}
}

func (w *Workflow) dbName() string {
	return w.settings.String("DB_NAME", "")
}

func (w *Workflow) configFile() string {
	return filepath.Join(w.profile.Destination, configFilename)
}

// Steps returns the ordered steps of this run.
func (w *Workflow) Steps() []Step {
	steps := []Step{w.preflightStep()}
	if w.execCtx.Force {
		steps = append(steps, w.resetStep())
	}
	steps = append(steps,
		w.copyFilesStep(),
		w.importArtifactStep(),
		w.patchConfigStep(),
	)
	if w.execCtx.FilesOnly {
		return steps
	}
	return append(steps,
		w.provisionDatabaseStep(),
		w.importDatabaseStep(),
		w.rewriteUrlsStep(),
		w.contentMutationsStep(),
	)
}

// Run executes the steps in order and stops at the first failure. The change
// log is returned in both cases.
func (w *Workflow) Run(ctx context.Context) (domain.ChangeLog, error) {
	changes := domain.ChangeLog{}

	for i, step := range w.Steps() {
		utils.Step(i+1, step.Description)
		if err := step.Execute(ctx, &changes); err != nil {
			return changes, err
		}
	}

	return changes, nil
}

// Preflight runs only the first step.
func (w *Workflow) Preflight(ctx context.Context) error {
	changes := domain.ChangeLog{}
	return w.preflightStep().Execute(ctx, &changes)
}

// Outline returns every step a forced full run goes through, for display.
func Outline() []Step {
	return New(domain.TargetProfile{}, domain.BackupSource{}, domain.Settings{}, domain.ExecutionContext{Force: true}).Steps()
}
