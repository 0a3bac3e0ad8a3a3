package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"webup/wplocal/domain"
	"webup/wplocal/utils"
)

func (w *Workflow) preflightStep() Step {
	return Step{
		Name:        StepPreflight,
		Description: "Check the tools, the services and the backup",
		Run:         w.preflight,
	}
}

func (w *Workflow) preflight(ctx context.Context, changes *domain.ChangeLog) error {
	if err := w.settings.Require(domain.RequiredSettings...); err != nil {
		return err
	}

	if err := w.source.Validate(); err != nil {
		return &domain.PreconditionError{What: "backup source", Err: err}
	}
	if _, err := os.Stat(filepath.Join(w.source.FileTreeRoot, configFilename)); err != nil {
		return &domain.PreconditionError{What: fmt.Sprintf("%s missing from the backup file tree", configFilename), Err: domain.ErrBackupInvalid}
	}
	utils.Success("backup: %s + %s", w.source.FileTreeRoot, filepath.Base(w.source.SQLDumpFile))

	for _, tool := range w.profile.Runtime.Tools(w.execCtx.FilesOnly) {
		version, err := utils.CheckTool(ctx, tool)
		if err != nil {
			return &domain.PreconditionError{What: fmt.Sprintf("tool '%s'", tool.Name), Err: err}
		}
		utils.Success("%s %s", tool.Name, version)
	}

	for _, service := range w.profile.Runtime.Services(w.execCtx.FilesOnly) {
		if err := w.checkService(ctx, service); err != nil {
			return err
		}
		utils.Success("%s is reachable", service.Description)
	}

	changes.Skipped(StepPreflight, "all preconditions hold")
	return nil
}

// checkService asks the operator to start an unreachable service and checks
// it once more. It waits without timeout.
func (w *Workflow) checkService(ctx context.Context, service domain.ServiceCheck) error {
	err := service.Check(ctx)
	if err == nil {
		return nil
	}
	if !w.execCtx.IsInteractive() {
		return &domain.PreconditionError{What: fmt.Sprintf("%s is not reachable", service.Description), Err: err}
	}

	utils.Warn("%s is not reachable", service.Description)
	w.execCtx.Confirm(service.Hint)

	if err := service.Check(ctx); err != nil {
		return &domain.PreconditionError{What: fmt.Sprintf("%s is not reachable", service.Description), Err: err}
	}
	return nil
}
