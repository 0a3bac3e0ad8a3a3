package workflow

import (
	"context"
	"fmt"
	"os"

	"webup/wplocal/domain"
	"webup/wplocal/utils"
)

func (w *Workflow) resetStep() Step {
	return Step{
		Name:        StepReset,
		Description: "Reset the destination",
		Run:         w.reset,
	}
}

// reset keeps a snapshot of the patched configuration and the import file,
// then drops the database and removes the destination tree and the import
// file. The database goes first: when it cannot be reset the files are kept,
// so a later run does not skip the import over stale tables.
func (w *Workflow) reset(ctx context.Context, changes *domain.ChangeLog) error {
	archive, err := utils.ArchiveFiles(w.profile.ArchiveDir, "reset", []string{w.configFile(), w.profile.ImportArtifact}, w.now())
	if err != nil {
		return err
	}
	if archive != "" {
		utils.Info("previous configuration saved in %s", archive)
		changes.Applied(StepReset, fmt.Sprintf("snapshot %s", archive))
	}

	// files only runs do not provision the database, so they leave it alone
	if !w.execCtx.FilesOnly {
		if err := w.profile.Runtime.ResetDatabase(ctx, w.dbName()); err != nil {
			return fmt.Errorf("Unable to reset the database: %w", err)
		}
		changes.Applied(StepReset, fmt.Sprintf("database '%s' reset", w.dbName()))
	}

	if _, err := os.Stat(w.profile.Destination); err == nil {
		if err := os.RemoveAll(w.profile.Destination); err != nil {
			return fmt.Errorf("Unable to remove %s: %w", w.profile.Destination, err)
		}
		changes.Applied(StepReset, fmt.Sprintf("removed %s", w.profile.Destination))
	}

	if err := os.Remove(w.profile.ImportArtifact); err == nil {
		changes.Applied(StepReset, fmt.Sprintf("removed %s", w.profile.ImportArtifact))
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("Unable to remove %s: %w", w.profile.ImportArtifact, err)
	}

	utils.Success("destination reset")
	return nil
}
