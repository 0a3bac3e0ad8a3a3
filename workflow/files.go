package workflow

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"webup/wplocal/domain"
	"webup/wplocal/utils"
)

func (w *Workflow) copyFilesStep() Step {
	return Step{
		Name:           StepCopyFiles,
		Description:    "Copy the WordPress files",
		ExecutionCheck: FileAbsentExecutionCheck{Path: w.configFile()},
		Run:            w.copyFiles,
	}
}

func (w *Workflow) copyFiles(ctx context.Context, changes *domain.ChangeLog) error {
	if err := os.MkdirAll(w.profile.Destination, 0755); err != nil {
		return fmt.Errorf("Unable to create %s: %w", w.profile.Destination, err)
	}

	utils.Info("copying %s to %s", w.source.FileTreeRoot, w.profile.Destination)
	if err := w.profile.Copier.Copy(ctx, w.source.FileTreeRoot, w.profile.Destination); err != nil {
		return err
	}

	changes.Applied(StepCopyFiles, fmt.Sprintf("copied %s to %s", w.source.FileTreeRoot, w.profile.Destination))
	utils.Success("files copied")
	return nil
}

func (w *Workflow) importArtifactStep() Step {
	return Step{
		Name:           StepImportArtifact,
		Description:    "Prepare the SQL import file",
		ExecutionCheck: FileAbsentExecutionCheck{Path: w.profile.ImportArtifact},
		Run:            w.prepareImportArtifact,
	}
}

func (w *Workflow) prepareImportArtifact(ctx context.Context, changes *domain.ChangeLog) error {
	if err := BuildImportArtifact(w.source.SQLDumpFile, w.profile.ImportArtifact, w.dbName()); err != nil {
		return err
	}
	changes.Applied(StepImportArtifact, fmt.Sprintf("wrote %s", w.profile.ImportArtifact))
	utils.Success("import file written")
	return nil
}

// ImportHeader is the statement written before the dump.
func ImportHeader(database string) string {
	return fmt.Sprintf("USE %s;\n\n", utils.QuoteIdentifier(database))
}

// BuildImportArtifact writes the USE statement followed by the dump bytes,
// unchanged. The file appears under its final name only once complete.
func BuildImportArtifact(dump string, artifact string, database string) error {
	in, err := os.Open(dump)
	if err != nil {
		return fmt.Errorf("Unable to open the dump: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(artifact), 0755); err != nil {
		return fmt.Errorf("Unable to create the import directory: %w", err)
	}

	out, err := os.CreateTemp(filepath.Dir(artifact), ".import-*.sql")
	if err != nil {
		return fmt.Errorf("Unable to create a tmp file: %w", err)
	}
	defer os.Remove(out.Name())

	if _, err := io.WriteString(out, ImportHeader(database)); err != nil {
		out.Close()
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("Unable to copy the dump: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Rename(out.Name(), artifact)
}
