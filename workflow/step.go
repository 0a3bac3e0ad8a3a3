package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"

	"webup/wplocal/domain"
	"webup/wplocal/utils"
)

const (
	StepPreflight         = "preflight"
	StepReset             = "reset"
	StepCopyFiles         = "copy-files"
	StepImportArtifact    = "import-artifact"
	StepPatchConfig       = "patch-config"
	StepProvisionDatabase = "provision-database"
	StepImportDatabase    = "import-database"
	StepRewriteUrls       = "rewrite-urls"
	StepContentMutations  = "content-mutations"
)

type Step struct {
	Name           string
	Description    string
	ExecutionCheck ExecutionCheck
	Run            func(ctx context.Context, changes *domain.ChangeLog) error
}

// Execute runs the step unless its execution check finds the target state
// already reached.
func (s Step) Execute(ctx context.Context, changes *domain.ChangeLog) error {
	if s.ExecutionCheck != nil {
		canExecute, reason, err := s.ExecutionCheck.CanExecute(ctx)
		if err != nil {
			return &domain.StepError{Step: s.Name, Err: err}
		}
		if !canExecute {
			utils.Skipped("Step '%s' skipped: %s", s.Name, reason)
			changes.Skipped(s.Name, reason)
			return nil
		}
	}

	if err := s.Run(ctx, changes); err != nil {
		var stepErr *domain.StepError
		if errors.As(err, &stepErr) {
			return err
		}
		return &domain.StepError{Step: s.Name, Err: err}
	}
	return nil
}

// ExecutionCheck derives, each time it is asked, whether a step still has
// work to do. When it has not, the reason is reported instead.
type ExecutionCheck interface {
	CanExecute(ctx context.Context) (bool, string, error)
}

// FileAbsentExecutionCheck lets the step run only while Path does not exist.
type FileAbsentExecutionCheck struct {
	Path string
}

func (chk FileAbsentExecutionCheck) CanExecute(ctx context.Context) (bool, string, error) {
	_, err := os.Stat(chk.Path)
	if err == nil {
		return false, fmt.Sprintf("%s already exists", chk.Path), nil
	}
	if os.IsNotExist(err) {
		return true, "", nil
	}
	return false, "", err
}

// EmptyDatabaseExecutionCheck lets the step run only while the database has
// no table.
type EmptyDatabaseExecutionCheck struct {
	Database domain.Database
	Name     string
}

func (chk EmptyDatabaseExecutionCheck) CanExecute(ctx context.Context) (bool, string, error) {
	count, err := chk.Database.TableCount(ctx, chk.Name)
	if err != nil {
		return false, "", fmt.Errorf("Unable to count the tables of '%s': %w", chk.Name, err)
	}
	if count > 0 {
		return false, fmt.Sprintf("database '%s' already has %d tables", chk.Name, count), nil
	}
	return true, "", nil
}
