package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSettingsNotFound  = errors.New("settings file not found")
	ErrProfileUnresolved = errors.New("target profile could not be resolved")
	ErrBackupInvalid     = errors.New("backup source is invalid")
	ErrDatabaseNotReady  = errors.New("database service is not ready")
	ErrCopyFailed        = errors.New("file copy failed")
)

// PreconditionError reports a check that failed before anything was modified.
type PreconditionError struct {
	What string
	Err  error
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("precondition failed: %s: %s", e.What, e.Err)
	}
	return fmt.Sprintf("precondition failed: %s", e.What)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// StepError wraps the failure of a workflow step. Effects of the previous
// steps are kept.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step '%s' failed: %s", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
