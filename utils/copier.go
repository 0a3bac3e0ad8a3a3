package utils

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"webup/wplocal/domain"
)

// Copier mirrors a directory tree with an external bulk copy program. Exit
// codes up to MaxSuccessCode are success: robocopy uses 1..7 to report what
// it copied, only 8 and above are failures.
type Copier struct {
	Program        string
	Threads        int
	MaxSuccessCode int
}

func NewCopier(threads int) Copier {
	if threads <= 0 {
		threads = 16
	}
	if runtime.GOOS == "windows" {
		return Copier{Program: "robocopy", Threads: threads, MaxSuccessCode: 7}
	}
	return Copier{Program: "rsync", Threads: threads, MaxSuccessCode: 0}
}

func (c Copier) Command(source string, destination string) domain.Command {
	switch c.Program {
	case "robocopy":
		return domain.NewCommand([]string{
			"robocopy", source, destination,
			"/E", "/MT:" + strconv.Itoa(c.Threads), "/R:1", "/W:1", "/NFL", "/NDL", "/NP",
		})
	default:
		return domain.NewCommand([]string{c.Program, "-a", source + "/", destination + "/"})
	}
}

// Tool is the preflight check of the copy program.
func (c Copier) Tool() domain.Tool {
	if c.Program == "robocopy" {
		return domain.Tool{Name: c.Program, Command: domain.NewCommand([]string{c.Program}), LookupOnly: true}
	}
	return domain.Tool{Name: c.Program, Command: domain.NewCommand([]string{c.Program, "--version"})}
}

func (c Copier) Copy(ctx context.Context, source string, destination string) error {
	res, err := executeCommand(ctx, c.Command(source, destination))
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrCopyFailed, err)
	}
	if res.ExitCode < 0 || res.ExitCode > c.MaxSuccessCode {
		return fmt.Errorf("%w: %s exited with code %d", domain.ErrCopyFailed, c.Program, res.ExitCode)
	}
	return nil
}
