package utils

import (
	"context"
	"io"
	"os/exec"

	"webup/wplocal/domain"
)

// runCommand and executeCommand are the only places external programs are
// started from; tests replace them to record the commands.
var runCommand = func(ctx context.Context, cmd domain.Command, stdin io.Reader) (domain.Result, error) {
	return cmd.Run(ctx, stdin)
}

var executeCommand = func(ctx context.Context, cmd domain.Command) (domain.Result, error) {
	return cmd.Execute(ctx)
}

var lookPath = exec.LookPath
