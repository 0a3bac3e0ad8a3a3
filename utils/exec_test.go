package utils

import (
	"context"
	"io"
	"testing"

	"webup/wplocal/domain"
)

// recorder replaces the command seams for the duration of a test.
type recorder struct {
	commands []domain.Command
	stdins   []string
	reply    func(cmd domain.Command) domain.Result
}

func record(t *testing.T, reply func(cmd domain.Command) domain.Result) *recorder {
	t.Helper()
	r := &recorder{reply: reply}

	previousRun, previousExecute := runCommand, executeCommand
	t.Cleanup(func() {
		runCommand, executeCommand = previousRun, previousExecute
	})

	runCommand = func(ctx context.Context, cmd domain.Command, stdin io.Reader) (domain.Result, error) {
		r.commands = append(r.commands, cmd)
		if stdin != nil {
			data, _ := io.ReadAll(stdin)
			r.stdins = append(r.stdins, string(data))
		}
		return r.reply(cmd), nil
	}
	executeCommand = func(ctx context.Context, cmd domain.Command) (domain.Result, error) {
		r.commands = append(r.commands, cmd)
		return r.reply(cmd), nil
	}
	return r
}

func reply(code int, output string) func(domain.Command) domain.Result {
	return func(domain.Command) domain.Result {
		return domain.Result{ExitCode: code, Output: output}
	}
}
