package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

type Command struct {
	Name string
	Args []string
	Dir  string
}

// Result is what an external tool hands back: its exit code and its
// combined output.
type Result struct {
	ExitCode int
	Output   string
}

func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Lines returns the non blank lines of the output.
func (r Result) Lines() []string {
	var lines []string
	for _, line := range strings.Split(r.Output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func (c Command) String() string {
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		switch {
		case strings.HasPrefix(arg, "--password="):
			args[i] = "--password=***"
		case strings.HasPrefix(arg, "-p") && len(arg) > 2 && !strings.HasPrefix(arg, "-p="):
			args[i] = "-p***"
		default:
			args[i] = arg
		}
	}
	return fmt.Sprintf("%s %s", c.Name, strings.Join(args, " "))
}

// Run executes the command and captures its output. A non zero exit code is
// not an error: it is reported in the Result. The error is set only when the
// command could not be started or was cancelled.
func (c Command) Run(ctx context.Context, stdin io.Reader) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = stdin

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	return c.result(ctx, output.String(), err)
}

// Execute streams the command output to the console and returns its exit code.
func (c Command) Execute(ctx context.Context) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	fmt.Printf("Executing: %s\n", c)

	err := cmd.Run()
	return c.result(ctx, "", err)
}

func (c Command) result(ctx context.Context, output string, err error) (Result, error) {
	if err == nil {
		return Result{Output: output}, nil
	}
	if ctx.Err() != nil {
		return Result{ExitCode: -1, Output: output}, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{ExitCode: exitErr.ExitCode(), Output: output}, nil
	}
	return Result{ExitCode: -1, Output: output}, fmt.Errorf("unable to run '%s': %w", c.Name, err)
}

func NewCommand(list []string) Command {
	var name string
	var args []string

	if len(list) > 1 {
		name = list[0]
		args = list[1:]
	} else {
		name = list[0]
		args = []string{}
	}

	return Command{Name: name, Args: args}
}

// With returns a copy of the command with extra arguments appended.
func (c Command) With(args ...string) Command {
	all := make([]string, 0, len(c.Args)+len(args))
	all = append(all, c.Args...)
	all = append(all, args...)
	return Command{Name: c.Name, Args: all, Dir: c.Dir}
}
