package utils

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"webup/wplocal/domain"
)

var replacementsPattern = regexp.MustCompile(`Made (\d+) replacements?`)

// WPCLI runs WP-CLI commands; Command is the invocation prefix, e.g.
// "php wp-cli.phar --path=..." or a compose one-off container.
type WPCLI struct {
	Command domain.Command
}

func (w WPCLI) SearchReplace(ctx context.Context, from string, to string) (int, error) {
	cmd := w.Command.With("search-replace", from, to, "--all-tables", "--report-changed-only", "--skip-columns=guid")
	res, err := runCommand(ctx, cmd, nil)
	if err != nil {
		return 0, err
	}
	if !res.Success() {
		return 0, fmt.Errorf("wp search-replace exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Output))
	}

	m := replacementsPattern.FindStringSubmatch(res.Output)
	if m == nil {
		return 0, nil
	}
	return strconv.Atoi(m[1])
}
