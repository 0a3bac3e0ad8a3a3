package utils

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"webup/wplocal/domain"
)

var versionPattern = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// ParseVersion extracts the first version number printed by a tool.
func ParseVersion(output string) (*semver.Version, error) {
	raw := versionPattern.FindString(output)
	if raw == "" {
		return nil, fmt.Errorf("no version found in %q", strings.TrimSpace(output))
	}
	return semver.NewVersion(raw)
}

// CheckTool runs the version command of the tool and checks it against the
// tool's minimum. It returns the detected version, or the resolved path of a
// lookup only tool.
func CheckTool(ctx context.Context, tool domain.Tool) (string, error) {
	if tool.LookupOnly {
		path, err := lookPath(tool.Command.Name)
		if err != nil {
			return "", fmt.Errorf("%s not found: %w", tool.Name, err)
		}
		return path, nil
	}

	res, err := runCommand(ctx, tool.Command, nil)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", fmt.Errorf("'%s' exited with code %d", tool.Command, res.ExitCode)
	}

	version, err := ParseVersion(res.Output)
	if err != nil {
		return "", err
	}
	if tool.Minimum == "" {
		return version.String(), nil
	}

	constraint, err := semver.NewConstraint(tool.Minimum)
	if err != nil {
		return "", fmt.Errorf("invalid version constraint %q: %w", tool.Minimum, err)
	}
	if !constraint.Check(version) {
		return version.String(), fmt.Errorf("%s %s does not satisfy %s", tool.Name, version, tool.Minimum)
	}
	return version.String(), nil
}
