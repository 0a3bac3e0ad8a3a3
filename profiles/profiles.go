package profiles

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"webup/wplocal/domain"
	"webup/wplocal/utils"
)

const workDir = ".wplocal"

func AllTargetNames() []string {
	return []string{domain.TargetContainer, domain.TargetNative, domain.TargetVirtualHost}
}

// CreateProfileWithName resolves the profile of the target. Every path of the
// returned profile exists or will be created by the workflow.
func CreateProfileWithName(name string, settings domain.Settings, config domain.Config) (domain.TargetProfile, error) {

	switch name {
	case domain.TargetContainer:
		return ContainerProfile(settings, config)
	case domain.TargetNative:
		return NativeProfile(settings, config)
	case domain.TargetVirtualHost:
		return VirtualHostProfile(settings, config)
	}

	return domain.TargetProfile{}, fmt.Errorf("Unable to find the target '%s'", name)
}

func unresolved(format string, a ...interface{}) error {
	return &domain.PreconditionError{What: fmt.Sprintf(format, a...), Err: domain.ErrProfileUnresolved}
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return unresolved("directory %s does not exist", path)
	}
	return nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return unresolved("file %s does not exist", path)
	}
	return nil
}

// executable appends the platform suffix of binaries.
func executable(path string) string {
	if runtime.GOOS == "windows" {
		return path + ".exe"
	}
	return path
}

// newestMatch returns the match of the glob (relative to root) with the
// highest version number, e.g. the newest of several bundled MySQL versions.
func newestMatch(root string, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(root, pattern))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", unresolved("nothing matches %s", filepath.Join(root, pattern))
	}

	version := func(match string) string {
		rel, err := filepath.Rel(root, match)
		if err != nil {
			return match
		}
		return rel
	}
	sort.SliceStable(matches, func(i, j int) bool {
		vi, errI := utils.ParseVersion(version(matches[i]))
		vj, errJ := utils.ParseVersion(version(matches[j]))
		if errI != nil || errJ != nil {
			return matches[i] < matches[j]
		}
		return vi.LessThan(vj)
	})
	return matches[len(matches)-1], nil
}

// serverClient is the administration side of the database client.
type serverClient interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, statements string) (string, error)
	HasPassword() bool
	SetPassword(password string)
}

func projectDir(config domain.Config) (string, error) {
	project, err := filepath.Abs(config.Paths.Project)
	if err != nil {
		return "", err
	}
	if err := requireDir(project); err != nil {
		return "", err
	}
	return project, nil
}
