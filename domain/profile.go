package domain

import "context"

const (
	TargetContainer   = "docker"
	TargetNative      = "xampp"
	TargetVirtualHost = "laragon"
)

// Database is the database client of a target, consumed through its CLI.
type Database interface {
	Ping(ctx context.Context) error
	// Exec runs statements and returns the client output (batch mode, no headers).
	Exec(ctx context.Context, statements string) (string, error)
	TableCount(ctx context.Context, database string) (int, error)
	// Import pipes the artifact into the client and returns the error lines
	// it printed.
	Import(ctx context.Context, artifact string) ([]string, error)
}

type FileCopier interface {
	Copy(ctx context.Context, source string, destination string) error
}

type URLRewriter interface {
	// SearchReplace returns the number of replacements made.
	SearchReplace(ctx context.Context, from string, to string) (int, error)
}

// Tool is an external program the preflight asks for its version.
type Tool struct {
	Name    string
	Command Command
	// Minimum is a semver constraint, e.g. ">= 7.4". Empty means any version.
	Minimum string
	// LookupOnly tools are only searched in PATH: their exit codes or output
	// carry no version (robocopy).
	LookupOnly bool
}

// ServiceCheck is a service that must be reachable before the run. Hint is
// shown to the operator when it is not.
type ServiceCheck struct {
	Description string
	Hint        string
	Check       func(ctx context.Context) error
}

// Runtime is the part of a target that manages its services.
type Runtime interface {
	Tools(filesOnly bool) []Tool
	Services(filesOnly bool) []ServiceCheck
	// EnsureDatabase starts the database service if needed and waits until it
	// accepts connections.
	EnsureDatabase(ctx context.Context) error
	// ResetDatabase removes the database and its working data.
	ResetDatabase(ctx context.Context, name string) error
}

// TargetProfile holds everything that differs between targets. The workflow
// has no other knowledge of the target.
type TargetProfile struct {
	Name           string
	Destination    string
	BaseURL        string
	DBUserHost     string
	ImportArtifact string
	// ArchiveDir receives the snapshots taken before a forced reset.
	ArchiveDir string
	// ComposeEnvFile is written with the container settings; empty for
	// native targets.
	ComposeEnvFile string
	ComposeEnv     map[string]string

	Rules []ConfigPatchRule

	Database Database
	Copier   FileCopier
	Rewriter URLRewriter
	Runtime  Runtime
}
