package profiles

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"webup/wplocal/domain"
	"webup/wplocal/utils"
)

var composeFilenames = []string{"compose.yaml", "compose.yml", "docker-compose.yaml", "docker-compose.yml"}

// ContainerProfile provisions the docker compose project of the current
// directory. It is the development target: debug logging and higher memory
// limits are enabled.
func ContainerProfile(settings domain.Settings, config domain.Config) (domain.TargetProfile, error) {
	project, err := projectDir(config)
	if err != nil {
		return domain.TargetProfile{}, err
	}

	composeFound := false
	for _, filename := range composeFilenames {
		if requireFile(filepath.Join(project, filename)) == nil {
			composeFound = true
			break
		}
	}
	if !composeFound {
		return domain.TargetProfile{}, unresolved("no docker compose file in %s", project)
	}

	compose := utils.Compose{ProjectDir: project}
	service := config.Containers.Db
	port := settings.String("WP_PORT", "8080")
	baseURL := "http://localhost:" + port

	db := &utils.MySQLClient{
		Client:   compose.ServiceCommand(service, "mysql", "-uroot"),
		Admin:    compose.ServiceCommand(service, "mysqladmin", "-uroot"),
		Password: settings.String("DB_ROOT_PASSWORD", ""),
	}

	composeEnv := map[string]string{
		"WP_PORT":     port,
		"DB_PORT":     settings.String("DB_PORT", "3306"),
		"DB_NAME":     settings.String("DB_NAME", ""),
		"DB_USER":     settings.String("DB_USER", ""),
		"DB_PASSWORD": settings.String("DB_PASSWORD", ""),
	}
	if rootPassword, ok := settings.Optional("DB_ROOT_PASSWORD"); ok {
		composeEnv["DB_ROOT_PASSWORD"] = rootPassword
	}

	copier := utils.NewCopier(atoi(settings.String("COPY_THREADS", "16")))
	rules := commonRules(settings, service, baseURL)
	rules = append(rules, debugRules()...)

	return domain.TargetProfile{
		Name:           domain.TargetContainer,
		Destination:    filepath.Join(project, "wordpress"),
		BaseURL:        baseURL,
		DBUserHost:     "%",
		ImportArtifact: filepath.Join(project, workDir, "import.sql"),
		ArchiveDir:     filepath.Join(project, workDir, "archives"),
		ComposeEnvFile: filepath.Join(project, ".env"),
		ComposeEnv:     composeEnv,
		Rules:          rules,
		Database:       db,
		Copier:         copier,
		Rewriter:       utils.WPCLI{Command: compose.RunCommand(config.Containers.WPCLI, "wp")},
		Runtime: &containerRuntime{
			compose:  compose,
			service:  service,
			db:       db,
			copier:   copier,
			dataDir:  filepath.Join(project, "db-data"),
			interval: 2 * time.Second,
			attempts: 30,
		},
	}, nil
}

// composeProject is the part of docker compose the container runtime drives.
type composeProject interface {
	Command(args ...string) domain.Command
	Up(ctx context.Context, services ...string) error
	Down(ctx context.Context) error
	ContainerID(ctx context.Context, service string) (string, error)
	ContainerConfig(ctx context.Context, containerID string) (domain.DockerContainerConfig, error)
}

type containerRuntime struct {
	compose  composeProject
	service  string
	db       serverClient
	copier   utils.Copier
	dataDir  string
	interval time.Duration
	attempts int
}

// Tools are the copy program, plus docker itself unless only the files are
// provisioned.
func (r *containerRuntime) Tools(filesOnly bool) []domain.Tool {
	tools := []domain.Tool{r.copier.Tool()}
	if filesOnly {
		return tools
	}
	return append(tools,
		domain.Tool{Name: "docker", Command: domain.NewCommand([]string{"docker", "--version"}), Minimum: ">= 20.10"},
		domain.Tool{Name: "docker compose", Command: r.compose.Command("version"), Minimum: ">= 2.0"},
	)
}

func (r *containerRuntime) Services(filesOnly bool) []domain.ServiceCheck {
	if filesOnly {
		return nil
	}
	return []domain.ServiceCheck{
		{
			Description: "docker daemon",
			Hint:        "Start Docker Desktop, then press Enter",
			Check:       utils.DockerInfo,
		},
	}
}

// EnsureDatabase starts the database service and polls it until it answers,
// at most attempts times.
func (r *containerRuntime) EnsureDatabase(ctx context.Context) error {
	if err := r.compose.Up(ctx, r.service); err != nil {
		return err
	}

	if !r.db.HasPassword() {
		r.resolveRootPassword(ctx)
	}

	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err := r.db.Ping(ctx); err == nil {
			return nil
		}
		if attempt == r.attempts {
			break
		}
		utils.Info("waiting for the '%s' service (%d/%d)", r.service, attempt, r.attempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.interval):
		}
	}

	return fmt.Errorf("%w: '%s' did not answer after %d attempts", domain.ErrDatabaseNotReady, r.service, r.attempts)
}

// resolveRootPassword reads the root password from the environment of the
// running database container.
func (r *containerRuntime) resolveRootPassword(ctx context.Context) {
	containerID, err := r.compose.ContainerID(ctx, r.service)
	if err != nil || containerID == "" {
		return
	}
	containerConfig, err := r.compose.ContainerConfig(ctx, containerID)
	if err != nil {
		return
	}
	for _, key := range []string{"MYSQL_ROOT_PASSWORD", "MARIADB_ROOT_PASSWORD"} {
		if value, ok := containerConfig.Env[key]; ok && value != "" {
			r.db.SetPassword(value)
			return
		}
	}
}

// ResetDatabase stops the project and removes the database data directory,
// which drops every database of the service.
func (r *containerRuntime) ResetDatabase(ctx context.Context, name string) error {
	if err := r.compose.Down(ctx); err != nil {
		return err
	}
	if err := os.RemoveAll(r.dataDir); err != nil {
		return fmt.Errorf("Unable to remove %s: %w", r.dataDir, err)
	}
	return nil
}
