package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"webup/wplocal/domain"
)

type containerParsedConfig struct {
	Env   []string
	Image string
}

// Compose drives the docker compose project found in ProjectDir.
type Compose struct {
	ProjectDir string
}

func (c Compose) Command(args ...string) domain.Command {
	return domain.Command{Name: "docker", Args: append([]string{"compose"}, args...), Dir: c.ProjectDir}
}

// ServiceCommand returns a command run inside an already started service.
func (c Compose) ServiceCommand(service string, list ...string) domain.Command {
	return c.Command(append([]string{"exec", "-T", service}, list...)...)
}

// RunCommand returns a command run in a one-off container of the service.
func (c Compose) RunCommand(service string, list ...string) domain.Command {
	return c.Command(append([]string{"run", "--rm", "-T", service}, list...)...)
}

func (c Compose) Up(ctx context.Context, services ...string) error {
	res, err := runCommand(ctx, c.Command(append([]string{"up", "-d"}, services...)...), nil)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("docker compose up failed (exit code %d): %s", res.ExitCode, strings.TrimSpace(res.Output))
	}
	return nil
}

func (c Compose) Down(ctx context.Context) error {
	res, err := runCommand(ctx, c.Command("down"), nil)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("docker compose down failed (exit code %d): %s", res.ExitCode, strings.TrimSpace(res.Output))
	}
	return nil
}

// ContainerID returns the id of the running container of the service, or an
// empty string when it is not running.
func (c Compose) ContainerID(ctx context.Context, service string) (string, error) {
	res, err := runCommand(ctx, c.Command("ps", "-q", service), nil)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", fmt.Errorf("Unable to get the '%s' container id: %s", service, strings.TrimSpace(res.Output))
	}
	return strings.TrimSpace(res.Output), nil
}

func (c Compose) ContainerConfig(ctx context.Context, containerID string) (domain.DockerContainerConfig, error) {
	cmd := domain.NewCommand([]string{"docker", "inspect", "--format", "{{json .Config}}", containerID})
	res, err := runCommand(ctx, cmd, nil)
	if err != nil {
		return domain.DockerContainerConfig{}, err
	}
	if !res.Success() {
		return domain.DockerContainerConfig{}, fmt.Errorf("Unable to get the config of the container %s: %s", containerID, strings.TrimSpace(res.Output))
	}

	return parseContainerConfig(res.Output)
}

func parseContainerConfig(configJSON string) (domain.DockerContainerConfig, error) {
	// parse the json
	var config containerParsedConfig
	if err := json.NewDecoder(strings.NewReader(configJSON)).Decode(&config); err != nil {
		return domain.DockerContainerConfig{}, fmt.Errorf("Unable to parse the container config: %w", err)
	}

	// parse env variables of the container
	env := domain.DockerContainerEnv{}
	for _, data := range config.Env {
		items := strings.SplitN(data, "=", 2)
		if len(items) == 2 {
			env[items[0]] = items[1]
		}
	}

	return domain.DockerContainerConfig{
		Image: config.Image,
		Env:   env,
	}, nil
}

// DockerInfo succeeds when the docker daemon answers.
func DockerInfo(ctx context.Context) error {
	res, err := runCommand(ctx, domain.NewCommand([]string{"docker", "info"}), nil)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("docker daemon is not reachable")
	}
	return nil
}
