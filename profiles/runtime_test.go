package profiles

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webup/wplocal/domain"
	"webup/wplocal/utils"
)

type fakeCompose struct {
	up, down int
	env      domain.DockerContainerEnv
}

func (c *fakeCompose) Command(args ...string) domain.Command {
	return domain.Command{Name: "docker", Args: append([]string{"compose"}, args...)}
}

func (c *fakeCompose) Up(ctx context.Context, services ...string) error {
	c.up++
	return nil
}

func (c *fakeCompose) Down(ctx context.Context) error {
	c.down++
	return nil
}

func (c *fakeCompose) ContainerID(ctx context.Context, service string) (string, error) {
	return "f00d", nil
}

func (c *fakeCompose) ContainerConfig(ctx context.Context, containerID string) (domain.DockerContainerConfig, error) {
	return domain.DockerContainerConfig{Image: "mariadb:10.11", Env: c.env}, nil
}

// fakeServer refuses the first failures pings, then answers.
type fakeServer struct {
	failures   int
	pings      int
	password   string
	statements []string
}

func (s *fakeServer) Ping(ctx context.Context) error {
	s.pings++
	if s.pings <= s.failures {
		return errors.New("connect to server at 'localhost' failed")
	}
	return nil
}

func (s *fakeServer) Exec(ctx context.Context, statements string) (string, error) {
	s.statements = append(s.statements, statements)
	return "", nil
}

func (s *fakeServer) HasPassword() bool {
	return s.password != ""
}

func (s *fakeServer) SetPassword(password string) {
	s.password = password
}

func quiet(t *testing.T) {
	previous := utils.Out
	utils.Out = io.Discard
	t.Cleanup(func() { utils.Out = previous })
}

func newContainerRuntime(compose *fakeCompose, server *fakeServer, attempts int) *containerRuntime {
	return &containerRuntime{
		compose:  compose,
		service:  "db",
		db:       server,
		interval: time.Millisecond,
		attempts: attempts,
	}
}

func TestContainerRuntime_WaitsForTheDatabase(t *testing.T) {
	quiet(t)
	compose := &fakeCompose{}
	server := &fakeServer{failures: 3, password: "root"}

	require.NoError(t, newContainerRuntime(compose, server, 5).EnsureDatabase(context.Background()))

	assert.Equal(t, 1, compose.up)
	assert.Equal(t, 4, server.pings)
}

func TestContainerRuntime_GivesUpAfterAttempts(t *testing.T) {
	quiet(t)
	server := &fakeServer{failures: 100, password: "root"}

	err := newContainerRuntime(&fakeCompose{}, server, 4).EnsureDatabase(context.Background())

	assert.True(t, errors.Is(err, domain.ErrDatabaseNotReady))
	assert.Equal(t, 4, server.pings)
}

func TestContainerRuntime_StopsWhenCancelled(t *testing.T) {
	quiet(t)
	server := &fakeServer{failures: 100, password: "root"}
	runtime := newContainerRuntime(&fakeCompose{}, server, 30)
	runtime.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runtime.EnsureDatabase(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, server.pings)
}

func TestContainerRuntime_ResolvesRootPassword(t *testing.T) {
	quiet(t)
	compose := &fakeCompose{env: domain.DockerContainerEnv{"MARIADB_ROOT_PASSWORD": "from-container"}}
	server := &fakeServer{}

	require.NoError(t, newContainerRuntime(compose, server, 1).EnsureDatabase(context.Background()))
	assert.Equal(t, "from-container", server.password)

	server = &fakeServer{password: "from-settings"}
	require.NoError(t, newContainerRuntime(compose, server, 1).EnsureDatabase(context.Background()))
	assert.Equal(t, "from-settings", server.password)
}

func TestContainerRuntime_ResetDatabase(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "db-data")
	touch(t, filepath.Join(dataDir, "mysql", "user.MYD"))
	compose := &fakeCompose{}
	runtime := newContainerRuntime(compose, &fakeServer{}, 1)
	runtime.dataDir = dataDir

	require.NoError(t, runtime.ResetDatabase(context.Background(), "demo"))

	assert.Equal(t, 1, compose.down)
	assert.NoDirExists(t, dataDir)
}

func TestNativeRuntime_ResetDatabase(t *testing.T) {
	server := &fakeServer{}
	runtime := &nativeRuntime{serviceName: "XAMPP MySQL", db: server}

	require.NoError(t, runtime.ResetDatabase(context.Background(), "demo"))
	assert.Equal(t, []string{"DROP DATABASE IF EXISTS `demo`"}, server.statements)
}

func TestNativeRuntime_ResetFailsWhenUnreachable(t *testing.T) {
	server := &fakeServer{failures: 1}
	runtime := &nativeRuntime{serviceName: "XAMPP MySQL", db: server}

	err := runtime.ResetDatabase(context.Background(), "demo")

	assert.True(t, errors.Is(err, domain.ErrDatabaseNotReady))
	assert.Empty(t, server.statements, "nothing is dropped on an unreachable server")
}

func TestNativeRuntime_Services(t *testing.T) {
	server := &fakeServer{failures: 1}
	runtime := &nativeRuntime{serviceName: "XAMPP MySQL", hint: "start it", db: server}

	assert.Empty(t, runtime.Services(true))

	services := runtime.Services(false)
	require.Len(t, services, 1)
	assert.Error(t, services[0].Check(context.Background()))
	assert.NoError(t, services[0].Check(context.Background()))
}

