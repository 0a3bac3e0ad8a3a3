package utils

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webup/wplocal/domain"
)

func TestParseVersion(t *testing.T) {
	cases := map[string]string{
		"Docker version 24.0.7, build afdd53b":     "24.0.7",
		"Docker Compose version v2.23.3-desktop.2": "2.23.3",
		"PHP 8.1.10 (cli) (built: Aug 30 2022)":    "8.1.10",
		"mysql  Ver 8.0.30 for Win64 on x86_64":    "8.0.30",
		"mysql  Ver 15.1 Distrib 10.4.27-MariaDB":  "15.1.0",
	}
	for output, expected := range cases {
		version, err := ParseVersion(output)
		require.NoError(t, err, output)
		assert.Equal(t, expected, version.String(), output)
	}

	_, err := ParseVersion("command not found")
	assert.Error(t, err)
}

func TestCheckTool(t *testing.T) {
	tool := domain.Tool{Name: "php", Command: domain.NewCommand([]string{"php", "--version"}), Minimum: ">= 7.4"}

	record(t, reply(0, "PHP 8.2.4 (cli)"))
	version, err := CheckTool(context.Background(), tool)
	require.NoError(t, err)
	assert.Equal(t, "8.2.4", version)

	record(t, reply(0, "PHP 7.2.1 (cli)"))
	_, err = CheckTool(context.Background(), tool)
	assert.Error(t, err)

	record(t, reply(127, ""))
	_, err = CheckTool(context.Background(), tool)
	assert.Error(t, err)
}

func TestCheckTool_LookupOnly(t *testing.T) {
	recorder := record(t, reply(16, ""))
	previous := lookPath
	t.Cleanup(func() { lookPath = previous })

	lookPath = func(file string) (string, error) {
		return `C:\Windows\System32\` + file + ".exe", nil
	}
	tool := domain.Tool{Name: "robocopy", Command: domain.NewCommand([]string{"robocopy"}), LookupOnly: true}

	path, err := CheckTool(context.Background(), tool)
	require.NoError(t, err)
	assert.Equal(t, `C:\Windows\System32\robocopy.exe`, path)
	assert.Empty(t, recorder.commands, "robocopy is never run to check it")

	lookPath = func(file string) (string, error) {
		return "", exec.ErrNotFound
	}
	_, err = CheckTool(context.Background(), tool)
	assert.ErrorIs(t, err, exec.ErrNotFound)
	assert.Contains(t, err.Error(), "robocopy not found")
}
