package workflow

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectOverrides(t *testing.T) {
	injected, changed := InjectOverrides(productionConfig)
	require.True(t, changed)
	assert.Equal(t, 1, strings.Count(injected, OverridesMarker))
	assert.Less(t, strings.Index(injected, OverridesMarker), strings.Index(injected, stopEditingLine))

	again, changed := InjectOverrides(injected)
	assert.False(t, changed)
	assert.Equal(t, injected, again)
}

func TestInjectOverrides_WithoutStopEditingLine(t *testing.T) {
	injected, changed := InjectOverrides("<?php\ndefine( 'WP_DEBUG', false );")

	require.True(t, changed)
	assert.True(t, strings.HasPrefix(injected, "<?php\ndefine( 'WP_DEBUG', false );\n\n/* "+OverridesMarker))
	assert.True(t, strings.HasSuffix(injected, overridesBlock))
}

func TestBuildImportArtifact(t *testing.T) {
	dir := t.TempDir()
	dump := filepath.Join(dir, "dump")
	content := []byte("INSERT INTO t VALUES ('\xc3\xa9\x00\r\n');\n-- no trailing newline")
	require.NoError(t, os.WriteFile(dump, content, 0644))

	artifact := filepath.Join(dir, "work", "import.sql")
	require.NoError(t, BuildImportArtifact(dump, artifact, "my`db"))

	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, append([]byte("USE `my``db`;\n\n"), content...), data)

	entries, err := os.ReadDir(filepath.Dir(artifact))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file is left behind")
}

func TestBuildImportArtifact_MissingDump(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "import.sql")

	assert.Error(t, BuildImportArtifact(filepath.Join(dir, "missing"), artifact, "demo"))
	assert.NoFileExists(t, artifact)
}
