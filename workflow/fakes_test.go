package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"webup/wplocal/domain"
	"webup/wplocal/utils"
)

// fakeDatabase is a tiny MySQL server: it understands the statements the
// workflow sends and keeps the resulting state.
type fakeDatabase struct {
	created     bool
	userCreated bool
	grants      int
	tables      int
	imported    []string
	statements  []string

	urlRows int
	// notifications column of the form meta table, meta column of the feeds
	notifications []string
	feeds         []feedRow

	importErrors  []string
	failUser      bool
	failGrant     bool
	failMutations bool
}

func (db *fakeDatabase) Ping(ctx context.Context) error {
	return nil
}

func (db *fakeDatabase) Exec(ctx context.Context, statements string) (string, error) {
	db.statements = append(db.statements, statements)

	switch {
	case strings.Contains(statements, "information_schema.schemata"):
		return boolRow(db.created), nil
	case strings.HasPrefix(statements, "CREATE DATABASE"):
		db.created = true
	case strings.Contains(statements, "FROM mysql.user"):
		return boolRow(db.userCreated), nil
	case strings.HasPrefix(statements, "CREATE USER"):
		if db.failUser {
			return "", errors.New("ERROR 1396 (HY000): Operation CREATE USER failed")
		}
		db.userCreated = true
	case strings.HasPrefix(statements, "GRANT"):
		if db.failGrant {
			return "", errors.New("ERROR 1044 (42000): Access denied")
		}
		db.grants++
	case strings.Contains(statements, "gf_form_meta"):
		if db.failMutations {
			return "", errors.New("ERROR 1146 (42S02): Table doesn't exist")
		}
		// REPLACE(notifications, from, to) WHERE notifications LIKE '%from%'
		values := literals(statements)
		rows := 0
		for i, value := range db.notifications {
			if strings.Contains(value, values[0]) {
				db.notifications[i] = strings.ReplaceAll(value, values[0], values[1])
				rows++
			}
		}
		return fmt.Sprintf("%d\n", rows), nil
	case strings.Contains(statements, "gf_addon_feed"):
		if db.failMutations {
			return "", errors.New("ERROR 1146 (42S02): Table doesn't exist")
		}
		// REPLACE(meta, from, to) WHERE addon_slug = slug AND meta LIKE '%from%'
		values := literals(statements)
		rows := 0
		for i, feed := range db.feeds {
			if feed.slug == values[2] && strings.Contains(feed.meta, values[0]) {
				db.feeds[i].meta = strings.ReplaceAll(feed.meta, values[0], values[1])
				rows++
			}
		}
		return fmt.Sprintf("%d\n", rows), nil
	}
	return "", nil
}

type feedRow struct {
	slug string
	meta string
}

var (
	sqlLiteral = regexp.MustCompile(`'((?:[^'\\]|\\.)*)'`)
	sqlEscape  = regexp.MustCompile(`\\(.)`)
)

// literals returns the unquoted string literals of a statement, in order.
func literals(statement string) []string {
	var values []string
	for _, m := range sqlLiteral.FindAllStringSubmatch(statement, -1) {
		values = append(values, sqlEscape.ReplaceAllString(m[1], "$1"))
	}
	return values
}

func boolRow(b bool) string {
	if b {
		return "1\n"
	}
	return "0\n"
}

func (db *fakeDatabase) TableCount(ctx context.Context, database string) (int, error) {
	return db.tables, nil
}

func (db *fakeDatabase) Import(ctx context.Context, artifact string) ([]string, error) {
	data, err := os.ReadFile(artifact)
	if err != nil {
		return nil, err
	}
	db.imported = append(db.imported, string(data))
	db.tables = 12
	db.urlRows = 5
	db.notifications = []string{
		`{"a1":{"isActive":true,"to":"{admin_email}"},"a2":{"isActive":true}}`,
		`{"b1":{"isActive":false}}`,
	}
	db.feeds = []feedRow{
		{slug: "gravityformswebhooks", meta: `{"requestURL":"https:\/\/www.example.com\/hook","requestMethod":"POST"}`},
		{slug: "gravityformswebhooks", meta: `{"requestURL":"https:\/\/api.partner.com\/hook"}`},
		{slug: "gravityformszapier", meta: `{"zapURL":"https:\/\/www.example.com\/zap"}`},
	}
	return db.importErrors, nil
}

// drop forgets everything, like a removed data directory.
func (db *fakeDatabase) drop() {
	db.created = false
	db.userCreated = false
	db.tables = 0
	db.urlRows = 0
	db.notifications = nil
	db.feeds = nil
}

type fakeRewriter struct {
	db    *fakeDatabase
	calls [][2]string
}

func (r *fakeRewriter) SearchReplace(ctx context.Context, from string, to string) (int, error) {
	r.calls = append(r.calls, [2]string{from, to})
	rows := r.db.urlRows
	r.db.urlRows = 0
	return rows, nil
}

type fakeCopier struct {
	copies int
}

func (c *fakeCopier) Copy(ctx context.Context, source string, destination string) error {
	c.copies++
	return filepath.Walk(source, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		target := filepath.Join(destination, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return utils.CopyFileContents(path, target)
	})
}

type fakeRuntime struct {
	db       *fakeDatabase
	tools    []domain.Tool
	services []domain.ServiceCheck
	ensured  int
	resets   int
	resetErr error
}

func (r *fakeRuntime) Tools(filesOnly bool) []domain.Tool {
	return r.tools
}

func (r *fakeRuntime) Services(filesOnly bool) []domain.ServiceCheck {
	if filesOnly {
		return nil
	}
	return r.services
}

func (r *fakeRuntime) EnsureDatabase(ctx context.Context) error {
	r.ensured++
	return nil
}

func (r *fakeRuntime) ResetDatabase(ctx context.Context, name string) error {
	if r.resetErr != nil {
		return r.resetErr
	}
	r.resets++
	r.db.drop()
	return nil
}

const productionConfig = `<?php
define( 'DB_NAME', 'production' );
define( 'DB_USER', 'production' );
define( 'DB_PASSWORD', 'production-secret' );
define( 'DB_HOST', 'mysql.internal' );
define( 'WP_CACHE', true );

$table_prefix = 'wpx_';

/* That's all, stop editing! Happy publishing. */

require_once ABSPATH . 'wp-settings.php';
`

const dumpContent = "SELECT 1;\n"

type fixture struct {
	dir      string
	source   domain.BackupSource
	profile  domain.TargetProfile
	db       *fakeDatabase
	rewriter *fakeRewriter
	copier   *fakeCopier
	runtime  *fakeRuntime
	values   map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	previous := utils.Out
	utils.Out = io.Discard
	t.Cleanup(func() { utils.Out = previous })

	dir := t.TempDir()
	backup := filepath.Join(dir, "backup")
	files := filepath.Join(backup, domain.BackupFilesDir)
	require.NoError(t, os.MkdirAll(filepath.Join(files, "wp-content"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(files, configFilename), []byte(productionConfig), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(files, "index.php"), []byte("<?php // index"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(files, "wp-content", "object-cache.php"), []byte("<?php // redis"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(backup, "production"), []byte(dumpContent), 0644))

	db := &fakeDatabase{}
	f := &fixture{
		dir: dir,
		source: domain.BackupSource{
			FileTreeRoot: files,
			SQLDumpFile:  filepath.Join(backup, "production"),
		},
		db:       db,
		rewriter: &fakeRewriter{db: db},
		copier:   &fakeCopier{},
		runtime:  &fakeRuntime{db: db},
		values: map[string]string{
			"DB_NAME":     "demo",
			"DB_USER":     "demo",
			"DB_PASSWORD": "demo-$ecret",
		},
	}

	f.profile = domain.TargetProfile{
		Name:           domain.TargetContainer,
		Destination:    filepath.Join(dir, "wordpress"),
		BaseURL:        "http://localhost:8080",
		DBUserHost:     "%",
		ImportArtifact: filepath.Join(dir, ".wplocal", "import.sql"),
		ArchiveDir:     filepath.Join(dir, ".wplocal", "archives"),
		ComposeEnvFile: filepath.Join(dir, ".env"),
		ComposeEnv:     map[string]string{"WP_PORT": "8080", "DB_NAME": "demo"},
		Rules: []domain.ConfigPatchRule{
			domain.DefineRule("DB_HOST", domain.PHPString("db")),
			domain.DefineRule("DB_NAME", domain.PHPString("demo")),
			domain.DefineRule("DB_USER", domain.PHPString("demo")),
			domain.DefineRule("DB_PASSWORD", domain.PHPString("demo-$ecret")),
			domain.DefineRule("WP_CACHE", "false"),
		},
		Database: db,
		Copier:   f.copier,
		Rewriter: f.rewriter,
		Runtime:  f.runtime,
	}
	return f
}

func (f *fixture) workflow(execCtx domain.ExecutionContext) *Workflow {
	return New(f.profile, f.source, domain.NewSettings(f.values), execCtx)
}

func (f *fixture) run(t *testing.T, execCtx domain.ExecutionContext) domain.ChangeLog {
	t.Helper()
	changes, err := f.workflow(execCtx).Run(context.Background())
	require.NoError(t, err)
	return changes
}

func (f *fixture) config(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.profile.Destination, configFilename))
	require.NoError(t, err)
	return string(data)
}
