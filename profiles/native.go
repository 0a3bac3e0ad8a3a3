package profiles

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"webup/wplocal/domain"
	"webup/wplocal/utils"
)

// NativeProfile provisions the document root of a XAMPP installation.
func NativeProfile(settings domain.Settings, config domain.Config) (domain.TargetProfile, error) {
	project, err := projectDir(config)
	if err != nil {
		return domain.TargetProfile{}, err
	}

	root := config.Paths.Xampp
	if err := requireDir(root); err != nil {
		return domain.TargetProfile{}, err
	}
	htdocs := filepath.Join(root, "htdocs")
	if err := requireDir(htdocs); err != nil {
		return domain.TargetProfile{}, err
	}
	mysqlBin := filepath.Join(root, "mysql", "bin")
	mysql := executable(filepath.Join(mysqlBin, "mysql"))
	if err := requireFile(mysql); err != nil {
		return domain.TargetProfile{}, err
	}
	php := executable(filepath.Join(root, "php", "php"))
	if err := requireFile(php); err != nil {
		return domain.TargetProfile{}, err
	}

	return nativeProfile(domain.TargetNative, settings, project, htdocs, "http://localhost", nativeRuntime{
		serviceName: "XAMPP MySQL",
		hint:        "Start MySQL from the XAMPP control panel, then press Enter",
		mysql:       mysql,
		mysqladmin:  executable(filepath.Join(mysqlBin, "mysqladmin")),
		php:         php,
	})
}

// VirtualHostProfile provisions a directory of the Laragon www folder, served
// on its own virtual host.
func VirtualHostProfile(settings domain.Settings, config domain.Config) (domain.TargetProfile, error) {
	project, err := projectDir(config)
	if err != nil {
		return domain.TargetProfile{}, err
	}

	root := config.Paths.Laragon
	if err := requireDir(root); err != nil {
		return domain.TargetProfile{}, err
	}
	www := filepath.Join(root, "www")
	if err := requireDir(www); err != nil {
		return domain.TargetProfile{}, err
	}
	mysql, err := newestMatch(root, filepath.Join("bin", "mysql", "*", "bin", executable("mysql")))
	if err != nil {
		return domain.TargetProfile{}, err
	}
	php, err := newestMatch(root, filepath.Join("bin", "php", "*", executable("php")))
	if err != nil {
		return domain.TargetProfile{}, err
	}

	dbName := settings.String("DB_NAME", "")
	domainName := settings.String("LOCAL_DOMAIN", dbName+".test")

	return nativeProfile(domain.TargetVirtualHost, settings, project, filepath.Join(www, dbName), "http://"+domainName, nativeRuntime{
		serviceName: "Laragon MySQL",
		hint:        "Click 'Start All' in Laragon, then press Enter",
		mysql:       mysql,
		mysqladmin:  executable(filepath.Join(filepath.Dir(mysql), "mysqladmin")),
		php:         php,
	})
}

// nativeProfile completes a XAMPP or Laragon profile. WP-CLI is the
// wp-cli.phar of the project, run with the PHP of the stack.
func nativeProfile(name string, settings domain.Settings, project string, destination string, baseURL string, runtime nativeRuntime) (domain.TargetProfile, error) {
	phar := filepath.Join(project, "wp-cli.phar")
	if err := requireFile(phar); err != nil {
		return domain.TargetProfile{}, err
	}

	db := &utils.MySQLClient{
		Client:   domain.NewCommand([]string{runtime.mysql, "-uroot"}),
		Admin:    domain.NewCommand([]string{runtime.mysqladmin, "-uroot"}),
		Password: settings.String("DB_ROOT_PASSWORD", ""),
	}
	runtime.db = db
	runtime.copier = utils.NewCopier(atoi(settings.String("COPY_THREADS", "16")))

	return domain.TargetProfile{
		Name:           name,
		Destination:    destination,
		BaseURL:        baseURL,
		DBUserHost:     "localhost",
		ImportArtifact: filepath.Join(project, workDir, "import.sql"),
		ArchiveDir:     filepath.Join(project, workDir, "archives"),
		Rules:          commonRules(settings, "localhost", baseURL),
		Database:       db,
		Copier:         runtime.copier,
		Rewriter: utils.WPCLI{Command: domain.NewCommand([]string{
			runtime.php, phar, "--path=" + destination,
		})},
		Runtime: &runtime,
	}, nil
}

type nativeRuntime struct {
	serviceName string
	hint        string
	mysql       string
	mysqladmin  string
	php         string
	db          serverClient
	copier      utils.Copier
}

func (r *nativeRuntime) Tools(filesOnly bool) []domain.Tool {
	return []domain.Tool{
		r.copier.Tool(),
		{Name: "php", Command: domain.NewCommand([]string{r.php, "--version"}), Minimum: ">= 7.4"},
		{Name: "mysql", Command: domain.NewCommand([]string{r.mysql, "--version"})},
	}
}

func (r *nativeRuntime) Services(filesOnly bool) []domain.ServiceCheck {
	if filesOnly {
		return nil
	}
	return []domain.ServiceCheck{
		{Description: r.serviceName, Hint: r.hint, Check: r.db.Ping},
	}
}

func (r *nativeRuntime) EnsureDatabase(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrDatabaseNotReady, err)
	}
	return nil
}

// ResetDatabase drops the database. The service must be running: a reset
// that cannot reach it fails instead of leaving the old tables behind.
func (r *nativeRuntime) ResetDatabase(ctx context.Context, name string) error {
	if err := r.EnsureDatabase(ctx); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", utils.QuoteIdentifier(name)))
	return err
}

func atoi(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
