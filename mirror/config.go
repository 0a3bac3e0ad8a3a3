package mirror

import (
	"path/filepath"
	"strconv"
	"time"

	"webup/wplocal/domain"
)

// Config holds the connection to the production file server and the local
// folder it is mirrored to.
type Config struct {
	Host       string
	Port       string
	User       string
	Password   string
	KeyFile    string
	KnownHosts string
	RemotePath string
	LocalPath  string
	Timeout    time.Duration
}

func ConfigFromSettings(settings domain.Settings) (Config, error) {
	if err := settings.Require("SFTP_HOST", "SFTP_USER", "SFTP_REMOTE_PATH"); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Host:       settings.String("SFTP_HOST", ""),
		Port:       settings.String("SFTP_PORT", "22"),
		User:       settings.String("SFTP_USER", ""),
		Password:   settings.String("SFTP_PASSWORD", ""),
		KeyFile:    settings.String("SFTP_KEY_FILE", ""),
		KnownHosts: settings.String("SFTP_KNOWN_HOSTS", ""),
		RemotePath: settings.String("SFTP_REMOTE_PATH", ""),
		LocalPath:  filepath.Join(settings.String("BACKUP_DIR", "backup"), domain.BackupFilesDir),
		Timeout:    30 * time.Second,
	}

	if cfg.Password == "" && cfg.KeyFile == "" {
		return Config{}, &domain.PreconditionError{What: "SFTP_PASSWORD or SFTP_KEY_FILE must be set"}
	}
	if seconds, err := strconv.Atoi(settings.String("SFTP_TIMEOUT", "")); err == nil && seconds > 0 {
		cfg.Timeout = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}
