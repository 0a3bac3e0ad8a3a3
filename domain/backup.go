package domain

import (
	"fmt"
	"os"
	"path/filepath"
)

const BackupFilesDir = "files"

// BackupSource is the production snapshot used as input. It is never written.
type BackupSource struct {
	FileTreeRoot string
	SQLDumpFile  string
}

// Validate checks that the file tree is a non empty directory and that the
// dump is a non empty regular file.
func (b BackupSource) Validate() error {
	entries, err := os.ReadDir(b.FileTreeRoot)
	if err != nil {
		return fmt.Errorf("%w: file tree %s: %s", ErrBackupInvalid, b.FileTreeRoot, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: file tree %s is empty", ErrBackupInvalid, b.FileTreeRoot)
	}

	info, err := os.Stat(b.SQLDumpFile)
	if err != nil {
		return fmt.Errorf("%w: sql dump %s: %s", ErrBackupInvalid, b.SQLDumpFile, err)
	}
	if !info.Mode().IsRegular() || info.Size() == 0 {
		return fmt.Errorf("%w: sql dump %s is empty", ErrBackupInvalid, b.SQLDumpFile)
	}
	return nil
}

// LocateBackup finds the backup source inside dir: the "files" tree and the
// single extension-less file next to it, which is the SQL dump.
func LocateBackup(dir string) (BackupSource, error) {
	source := BackupSource{FileTreeRoot: filepath.Join(dir, BackupFilesDir)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return source, fmt.Errorf("%w: %s", ErrBackupInvalid, err)
	}

	var dumps []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if filepath.Ext(entry.Name()) == "" {
			dumps = append(dumps, entry.Name())
		}
	}

	switch len(dumps) {
	case 0:
		return source, fmt.Errorf("%w: no extension-less sql dump in %s", ErrBackupInvalid, dir)
	case 1:
		source.SQLDumpFile = filepath.Join(dir, dumps[0])
	default:
		return source, fmt.Errorf("%w: several candidate sql dumps in %s: %v", ErrBackupInvalid, dir, dumps)
	}

	return source, nil
}
