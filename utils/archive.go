package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jhoonb/archivex"
)

// ArchiveFiles stores the existing files among paths in a new tar.gz archive
// inside dir and returns its path. Missing files are ignored; when none
// exists no archive is created and the returned path is empty.
func ArchiveFiles(dir string, prefix string, paths []string, now time.Time) (string, error) {
	var existing []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("Unable to create the archive directory: %w", err)
	}

	// prepare a staging directory holding the files to archive
	stagingDir, err := os.MkdirTemp(dir, ".staging")
	if err != nil {
		return "", fmt.Errorf("Unable to create a staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	for _, p := range existing {
		if err := CopyFileContents(p, filepath.Join(stagingDir, filepath.Base(p))); err != nil {
			return "", err
		}
	}

	year, month, day := now.Date()
	hour, minutes, seconds := now.Clock()
	archiveFilename := filepath.Join(dir, fmt.Sprintf("%s-%d%02d%02d_%02d%02d%02d.tar.gz", prefix, year, month, day, hour, minutes, seconds))

	tar := new(archivex.TarFile)
	if err := tar.Create(archiveFilename); err != nil {
		return "", fmt.Errorf("Unable to create the archive: %w", err)
	}
	if err := tar.AddAll(stagingDir, false); err != nil {
		tar.Close()
		return "", fmt.Errorf("Unable to fill the archive: %w", err)
	}
	if err := tar.Close(); err != nil {
		return "", fmt.Errorf("Unable to close the archive: %w", err)
	}

	return archiveFilename, nil
}

// CopyFileContents copies src to dst, replacing dst.
func CopyFileContents(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
