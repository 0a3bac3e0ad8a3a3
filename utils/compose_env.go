package utils

import (
	"fmt"
	"maps"
	"os"

	"github.com/joho/godotenv"
)

// SyncEnvFile writes values into the compose .env file unless it already
// holds exactly these values. It reports whether the file was written.
func SyncEnvFile(filename string, values map[string]string) (bool, error) {
	current, err := godotenv.Read(filename)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("Unable to read %s: %w", filename, err)
	}
	if err == nil && maps.Equal(current, values) {
		return false, nil
	}

	if err := godotenv.Write(values, filename); err != nil {
		return false, fmt.Errorf("Unable to write %s: %w", filename, err)
	}
	return true, nil
}
