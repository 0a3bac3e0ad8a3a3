package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"webup/wplocal/domain"
)

const (
	DefaultSettingsFilename = "wplocal.env"
)

// LoadSettings reads a name=value settings file. Blank lines and lines
// starting with '#' are ignored, each line is split on its first '=' and both
// sides are trimmed. A later duplicate overwrites an earlier one. Values are
// taken verbatim: no quotes, no variable expansion.
func LoadSettings(filename string) (domain.Settings, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Settings{}, &domain.PreconditionError{What: fmt.Sprintf("settings file '%s'", filename), Err: domain.ErrSettingsNotFound}
		}
		return domain.Settings{}, fmt.Errorf("Unable to read the settings file: %w", err)
	}
	defer file.Close()

	values := map[string]string{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		key, value, ok := parseLine(scanner.Text())
		if ok {
			values[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.Settings{}, fmt.Errorf("Unable to parse the settings file: %w", err)
	}

	return domain.NewSettings(values), nil
}

// LoadAndCheckSettings loads the settings and fails when a required key is
// missing.
func LoadAndCheckSettings(filename string) (domain.Settings, error) {
	settings, err := LoadSettings(filename)
	if err != nil {
		return settings, err
	}
	if err := settings.Require(domain.RequiredSettings...); err != nil {
		return settings, err
	}
	return settings, nil
}

func parseLine(line string) (string, string, bool) {
	line = strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}
