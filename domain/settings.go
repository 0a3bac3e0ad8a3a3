package domain

import (
	"fmt"
	"strings"
)

// RequiredSettings must be present before any step runs.
var RequiredSettings = []string{"DB_NAME", "DB_USER", "DB_PASSWORD"}

const DefaultProductionURL = "https://www.example.com"

// Settings is the key/value configuration of a run. It is built once by the
// config package and never modified afterwards.
type Settings struct {
	values map[string]string
}

func NewSettings(values map[string]string) Settings {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Settings{values: copied}
}

// String returns the literal value of key, empty included, or def when the
// key is absent.
func (s Settings) String(key string, def string) string {
	if value, ok := s.values[key]; ok {
		return value
	}
	return def
}

// Optional returns the value of key and whether it is set to a non empty value.
func (s Settings) Optional(key string) (string, bool) {
	value, ok := s.values[key]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Bool is true only for the literal value "true".
func (s Settings) Bool(key string) bool {
	return s.values[key] == "true"
}

func (s Settings) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Require returns an error naming every key that is missing or empty.
func (s Settings) Require(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if _, ok := s.Optional(key); !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &PreconditionError{What: fmt.Sprintf("missing required settings: %s", strings.Join(missing, ", "))}
	}
	return nil
}
