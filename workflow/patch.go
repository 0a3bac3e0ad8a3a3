package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"webup/wplocal/domain"
	"webup/wplocal/utils"
)

const (
	OverridesMarker = "wplocal: local overrides"
	stopEditingLine = "/* That's all, stop editing!"
)

// overridesBlock is injected once into wp-config.php.
const overridesBlock = `/* ` + OverridesMarker + ` */
if ( ! defined( 'WP_ENVIRONMENT_TYPE' ) ) {
	define( 'WP_ENVIRONMENT_TYPE', 'local' );
}
if ( ! defined( 'WP_REDIS_DISABLED' ) ) {
	define( 'WP_REDIS_DISABLED', true );
}
if ( ! defined( 'AUTOMATIC_UPDATER_DISABLED' ) ) {
	define( 'AUTOMATIC_UPDATER_DISABLED', true );
}
/* end of local overrides */
`

// productionCacheFiles are drop-ins of the production cache plugins.
var productionCacheFiles = []string{
	filepath.Join("wp-content", "object-cache.php"),
	filepath.Join("wp-content", "advanced-cache.php"),
}

func (w *Workflow) patchConfigStep() Step {
	return Step{
		Name:        StepPatchConfig,
		Description: "Patch wp-config.php for the local environment",
		Run:         w.patchConfig,
	}
}

func (w *Workflow) patchConfig(ctx context.Context, changes *domain.ChangeLog) error {
	before := changes.Changes()

	configFile := w.configFile()
	info, err := os.Stat(configFile)
	if err != nil {
		return fmt.Errorf("Unable to find %s: %w", configFile, err)
	}
	content, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("Unable to read %s: %w", configFile, err)
	}
	text := string(content)

	patched, applied := domain.ApplyRules(text, w.profile.Rules, w.settings)
	for _, rule := range w.profile.Rules {
		for _, key := range applied {
			if key == rule.Key {
				utils.Info("%s", rule.Description)
				changes.Applied(StepPatchConfig, rule.Description)
			}
		}
	}

	patched, injected := InjectOverrides(patched)
	if injected {
		changes.Applied(StepPatchConfig, "local overrides injected")
	}

	if patched != text {
		if err := writeFileAtomic(configFile, []byte(patched), info.Mode().Perm()); err != nil {
			return fmt.Errorf("Unable to write %s: %w", configFile, err)
		}
	}
	w.tablePrefix = domain.TablePrefix(patched)

	for _, cacheFile := range productionCacheFiles {
		path := filepath.Join(w.profile.Destination, cacheFile)
		err := os.Remove(path)
		switch {
		case err == nil:
			changes.Applied(StepPatchConfig, fmt.Sprintf("removed %s", cacheFile))
		case os.IsNotExist(err):
		default:
			utils.Warn("Unable to remove %s: %s", cacheFile, err)
			changes.Warn(StepPatchConfig, fmt.Sprintf("Unable to remove %s: %s", cacheFile, err))
		}
	}

	if w.profile.ComposeEnvFile != "" {
		written, err := utils.SyncEnvFile(w.profile.ComposeEnvFile, w.profile.ComposeEnv)
		if err != nil {
			return err
		}
		if written {
			changes.Applied(StepPatchConfig, fmt.Sprintf("wrote %s", w.profile.ComposeEnvFile))
		}
	}

	if changes.Changes() == before {
		utils.Skipped("configuration already patched")
		changes.Skipped(StepPatchConfig, "configuration already patched")
		return nil
	}
	utils.Success("configuration patched")
	return nil
}

// InjectOverrides adds the local overrides block unless its marker is
// already present. The block goes before the "stop editing" comment when the
// file has one, at the end otherwise.
func InjectOverrides(text string) (string, bool) {
	if strings.Contains(text, OverridesMarker) {
		return text, false
	}
	if i := strings.Index(text, stopEditingLine); i >= 0 {
		return text[:i] + overridesBlock + "\n" + text[i:], true
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text + "\n" + overridesBlock, true
}

func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".wp-config-*.php")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}
