package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"webup/wplocal/domain"
)

const (
	DefaultFilename = "wplocal.yml"
)

type parserConfig struct {
	Containers map[string]string `yaml:"containers"`
	Paths      map[string]string `yaml:"paths"`
	Checklist  []string          `yaml:"checklist"`
}

func (parsed parserConfig) convertToConfig(config *domain.Config) {
	// container config
	containerConfig := domain.ContainerConfig{
		Db:    "db",
		WPCLI: "wpcli",
	}
	if dbContainerName, ok := parsed.Containers["db"]; ok && dbContainerName != "" {
		containerConfig.Db = dbContainerName
	}
	if wpcliContainerName, ok := parsed.Containers["wpcli"]; ok && wpcliContainerName != "" {
		containerConfig.WPCLI = wpcliContainerName
	}
	config.Containers = containerConfig

	// runtime roots
	pathConfig := domain.PathConfig{
		Project: ".",
		Xampp:   `C:\xampp`,
		Laragon: `C:\laragon`,
	}
	if project, ok := parsed.Paths["project"]; ok && project != "" {
		pathConfig.Project = project
	}
	if xampp, ok := parsed.Paths["xampp"]; ok && xampp != "" {
		pathConfig.Xampp = xampp
	}
	if laragon, ok := parsed.Paths["laragon"]; ok && laragon != "" {
		pathConfig.Laragon = laragon
	}
	config.Paths = pathConfig

	// checklist
	config.Checklist = parsed.Checklist
}

// Load parses the project file. A missing file yields the defaults.
func Load(filename string) (domain.Config, error) {

	config := domain.Config{}
	parsed := parserConfig{}

	configFile, err := os.ReadFile(filename)
	if err != nil {
		if !os.IsNotExist(err) {
			return config, fmt.Errorf("Unable to read the config file '%s': %w", filename, err)
		}
	} else if err := yaml.Unmarshal(configFile, &parsed); err != nil {
		return config, fmt.Errorf("Unable to parse the config file. Check '%s' syntax: %w", filename, err)
	}

	parsed.convertToConfig(&config)

	return config, nil
}
