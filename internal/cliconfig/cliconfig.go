// Package cliconfig loads the CLI's configuration file. A local
// .graphsock.yaml in the working directory wins over the global one in
// the user config directory; command-line flags override both.
package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// LocalConfigFileName is the per-project config file name.
	LocalConfigFileName = ".graphsock.yaml"
	// GlobalConfigDir is the directory under the user config dir.
	GlobalConfigDir = "graphsock"
	// GlobalConfigFileName is the global config file name.
	GlobalConfigFileName = "config.yaml"
)

// Config holds the CLI settings.
type Config struct {
	// Endpoint is the HTTP GraphQL endpoint.
	Endpoint string `yaml:"endpoint"`

	// WSEndpoint is the websocket endpoint for subscriptions. When empty
	// the CLI derives it from Endpoint by swapping the scheme.
	WSEndpoint string `yaml:"wsEndpoint"`

	// Token is the auth token sent with every request.
	Token string `yaml:"token"`

	// AuthHeader is the header the token travels in. Empty means
	// Authorization.
	AuthHeader string `yaml:"authHeader"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"logLevel"`
}

// FindLocalConfig returns the path of .graphsock.yaml in the working
// directory, or empty when absent.
func FindLocalConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path := filepath.Join(cwd, LocalConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", nil
}

// FindGlobalConfig returns the path of the global config file, or empty
// when absent.
func FindGlobalConfig() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", nil
	}
	path := filepath.Join(configDir, GlobalConfigDir, GlobalConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", nil
}

// LoadFile loads a Config from a YAML file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Load resolves the effective config: local file first, then global,
// then an empty config when neither exists.
func Load() (*Config, error) {
	if path, err := FindLocalConfig(); err != nil {
		return nil, err
	} else if path != "" {
		return LoadFile(path)
	}

	if path, err := FindGlobalConfig(); err != nil {
		return nil, err
	} else if path != "" {
		return LoadFile(path)
	}

	return &Config{}, nil
}
