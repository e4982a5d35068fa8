// Package config loads optional user-level defaults for the CLI.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FileName is the defaults file looked up under the user config directory.
const FileName = "config.yaml"

// Defaults holds settings applied when neither a flag nor an environment
// variable supplies a value.
type Defaults struct {
	Cache           string   `yaml:"cache"`
	ShareCache      bool     `yaml:"share_cache"`
	RecordExitCodes string   `yaml:"record_exit_codes"`
	WatchScope      []string `yaml:"watch_scope"`
}

// Load reads the defaults file from the user config directory. A missing file
// yields zero defaults, not an error.
func Load(appName string) (Defaults, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Defaults{}, nil
	}
	return LoadFile(filepath.Join(dir, appName, FileName))
}

// LoadFile reads defaults from an explicit path.
func LoadFile(path string) (Defaults, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is under the user config directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Defaults{}, nil
		}
		return Defaults{}, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}

	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Defaults{}, zerr.With(zerr.Wrap(err, "failed to parse config file"), "path", path)
	}

	return d, nil
}
