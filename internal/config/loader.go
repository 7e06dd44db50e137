package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	// PathEnv names the variable holding the YAML file path.
	PathEnv = "MODQUEUE_CONFIG"
	// DefaultPath is read when no path is given. It may be absent.
	DefaultPath = "./modqueue.yaml"
)

// Load reads the configuration with priority ENV > YAML > env-default tags.
// The YAML file is path, else $MODQUEUE_CONFIG, else DefaultPath. A named
// file must exist; a missing DefaultPath leaves ENV and defaults only.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(PathEnv)
	}
	named := path != ""
	if !named {
		path = DefaultPath
	}

	var cfg Config
	err := cleanenv.ReadConfig(path, &cfg)
	switch {
	case err == nil:
	case !named && errors.Is(err, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Usage describes every environment variable Load reads.
func Usage() (string, error) {
	var cfg Config
	return cleanenv.GetDescription(&cfg, nil)
}
