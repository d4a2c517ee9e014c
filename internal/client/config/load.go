package config

import (
	"os"

	"github.com/spf13/pflag"
)

// Load builds the configuration from defaults, the config file, the
// environment and finally fs, then validates it. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	return load(fs, os.LookupEnv)
}

func load(fs *pflag.FlagSet, lookup LookupFunc) (*Config, error) {
	cfg := Defaults()

	var path, envFile string
	if fs != nil {
		path, _ = fs.GetString(FlagConfig)
		envFile, _ = fs.GetString(FlagEnvFile)
	}

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	lookup, err := withDotEnv(lookup, envFile)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg, lookup)

	if fs != nil {
		if err := applyFlags(cfg, fs); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
