package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvAPIURL   = "USERADMIN_API_URL"
	EnvDBPath   = "USERADMIN_DB_PATH"
	EnvLogLevel = "USERADMIN_LOG_LEVEL"
)

// LookupFunc has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// withDotEnv layers the variables of a .env file under lookup: a variable
// set in the real environment always wins.
func withDotEnv(lookup LookupFunc, path string) (LookupFunc, error) {
	if path == "" {
		return lookup, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lookup, nil
		}
		return nil, fmt.Errorf("reading env file: %w", err)
	}
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}, nil
}

func applyEnv(cfg *Config, lookup LookupFunc) {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		cfg.APIURL = v
	}
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
}
