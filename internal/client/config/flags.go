package config

import (
	"github.com/spf13/pflag"
)

const (
	FlagConfig         = "config"
	FlagEnvFile        = "env-file"
	FlagAPIURL         = "api-url"
	FlagDBPath         = "db-path"
	FlagPageSize       = "page-size"
	FlagRequestTimeout = "request-timeout"
	FlagLogLevel       = "log-level"
	FlagLogFormat      = "log-format"
	FlagLogBackend     = "log-backend"
	FlagUploadMode     = "upload-mode"
)

// BindFlags registers the configuration flags on fs with the built-in
// defaults shown in the help text.
func BindFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.StringP(FlagConfig, "c", "", "path to a .json or .yaml config file")
	fs.String(FlagEnvFile, ".env", "optional dotenv file with USERADMIN_* variables")
	fs.StringP(FlagAPIURL, "a", d.APIURL, "base URL of the user API")
	fs.String(FlagDBPath, d.DBPath, "SQLite file holding the session")
	fs.Int(FlagPageSize, d.PageSize, "users per page (5, 10, 25, 50 or 100)")
	fs.Duration(FlagRequestTimeout, d.RequestTimeout, "timeout of a single API request")
	fs.String(FlagLogLevel, d.Log.Level, "log level: debug, info, warn or error")
	fs.String(FlagLogFormat, d.Log.Format, "log format: text or json")
	fs.String(FlagLogBackend, d.Log.Backend, "logging backend: slog or zap")
	fs.String(FlagUploadMode, d.Upload.Mode, "photo upload mode: stub or s3")
}

// applyFlags copies only the flags the user actually set.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	str := func(name string, dst *string) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetString(name)
		}
	}
	str(FlagAPIURL, &cfg.APIURL)
	str(FlagDBPath, &cfg.DBPath)
	str(FlagLogLevel, &cfg.Log.Level)
	str(FlagLogFormat, &cfg.Log.Format)
	str(FlagLogBackend, &cfg.Log.Backend)
	str(FlagUploadMode, &cfg.Upload.Mode)

	if err == nil && fs.Changed(FlagPageSize) {
		cfg.PageSize, err = fs.GetInt(FlagPageSize)
	}
	if err == nil && fs.Changed(FlagRequestTimeout) {
		cfg.RequestTimeout, err = fs.GetDuration(FlagRequestTimeout)
	}
	return err
}
