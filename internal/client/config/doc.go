// Package config loads runtime configuration for the useradmin CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see Defaults).
//  2. Optional config file selected with --config/-c. Files ending in .json
//     are decoded as JSON, .yaml/.yml as YAML.
//  3. Environment: USERADMIN_API_URL, USERADMIN_DB_PATH, USERADMIN_LOG_LEVEL.
//     An optional .env file (--env-file) fills variables that are not set
//     in the real environment.
//  4. Command-line flags, only those explicitly given.
//
// # File schema
//
// Durations use timex.Duration, so "30s" and integer nanoseconds both work:
//
//	api_url: http://localhost:5000/api
//	request_timeout: 15s
//	expiry_check_interval: 1m
//	db_path: useradmin.db
//	page_size: 10
//	fetch_error_policy: panel
//	log: {level: info, format: text, backend: slog}
//	upload: {mode: stub, base_url: https://example.com/fake-upload}
package config
